package triage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebow/triage-api/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestBuildDerivesAgeFromDateOfBirth(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dob     time.Time
		wantAge int
	}{
		{"birthday already passed this year", time.Date(1990, time.March, 1, 0, 0, 0, 0, time.UTC), 36},
		{"birthday not yet this year", time.Date(1990, time.December, 1, 0, 0, 0, 0, time.UTC), 35},
		{"birthday today", time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC), 36},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewContextBuilder(fixedClock(now))
			dob := tt.dob
			ctx := b.Build(&domain.HealthProfile{DateOfBirth: &dob})

			require.NotNil(t, ctx.Age)
			assert.Equal(t, tt.wantAge, *ctx.Age)
		})
	}
}

func TestBuildToleratesMissingFields(t *testing.T) {
	b := NewContextBuilder(fixedClock(time.Now()))

	t.Run("nil profile", func(t *testing.T) {
		ctx := b.Build(nil)
		assert.Nil(t, ctx.Age)
		assert.Empty(t, ctx.Gender)
		assert.NotNil(t, ctx.MedicalHistory)
		assert.NotNil(t, ctx.CurrentMedications)
	})

	t.Run("no date of birth", func(t *testing.T) {
		ctx := b.Build(&domain.HealthProfile{Gender: "female"})
		assert.Nil(t, ctx.Age, "missing DOB yields no age, not a failure")
		assert.Equal(t, "female", ctx.Gender)
	})
}

func TestBuildProjectsProfile(t *testing.T) {
	b := NewContextBuilder(fixedClock(time.Now()))
	profile := &domain.HealthProfile{
		Gender:                "male",
		ChronicConditions:     []string{"asthma", "hypertension"},
		CurrentMedications:    []string{"albuterol"},
		EmergencyContactPhone: "+1 555 0100",
	}

	ctx := b.Build(profile)

	assert.Equal(t, []string{"asthma", "hypertension"}, ctx.MedicalHistory)
	assert.Equal(t, []string{"albuterol"}, ctx.CurrentMedications)
	assert.Equal(t, "Location on file", ctx.Location)

	// Derived, never aliased: mutating the context must not touch the profile.
	ctx.MedicalHistory[0] = "changed"
	assert.Equal(t, "asthma", profile.ChronicConditions[0])
}

func TestBuildIsDeterministic(t *testing.T) {
	now := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	b := NewContextBuilder(fixedClock(now))
	dob := time.Date(1980, time.May, 5, 0, 0, 0, 0, time.UTC)
	profile := &domain.HealthProfile{DateOfBirth: &dob, Gender: "female"}

	first := b.Build(profile)
	second := b.Build(profile)

	assert.Equal(t, first, second)
}

func TestSanitizeSymptomText(t *testing.T) {
	assert.Equal(t, "headache", SanitizeSymptomText("  headache  "))
	assert.Equal(t, "scriptalert(1)/script", SanitizeSymptomText("<script>alert(1)</script>"))

	long := strings.Repeat("a", 3000)
	assert.Len(t, SanitizeSymptomText(long), 2000)
}
