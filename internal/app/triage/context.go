package triage

import (
	"strings"
	"time"

	"github.com/carebow/triage-api/internal/domain"
)

// maxSymptomLen caps free-text symptom input, matching the analyzer's own
// input limit.
const maxSymptomLen = 2000

// ContextBuilder projects a health profile into the ClinicalContext snapshot
// sent with every analysis call. It is a pure function of the profile and the
// injected clock: no I/O, no mutation. Every "missing profile field" case is
// handled here and nowhere else.
type ContextBuilder struct {
	now func() time.Time
}

func NewContextBuilder(now func() time.Time) ContextBuilder {
	if now == nil {
		now = time.Now
	}
	return ContextBuilder{now: now}
}

// Build derives the clinical context. A nil profile yields an empty context;
// a missing date of birth yields no age rather than an error.
func (b ContextBuilder) Build(profile *domain.HealthProfile) domain.ClinicalContext {
	ctx := domain.ClinicalContext{
		MedicalHistory:     []string{},
		CurrentMedications: []string{},
	}
	if profile == nil {
		return ctx
	}

	if profile.DateOfBirth != nil {
		age := yearsBetween(*profile.DateOfBirth, b.now())
		ctx.Age = &age
	}
	ctx.Gender = profile.Gender
	if len(profile.ChronicConditions) > 0 {
		ctx.MedicalHistory = append(ctx.MedicalHistory, profile.ChronicConditions...)
	}
	if len(profile.CurrentMedications) > 0 {
		ctx.CurrentMedications = append(ctx.CurrentMedications, profile.CurrentMedications...)
	}
	if profile.EmergencyContactPhone != "" {
		ctx.Location = "Location on file"
	}
	return ctx
}

func yearsBetween(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	// Not yet had the birthday this year.
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// SanitizeSymptomText trims the input, strips angle brackets and caps the
// length the same way the analyzer's input validation does.
func SanitizeSymptomText(s string) string {
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > maxSymptomLen {
		return string(runes[:maxSymptomLen])
	}
	return s
}
