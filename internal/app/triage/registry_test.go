package triage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebow/triage-api/internal/adapters/identity"
	memstore "github.com/carebow/triage-api/internal/adapters/storage/memory"
	"github.com/carebow/triage-api/internal/domain"
)

func newTestRegistry(a domain.SymptomAnalyzer, user domain.UserID) (*Registry, *memstore.ProfileStore) {
	profiles := memstore.NewProfileStore()
	creds := identity.StaticCredentials{Creds: domain.Credentials{UserID: user, Token: "tok"}}
	r := NewRegistry(a, creds, profiles, memstore.NewAssessmentArchive(), time.Minute)
	return r, profiles
}

func TestRegistryOpenGreetsByName(t *testing.T) {
	r, profiles := newTestRegistry(&fakeAnalyzer{}, "user-1")
	profiles.PutProfile(&domain.HealthProfile{UserID: "user-1", Name: "Grace"})

	key, ctrl, err := r.Open(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, key)

	snap := ctrl.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Contains(t, snap.Messages[0].Content, "Hello Grace!")
}

func TestRegistryOpenWithoutProfileGreetsGenerically(t *testing.T) {
	r, _ := newTestRegistry(&fakeAnalyzer{}, "user-1")

	_, ctrl, err := r.Open(context.Background())
	require.NoError(t, err)
	assert.Contains(t, ctrl.Snapshot().Messages[0].Content, "Hello there!")
}

func TestRegistryGetEnforcesOwnership(t *testing.T) {
	r, _ := newTestRegistry(&fakeAnalyzer{}, "user-1")
	key, _, err := r.Open(context.Background())
	require.NoError(t, err)

	got, err := r.Get(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, got)

	// Another user sees somebody else's session as missing.
	other := context.Background()
	r.creds = identity.StaticCredentials{Creds: domain.Credentials{UserID: "intruder", Token: "tok"}}
	_, err = r.Get(other, key)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRegistryDiscard(t *testing.T) {
	r, _ := newTestRegistry(&fakeAnalyzer{}, "user-1")
	key, _, err := r.Open(context.Background())
	require.NoError(t, err)

	require.NoError(t, r.Discard(context.Background(), key))
	_, err = r.Get(context.Background(), key)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.ErrorIs(t, r.Discard(context.Background(), key), domain.ErrSessionNotFound)
}

func TestRegistryPrunesIdleSessions(t *testing.T) {
	r, _ := newTestRegistry(&fakeAnalyzer{}, "user-1")
	key, _, err := r.Open(context.Background())
	require.NoError(t, err)

	// Move the clock past the TTL; the abandoned session idles out.
	r.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err = r.Get(context.Background(), key)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestProfileReachesAnalyzerRequest(t *testing.T) {
	fake := &fakeAnalyzer{replies: []analyzerReply{followUp("sess-1", "noted")}}
	r, profiles := newTestRegistry(fake, "user-1")

	dob := time.Now().AddDate(-40, 0, -1)
	profiles.PutProfile(&domain.HealthProfile{
		UserID:             "user-1",
		Name:               "Grace",
		DateOfBirth:        &dob,
		Gender:             "female",
		ChronicConditions:  []string{"diabetes"},
		CurrentMedications: []string{"metformin"},
	})

	_, ctrl, err := r.Open(context.Background())
	require.NoError(t, err)

	_, err = ctrl.Submit(context.Background(), "blurry vision")
	require.NoError(t, err)

	reqs := fake.requests()
	require.Len(t, reqs, 1)
	cc := reqs[0].ClinicalContext
	require.NotNil(t, cc.Age)
	assert.Equal(t, 40, *cc.Age)
	assert.Equal(t, "female", cc.Gender)
	assert.Equal(t, []string{"diabetes"}, cc.MedicalHistory)
	assert.Equal(t, []string{"metformin"}, cc.CurrentMedications)
}
