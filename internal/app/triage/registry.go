package triage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carebow/triage-api/internal/domain"
	"github.com/carebow/triage-api/internal/observability"
)

// ExamplePrompts are the canned quick-reply starters offered alongside the
// input box.
var ExamplePrompts = []string{
	"I have a headache and feel tired.",
	"My child has a fever and cough.",
	"I'm feeling chest pain and shortness of breath.",
	"I have a rash on my arm.",
	"What should I do for stomach pain?",
}

// Registry holds the live, ephemeral triage sessions. Sessions are never
// persisted: an abandoned one simply idles out after the TTL, which stands
// in for the user navigating away.
type Registry struct {
	analyzer domain.SymptomAnalyzer
	creds    domain.CredentialProvider
	profiles domain.ProfileStore
	archive  domain.AssessmentArchive
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[domain.SessionKey]*registryEntry
}

type registryEntry struct {
	ctrl     *Controller
	owner    domain.UserID
	lastSeen time.Time
}

func NewRegistry(
	analyzer domain.SymptomAnalyzer,
	creds domain.CredentialProvider,
	profiles domain.ProfileStore,
	archive domain.AssessmentArchive,
	ttl time.Duration,
) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		analyzer: analyzer,
		creds:    creds,
		profiles: profiles,
		archive:  archive,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[domain.SessionKey]*registryEntry),
	}
}

// Open creates a fresh session for the caller, greeting them by name when
// the profile has one.
func (r *Registry) Open(ctx context.Context) (domain.SessionKey, *Controller, error) {
	creds, err := r.creds.Credentials(ctx)
	if err != nil {
		return "", nil, err
	}

	var name string
	if r.profiles != nil {
		profile, err := r.profiles.GetProfile(ctx, creds.UserID)
		if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
			observability.LoggerFromContext(ctx).Warn("profile lookup failed on open", "error", err)
		}
		if profile != nil {
			name = profile.Name
		}
	}

	ctrl := NewController(GreetingFor(name), r.analyzer, r.creds, r.profiles, r.archive)
	key := domain.SessionKey(uuid.NewString())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.now())
	r.sessions[key] = &registryEntry{ctrl: ctrl, owner: creds.UserID, lastSeen: r.now()}

	observability.LoggerFromContext(ctx).Info("triage session opened",
		"session_key", key, "user_id", creds.UserID)
	return key, ctrl, nil
}

// Get looks up a live session owned by the caller and refreshes its idle
// timer.
func (r *Registry) Get(ctx context.Context, key domain.SessionKey) (*Controller, error) {
	creds, err := r.creds.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.now())

	e, ok := r.sessions[key]
	if !ok || e.owner != creds.UserID {
		// Another user's session looks exactly like a missing one.
		return nil, domain.ErrSessionNotFound
	}
	e.lastSeen = r.now()
	return e.ctrl, nil
}

// Discard drops a session outright, e.g. when the client leaves the flow.
func (r *Registry) Discard(ctx context.Context, key domain.SessionKey) error {
	creds, err := r.creds.Credentials(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[key]
	if !ok || e.owner != creds.UserID {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, key)
	return nil
}

func (r *Registry) pruneLocked(now time.Time) {
	for key, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.sessions, key)
		}
	}
}
