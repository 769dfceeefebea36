package memory

import (
	"context"
	"sync"

	"github.com/carebow/triage-api/internal/domain"
)

type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[domain.UserID]*domain.HealthProfile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[domain.UserID]*domain.HealthProfile),
	}
}

// PutProfile seeds or replaces a profile. Profile writes happen outside the
// triage turn loop; this exists for local mode and tests.
func (s *ProfileStore) PutProfile(profile *domain.HealthProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = profile
}

func (s *ProfileStore) GetProfile(_ context.Context, userID domain.UserID) (*domain.HealthProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}
