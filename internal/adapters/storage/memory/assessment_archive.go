package memory

import (
	"context"
	"sync"

	"github.com/carebow/triage-api/internal/domain"
)

type AssessmentArchive struct {
	mu      sync.RWMutex
	records map[domain.UserID][]*domain.AssessmentRecord
}

func NewAssessmentArchive() *AssessmentArchive {
	return &AssessmentArchive{
		records: make(map[domain.UserID][]*domain.AssessmentRecord),
	}
}

func (a *AssessmentArchive) SaveAssessment(_ context.Context, rec *domain.AssessmentRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.records[rec.UserID] = append(a.records[rec.UserID], rec)
	return nil
}

// ListAssessmentsByUser returns the most recent records first.
func (a *AssessmentArchive) ListAssessmentsByUser(_ context.Context, userID domain.UserID, limit int) ([]*domain.AssessmentRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	recs := a.records[userID]
	out := make([]*domain.AssessmentRecord, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		out = append(out, recs[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
