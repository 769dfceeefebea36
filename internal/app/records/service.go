package records

import (
	"context"

	"github.com/carebow/triage-api/internal/domain"
)

// Service reads archived assessments back for a user's history view.
type Service struct {
	archive domain.AssessmentArchive
}

func NewService(archive domain.AssessmentArchive) *Service {
	return &Service{archive: archive}
}

// ListUserAssessments returns the most recent `limit` archived assessments.
// If limit <= 0, a reasonable default value is used.
func (s *Service) ListUserAssessments(
	ctx context.Context,
	userID domain.UserID,
	limit int,
) ([]*domain.AssessmentRecord, error) {

	if s.archive == nil {
		return []*domain.AssessmentRecord{}, nil
	}

	if limit <= 0 {
		limit = 20
	}

	return s.archive.ListAssessmentsByUser(ctx, userID, limit)
}
