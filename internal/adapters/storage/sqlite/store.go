package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/carebow/triage-api/internal/domain"
)

// Store is a durable sqlite-backed assessment archive.
type Store struct {
	db *gorm.DB
}

// assessmentRow is the persisted form; list-valued fields are stored as JSON
// text columns.
type assessmentRow struct {
	ID               string `gorm:"primaryKey"`
	AnalysisID       string
	UserID           string `gorm:"index"`
	PrimaryComplaint string
	Urgency          string
	RedFlags         string
	Conditions       string
	ConfidenceBucket string
	FollowUpNeeded   bool
	Reasoning        string
	CreatedAt        time.Time `gorm:"index"`
}

func (assessmentRow) TableName() string { return "symptom_assessments" }

func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite at %s: %w", path, err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Exec("PRAGMA journal_mode = WAL;")
	}

	if err := db.AutoMigrate(&assessmentRow{}); err != nil {
		return nil, fmt.Errorf("migrating sqlite schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) SaveAssessment(ctx context.Context, rec *domain.AssessmentRecord) error {
	redFlags, err := json.Marshal(rec.RedFlags)
	if err != nil {
		return err
	}
	conditions, err := json.Marshal(rec.Conditions)
	if err != nil {
		return err
	}

	row := assessmentRow{
		ID:               rec.ID,
		AnalysisID:       string(rec.AnalysisID),
		UserID:           string(rec.UserID),
		PrimaryComplaint: rec.PrimaryComplaint,
		Urgency:          rec.Urgency.String(),
		RedFlags:         string(redFlags),
		Conditions:       string(conditions),
		ConfidenceBucket: rec.ConfidenceBucket,
		FollowUpNeeded:   rec.FollowUpNeeded,
		Reasoning:        rec.Reasoning,
		CreatedAt:        rec.CreatedAt,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("sqlite SaveAssessment: %w", err)
	}
	return nil
}

func (s *Store) ListAssessmentsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.AssessmentRecord, error) {
	query := s.db.WithContext(ctx).
		Where("user_id = ?", string(userID)).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []assessmentRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("sqlite ListAssessmentsByUser: %w", err)
	}

	out := make([]*domain.AssessmentRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := rowToRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func rowToRecord(row assessmentRow) (*domain.AssessmentRecord, error) {
	urgency, ok := domain.ParseUrgency(row.Urgency)
	if !ok {
		return nil, fmt.Errorf("stored assessment %s has unknown urgency %q", row.ID, row.Urgency)
	}

	var redFlags []string
	if row.RedFlags != "" {
		if err := json.Unmarshal([]byte(row.RedFlags), &redFlags); err != nil {
			return nil, fmt.Errorf("decoding red flags for %s: %w", row.ID, err)
		}
	}
	var conditions []domain.Condition
	if row.Conditions != "" {
		if err := json.Unmarshal([]byte(row.Conditions), &conditions); err != nil {
			return nil, fmt.Errorf("decoding conditions for %s: %w", row.ID, err)
		}
	}

	return &domain.AssessmentRecord{
		ID:               row.ID,
		AnalysisID:       domain.AnalysisID(row.AnalysisID),
		UserID:           domain.UserID(row.UserID),
		PrimaryComplaint: row.PrimaryComplaint,
		Urgency:          urgency,
		RedFlags:         redFlags,
		Conditions:       conditions,
		ConfidenceBucket: row.ConfidenceBucket,
		FollowUpNeeded:   row.FollowUpNeeded,
		Reasoning:        row.Reasoning,
		CreatedAt:        row.CreatedAt,
	}, nil
}
