package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/carebow/triage-api/internal/domain"
)

// Store implements the ProfileStore and AssessmentArchive ports on
// Firestore (GCP mode).
type Store struct {
	client *firestore.Client
}

func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) profilesCol() *firestore.CollectionRef {
	return s.client.Collection("health_profiles")
}

func (s *Store) assessmentsCol() *firestore.CollectionRef {
	return s.client.Collection("symptom_assessments")
}

type profileDoc struct {
	Name                  string     `firestore:"name"`
	DateOfBirth           *time.Time `firestore:"date_of_birth"`
	Gender                string     `firestore:"gender"`
	ChronicConditions     []string   `firestore:"chronic_conditions"`
	CurrentMedications    []string   `firestore:"current_medications"`
	EmergencyContactPhone string     `firestore:"emergency_contact_phone"`
}

type conditionDoc struct {
	Condition  string  `firestore:"condition"`
	Confidence float64 `firestore:"confidence"`
	Reasoning  string  `firestore:"reasoning"`
}

type assessmentDoc struct {
	AnalysisID       string         `firestore:"analysis_id"`
	UserID           string         `firestore:"user_id"`
	PrimaryComplaint string         `firestore:"primary_complaint"`
	Urgency          string         `firestore:"urgency"`
	RedFlags         []string       `firestore:"red_flags"`
	Conditions       []conditionDoc `firestore:"conditions"`
	ConfidenceBucket string         `firestore:"confidence_bucket"`
	FollowUpNeeded   bool           `firestore:"follow_up_needed"`
	Reasoning        string         `firestore:"reasoning"`
	CreatedAt        time.Time      `firestore:"created_at"`
}

// ─────────────────────────────────────────
// ProfileStore implementation
// ─────────────────────────────────────────

func (s *Store) GetProfile(ctx context.Context, userID domain.UserID) (*domain.HealthProfile, error) {
	snap, err := s.profilesCol().Doc(string(userID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("firestore GetProfile: %w", err)
	}

	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetProfile decode: %w", err)
	}

	return &domain.HealthProfile{
		UserID:                userID,
		Name:                  doc.Name,
		DateOfBirth:           doc.DateOfBirth,
		Gender:                doc.Gender,
		ChronicConditions:     doc.ChronicConditions,
		CurrentMedications:    doc.CurrentMedications,
		EmergencyContactPhone: doc.EmergencyContactPhone,
	}, nil
}

// ─────────────────────────────────────────
// AssessmentArchive implementation
// ─────────────────────────────────────────

func (s *Store) SaveAssessment(ctx context.Context, rec *domain.AssessmentRecord) error {
	conditions := make([]conditionDoc, 0, len(rec.Conditions))
	for _, c := range rec.Conditions {
		conditions = append(conditions, conditionDoc{
			Condition:  c.Condition,
			Confidence: c.Confidence,
			Reasoning:  c.Reasoning,
		})
	}

	doc := assessmentDoc{
		AnalysisID:       string(rec.AnalysisID),
		UserID:           string(rec.UserID),
		PrimaryComplaint: rec.PrimaryComplaint,
		Urgency:          rec.Urgency.String(),
		RedFlags:         rec.RedFlags,
		Conditions:       conditions,
		ConfidenceBucket: rec.ConfidenceBucket,
		FollowUpNeeded:   rec.FollowUpNeeded,
		Reasoning:        rec.Reasoning,
		CreatedAt:        rec.CreatedAt,
	}

	_, err := s.assessmentsCol().Doc(rec.ID).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore SaveAssessment: %w", err)
	}
	return nil
}

func (s *Store) ListAssessmentsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.AssessmentRecord, error) {
	q := s.assessmentsCol().
		Where("user_id", "==", string(userID)).
		OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.AssessmentRecord
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListAssessmentsByUser: %w", err)
		}

		var doc assessmentDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode assessmentDoc: %w", err)
		}

		urgency, ok := domain.ParseUrgency(doc.Urgency)
		if !ok {
			return nil, fmt.Errorf("stored assessment %s has unknown urgency %q", snap.Ref.ID, doc.Urgency)
		}

		conditions := make([]domain.Condition, 0, len(doc.Conditions))
		for _, c := range doc.Conditions {
			conditions = append(conditions, domain.Condition{
				Condition:  c.Condition,
				Confidence: c.Confidence,
				Reasoning:  c.Reasoning,
			})
		}

		out = append(out, &domain.AssessmentRecord{
			ID:               snap.Ref.ID,
			AnalysisID:       domain.AnalysisID(doc.AnalysisID),
			UserID:           domain.UserID(doc.UserID),
			PrimaryComplaint: doc.PrimaryComplaint,
			Urgency:          urgency,
			RedFlags:         doc.RedFlags,
			Conditions:       conditions,
			ConfidenceBucket: doc.ConfidenceBucket,
			FollowUpNeeded:   doc.FollowUpNeeded,
			Reasoning:        doc.Reasoning,
			CreatedAt:        doc.CreatedAt,
		})
	}
	return out, nil
}
