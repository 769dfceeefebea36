package triage

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/carebow/triage-api/internal/domain"
)

// FinalizeAssessment normalizes a raw collaborator payload into the
// AssessmentResult contract. It tolerates missing red flags and conditions
// (defaulting to empty lists) but refuses payloads with unknown urgency
// tokens or confidences outside [0,1]: those are data-quality errors, logged
// and surfaced instead of silently coerced.
func FinalizeAssessment(p *domain.PreliminaryAssessment, log *slog.Logger) (*domain.AssessmentResult, error) {
	if p == nil {
		return nil, &domain.DataQualityError{Field: "preliminaryAssessment", Value: nil, Reason: "missing payload"}
	}

	urgency, err := parseUrgencySignals(p.UrgencyLevel)
	if err != nil {
		log.Error("assessment payload rejected", "error", err)
		return nil, err
	}

	conditions := make([]domain.Condition, 0, len(p.PossibleConditions))
	for _, c := range p.PossibleConditions {
		if c.Confidence < 0 || c.Confidence > 1 {
			dqe := &domain.DataQualityError{
				Field:  "possibleConditions.confidence",
				Value:  c.Confidence,
				Reason: "confidence outside [0,1]",
			}
			log.Error("assessment payload rejected", "condition", c.Condition, "error", dqe)
			return nil, dqe
		}
		conditions = append(conditions, c)
	}
	// Descending confidence for display.
	sort.SliceStable(conditions, func(i, j int) bool {
		return conditions[i].Confidence > conditions[j].Confidence
	})

	redFlags := make([]string, 0, len(p.RedFlags))
	redFlags = append(redFlags, p.RedFlags...)

	return &domain.AssessmentResult{
		Urgency:            urgency,
		RecommendedAction:  p.RecommendedAction,
		RedFlags:           redFlags,
		PossibleConditions: conditions,
	}, nil
}

// parseUrgencySignals parses the urgency field, which may carry several
// tokens ("routine/urgent", "urgent, emergency") when the collaborator
// reports conflicting signals. The highest urgency always wins; an unknown
// token or an empty field is a data-quality error.
func parseUrgencySignals(raw string) (domain.UrgencyLevel, error) {
	tokens := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return r == '/' || r == ',' || r == '|' || r == ' '
	})
	if len(tokens) == 0 {
		return 0, &domain.DataQualityError{Field: "urgencyLevel", Value: raw, Reason: "empty urgency"}
	}

	highest := domain.UrgencySelfCare
	for _, tok := range tokens {
		u, ok := domain.ParseUrgency(tok)
		if !ok {
			return 0, &domain.DataQualityError{Field: "urgencyLevel", Value: raw, Reason: "unknown urgency token"}
		}
		if u > highest {
			highest = u
		}
	}
	return highest, nil
}

// confidenceBucket maps the top condition's confidence to the coarse bucket
// stored with archived assessments.
func confidenceBucket(conditions []domain.Condition) string {
	if len(conditions) == 0 {
		return "low"
	}
	top := conditions[0].Confidence
	switch {
	case top > 0.7:
		return "high"
	case top > 0.4:
		return "medium"
	default:
		return "low"
	}
}
