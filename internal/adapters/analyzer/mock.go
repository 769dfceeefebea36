package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/carebow/triage-api/internal/domain"
)

// emergencyKeywords short-circuit the scripted flow straight to an
// emergency verdict.
var emergencyKeywords = []string{"chest pain", "can't breathe", "shortness of breath", "unconscious"}

// MockAnalyzer is a scripted collaborator for local development and tests.
// It asks follow-up questions until it has seen enough user turns, then
// produces a routine assessment; emergency keywords finish immediately.
type MockAnalyzer struct {
	// TurnsBeforeAssessment is how many user turns the mock wants before it
	// considers the intake complete.
	TurnsBeforeAssessment int
}

func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{TurnsBeforeAssessment: 2}
}

func (m *MockAnalyzer) Analyze(_ context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	lower := strings.ToLower(req.SymptomText)
	for _, kw := range emergencyKeywords {
		if strings.Contains(lower, kw) {
			return &domain.AnalysisResult{
				SessionID: sessionIDFor(req),
				Analysis: domain.Analysis{
					Response:      "I'm concerned about these symptoms. Please seek immediate care.",
					NeedsMoreInfo: false,
					Preliminary: &domain.PreliminaryAssessment{
						UrgencyLevel:      "emergency",
						RecommendedAction: "Call emergency services or go to the nearest emergency room now.",
						RedFlags:          []string{req.SymptomText},
					},
				},
			}, nil
		}
	}

	userTurns := 1 // the current message
	for _, entry := range req.ConversationHistory {
		if entry.Role == domain.RoleUser {
			userTurns++
		}
	}

	if userTurns < m.TurnsBeforeAssessment {
		return &domain.AnalysisResult{
			SessionID: sessionIDFor(req),
			Analysis: domain.Analysis{
				Response: fmt.Sprintf("Thanks for telling me about %q. How long has this been going on, "+
					"and how severe would you say it is?", req.SymptomText),
				NeedsMoreInfo: true,
			},
		}, nil
	}

	return &domain.AnalysisResult{
		SessionID: sessionIDFor(req),
		Analysis: domain.Analysis{
			Response:      "Based on what you've shared, this sounds manageable at home for now. Rest, stay hydrated, and keep an eye on how you feel.",
			NeedsMoreInfo: false,
			Preliminary: &domain.PreliminaryAssessment{
				UrgencyLevel:      "routine",
				RecommendedAction: "Monitor your symptoms and see a doctor if they persist beyond a few days.",
				PossibleConditions: []domain.Condition{
					{Condition: "a common, self-limiting illness", Confidence: 0.6, Reasoning: "symptoms are mild and recent"},
				},
			},
		},
	}, nil
}
