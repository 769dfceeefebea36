package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carebow/triage-api/internal/domain"
)

// modelPayload is the JSON shape the model is instructed to emit.
type modelPayload struct {
	Response              string                        `json:"response"`
	NeedsMoreInfo         bool                          `json:"needsMoreInfo"`
	PreliminaryAssessment *domain.PreliminaryAssessment `json:"preliminaryAssessment,omitempty"`
}

// parseModelPayload decodes the model's JSON reply. Models occasionally wrap
// JSON in a markdown fence; that is stripped before decoding. A completely
// undecodable body is a transient failure for the caller to handle.
func parseModelPayload(raw string) (*modelPayload, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var p modelPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, fmt.Errorf("decoding analysis payload: %w", err)
	}
	if p.Response == "" {
		return nil, fmt.Errorf("analysis payload has no response text")
	}
	return &p, nil
}

// sessionIDFor returns the pinned id unchanged, or issues a fresh one on the
// first successful turn of a conversation.
func sessionIDFor(req domain.AnalysisRequest) domain.AnalysisID {
	if req.SessionID != "" {
		return req.SessionID
	}
	return domain.AnalysisID(uuid.NewString())
}
