package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// UrgencyLevel is an ordered severity classification. Higher values are more
// urgent; when a payload carries conflicting signals the highest wins.
type UrgencyLevel int

const (
	UrgencySelfCare UrgencyLevel = iota
	UrgencyRoutine
	UrgencyUrgent
	UrgencyEmergency
)

func (u UrgencyLevel) String() string {
	switch u {
	case UrgencySelfCare:
		return "self_care"
	case UrgencyRoutine:
		return "routine"
	case UrgencyUrgent:
		return "urgent"
	case UrgencyEmergency:
		return "emergency"
	default:
		return fmt.Sprintf("urgency(%d)", int(u))
	}
}

func (u UrgencyLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// ParseUrgency maps one collaborator token to an UrgencyLevel. The enhanced
// analyzer emits "low" and "moderate" as aliases for self_care and routine.
func ParseUrgency(s string) (UrgencyLevel, bool) {
	switch s {
	case "self_care", "low":
		return UrgencySelfCare, true
	case "routine", "moderate":
		return UrgencyRoutine, true
	case "urgent":
		return UrgencyUrgent, true
	case "emergency":
		return UrgencyEmergency, true
	default:
		return 0, false
	}
}

// Condition is one differential diagnosis candidate.
type Condition struct {
	Condition  string  `json:"condition"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// AssessmentResult is the terminal artifact of a completed triage session.
// Once produced it is immutable; a new assessment requires a new session.
type AssessmentResult struct {
	Urgency            UrgencyLevel `json:"urgencyLevel"`
	RecommendedAction  string       `json:"recommendedAction"`
	RedFlags           []string     `json:"redFlags"`
	PossibleConditions []Condition  `json:"possibleConditions"`
}

// AssessmentRecord is the durable form of a completed assessment written to
// the archive collaborator.
type AssessmentRecord struct {
	ID               string       `json:"id"`
	AnalysisID       AnalysisID   `json:"analysis_id"`
	UserID           UserID       `json:"user_id"`
	PrimaryComplaint string       `json:"primary_complaint"`
	Urgency          UrgencyLevel `json:"urgency"`
	RedFlags         []string     `json:"red_flags"`
	Conditions       []Condition  `json:"conditions"`
	ConfidenceBucket string       `json:"confidence_bucket"`
	FollowUpNeeded   bool         `json:"follow_up_needed"`
	Reasoning        string       `json:"reasoning"`
	CreatedAt        time.Time    `json:"created_at"`
}
