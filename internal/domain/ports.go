package domain

import "context"

// AnalysisRequest is the contract of one call to the symptom-analysis
// collaborator.
type AnalysisRequest struct {
	SessionID           AnalysisID        `json:"sessionId,omitempty"`
	UserIdentity        UserID            `json:"userIdentity"`
	SymptomText         string            `json:"symptomText"`
	ConversationHistory []TranscriptEntry `json:"conversationHistory"`
	ClinicalContext     ClinicalContext   `json:"clinicalContext"`
}

// PreliminaryAssessment is the raw, unvalidated assessment payload inside an
// analysis response. The finalizer normalizes it into an AssessmentResult.
type PreliminaryAssessment struct {
	UrgencyLevel       string      `json:"urgencyLevel"`
	RecommendedAction  string      `json:"recommendedAction"`
	RedFlags           []string    `json:"redFlags,omitempty"`
	PossibleConditions []Condition `json:"possibleConditions,omitempty"`
}

// Analysis is the collaborator's verdict for one turn.
type Analysis struct {
	Response      string                 `json:"response"`
	NeedsMoreInfo bool                   `json:"needsMoreInfo"`
	Preliminary   *PreliminaryAssessment `json:"preliminaryAssessment,omitempty"`
}

// AnalysisResult pairs the verdict with the collaborator-issued session id.
type AnalysisResult struct {
	SessionID AnalysisID `json:"sessionId"`
	Analysis  Analysis   `json:"analysis"`
}

// SymptomAnalyzer is the external analysis collaborator. Any transport
// failure, non-2xx status, or undecodable body is a uniform transient error.
type SymptomAnalyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error)
}

// Credentials is the caller identity plus the opaque bearer token forwarded
// to the analysis collaborator.
type Credentials struct {
	UserID UserID
	Token  string
}

// CredentialProvider supplies the current identity and credential. It is
// injected into the turn controller so no component reads ambient auth state.
type CredentialProvider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// IdentityProvider resolves an opaque bearer token to a user identity. The
// real verifier is an external collaborator; this service only consumes it.
type IdentityProvider interface {
	Resolve(ctx context.Context, token string) (UserID, error)
}

// ProfileStore reads health profiles. Writes are outside this core's turn
// loop and belong to the external record store.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID UserID) (*HealthProfile, error)
}

// AssessmentArchive persists completed assessments. Archive failures never
// fail a turn.
type AssessmentArchive interface {
	SaveAssessment(ctx context.Context, rec *AssessmentRecord) error
	ListAssessmentsByUser(ctx context.Context, userID UserID, limit int) ([]*AssessmentRecord, error)
}
