package domain

import "time"

// SessionKey identifies a triage session inside this service. It is local
// and ephemeral; it is not the id the analysis collaborator assigns.
type SessionKey string

// AnalysisID is the conversation id issued by the analysis collaborator on
// the first successful turn. Once bound to a session it never changes.
type AnalysisID string

type MessageID string
type UserID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SessionStatus is the lifecycle state of one triage conversation.
type SessionStatus string

const (
	StatusActive           SessionStatus = "active"
	StatusAwaitingResponse SessionStatus = "awaiting_response"
	StatusCompleted        SessionStatus = "completed"
	StatusErrored          SessionStatus = "errored"
)

// Message is one conversational turn. Messages are append-only and
// time-ordered within a session; ids are never reused across resets.
type Message struct {
	ID        MessageID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptEntry is the reduced {role, content} form of a message sent to
// the analysis collaborator as conversation history.
type TranscriptEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
