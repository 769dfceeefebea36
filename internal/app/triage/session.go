package triage

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carebow/triage-api/internal/domain"
)

// sessionLog holds the ordered message log and lifecycle status for one
// triage conversation. It is append-only: no message is ever edited or
// removed, only a reset discards the whole log. The controller is the sole
// writer, so the log itself carries no locking.
type sessionLog struct {
	messages []domain.Message
	status   domain.SessionStatus
	now      func() time.Time
}

func newSessionLog(now func() time.Time, greeting string) *sessionLog {
	l := &sessionLog{now: now}
	l.initialize(greeting)
	return l
}

// initialize resets the log to a single assistant greeting in active status.
// Called on session open and on every reset.
func (l *sessionLog) initialize(greeting string) {
	l.messages = []domain.Message{l.newMessage(domain.RoleAssistant, greeting)}
	l.status = domain.StatusActive
}

func (l *sessionLog) newMessage(role domain.Role, content string) domain.Message {
	return domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		Role:      role,
		Content:   content,
		Timestamp: l.now(),
	}
}

// appendUserTurn appends a user message and moves the session to
// awaiting_response. It rejects empty input and duplicate concurrent
// submits; an errored session stays usable, so retries are allowed.
func (l *sessionLog) appendUserTurn(content string) (domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, domain.ErrEmptyMessage
	}
	switch l.status {
	case domain.StatusAwaitingResponse:
		return domain.Message{}, domain.ErrTurnInFlight
	case domain.StatusCompleted:
		return domain.Message{}, domain.ErrSessionCompleted
	}

	msg := l.newMessage(domain.RoleUser, content)
	l.messages = append(l.messages, msg)
	l.status = domain.StatusAwaitingResponse
	return msg, nil
}

// appendAssistantTurn appends an assistant message and returns the session
// to active, or to completed when the caller signals finality.
func (l *sessionLog) appendAssistantTurn(content string, final bool) domain.Message {
	msg := l.newMessage(domain.RoleAssistant, content)
	l.messages = append(l.messages, msg)
	if final {
		l.status = domain.StatusCompleted
	} else {
		l.status = domain.StatusActive
	}
	return msg
}

// markErrored appends a synthetic assistant apology and flags the session as
// errored. The log stays intact so the user can retry without losing history.
func (l *sessionLog) markErrored(apology string) domain.Message {
	msg := l.newMessage(domain.RoleAssistant, apology)
	l.messages = append(l.messages, msg)
	l.status = domain.StatusErrored
	return msg
}

// snapshot returns a copy of the log; callers never see internal slices.
func (l *sessionLog) snapshot() []domain.Message {
	out := make([]domain.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// transcript maps the full ordered log to {role, content} pairs for the
// analysis collaborator. No truncation happens here; windowing is the
// collaborator's policy decision.
func (l *sessionLog) transcript() []domain.TranscriptEntry {
	out := make([]domain.TranscriptEntry, 0, len(l.messages))
	for _, m := range l.messages {
		out = append(out, domain.TranscriptEntry{Role: m.Role, Content: m.Content})
	}
	return out
}
