package triage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebow/triage-api/internal/domain"
)

func TestSessionLogStartsWithGreeting(t *testing.T) {
	l := newSessionLog(time.Now, "hello")

	require.Len(t, l.messages, 1)
	assert.Equal(t, domain.RoleAssistant, l.messages[0].Role)
	assert.Equal(t, "hello", l.messages[0].Content)
	assert.Equal(t, domain.StatusActive, l.status)
}

func TestAppendUserTurnValidation(t *testing.T) {
	tests := []struct {
		name    string
		prep    func(l *sessionLog)
		input   string
		wantErr error
	}{
		{
			name:    "empty input",
			input:   "",
			wantErr: domain.ErrEmptyMessage,
		},
		{
			name:    "whitespace only",
			input:   "   \n\t",
			wantErr: domain.ErrEmptyMessage,
		},
		{
			name: "duplicate submit while awaiting",
			prep: func(l *sessionLog) {
				_, err := l.appendUserTurn("first")
				require.NoError(t, err)
			},
			input:   "second",
			wantErr: domain.ErrTurnInFlight,
		},
		{
			name: "completed session rejects turns",
			prep: func(l *sessionLog) {
				_, err := l.appendUserTurn("first")
				require.NoError(t, err)
				l.appendAssistantTurn("done", true)
			},
			input:   "more",
			wantErr: domain.ErrSessionCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newSessionLog(time.Now, "hi")
			if tt.prep != nil {
				tt.prep(l)
			}
			before := len(l.messages)

			_, err := l.appendUserTurn(tt.input)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, l.messages, before, "rejected submit must not mutate the log")
		})
	}
}

func TestAppendOnlyOrderingAndAlternation(t *testing.T) {
	l := newSessionLog(time.Now, "hi")

	for i := 0; i < 5; i++ {
		_, err := l.appendUserTurn("symptom update")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAwaitingResponse, l.status)
		l.appendAssistantTurn("tell me more", false)
		assert.Equal(t, domain.StatusActive, l.status)
	}

	msgs := l.snapshot()
	require.Len(t, msgs, 11)

	assert.Equal(t, domain.RoleAssistant, msgs[0].Role, "log must start with the assistant greeting")
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].Timestamp.Before(msgs[i-1].Timestamp), "timestamps must be non-decreasing")
		assert.NotEqual(t, msgs[i].Role, msgs[i-1].Role, "roles must strictly alternate")
	}

	seen := map[domain.MessageID]bool{}
	for _, m := range msgs {
		assert.False(t, seen[m.ID], "message ids must be unique")
		seen[m.ID] = true
	}
}

func TestMarkErroredKeepsHistoryAndAllowsRetry(t *testing.T) {
	l := newSessionLog(time.Now, "hi")

	_, err := l.appendUserTurn("I feel dizzy")
	require.NoError(t, err)
	l.markErrored("sorry, something went wrong")

	assert.Equal(t, domain.StatusErrored, l.status)
	require.Len(t, l.messages, 3)

	// The user can immediately retry without losing prior turns.
	_, err = l.appendUserTurn("I still feel dizzy")
	require.NoError(t, err)
	l.appendAssistantTurn("noted", false)

	assert.Equal(t, domain.StatusActive, l.status)
	assert.Len(t, l.messages, 5)
}

func TestInitializeDiscardsEverything(t *testing.T) {
	l := newSessionLog(time.Now, "hi")
	_, err := l.appendUserTurn("headache")
	require.NoError(t, err)
	l.appendAssistantTurn("how long?", false)
	oldGreetingID := l.messages[0].ID

	l.initialize("hi")

	require.Len(t, l.messages, 1)
	assert.Equal(t, domain.StatusActive, l.status)
	assert.NotEqual(t, oldGreetingID, l.messages[0].ID, "ids are not reused across restarts")
}
