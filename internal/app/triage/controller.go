package triage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carebow/triage-api/internal/domain"
	"github.com/carebow/triage-api/internal/observability"
)

// fallbackApology is the fixed assistant-voice message appended when a turn
// fails. It becomes part of the log; the Notice field carries the separate
// banner text.
const fallbackApology = "I'm sorry, I encountered an error while analyzing your symptoms. " +
	"Please try describing them again, or use one of the example questions below."

const (
	transientNotice  = "Sorry, I couldn't process your request. Please try again or rephrase your symptoms."
	assessmentNotice = "Sorry, I couldn't complete your assessment just now. Please try again."
)

// GreetingFor builds the assistant greeting that opens every session.
func GreetingFor(name string) string {
	who := "there"
	if name != "" {
		who = name
	}
	return fmt.Sprintf("Hello %s! I'm Ask CareBow, your AI health companion. "+
		"I'm here to help you understand your symptoms and guide you to the right care.\n\n"+
		"Please tell me how you're feeling today. What symptoms are you experiencing?", who)
}

// Controller orchestrates one triage conversation: it owns the session log,
// runs the submit cycle against the analysis collaborator, pins the
// collaborator-issued session id, and finalizes the assessment on the
// terminal turn. At most one turn is in flight at any time; concurrent
// submits are rejected, never queued.
type Controller struct {
	analyzer domain.SymptomAnalyzer
	creds    domain.CredentialProvider
	profiles domain.ProfileStore
	archive  domain.AssessmentArchive
	builder  ContextBuilder
	now      func() time.Time

	greeting string

	mu         sync.Mutex
	log        *sessionLog
	inFlight   bool
	epoch      uint64
	analysisID domain.AnalysisID
	result     *domain.AssessmentResult
}

func NewController(
	greeting string,
	analyzer domain.SymptomAnalyzer,
	creds domain.CredentialProvider,
	profiles domain.ProfileStore,
	archive domain.AssessmentArchive,
) *Controller {
	now := time.Now
	return &Controller{
		analyzer: analyzer,
		creds:    creds,
		profiles: profiles,
		archive:  archive,
		builder:  NewContextBuilder(now),
		now:      now,
		greeting: greeting,
		log:      newSessionLog(now, greeting),
	}
}

// TurnResult is the outcome of one submit cycle.
type TurnResult struct {
	UserMessage      domain.Message
	AssistantMessage domain.Message
	Status           domain.SessionStatus
	Result           *domain.AssessmentResult

	// Notice is the dismissible banner text shown alongside an errored turn.
	// Empty on success.
	Notice string
}

// Snapshot is a read-only view of the session state.
type Snapshot struct {
	Messages   []domain.Message
	Status     domain.SessionStatus
	AnalysisID domain.AnalysisID
	Result     *domain.AssessmentResult
}

// Submit runs one turn: validate, append the user message, build the
// clinical context, call the analyzer, append the reply, and finalize if the
// collaborator signals the assessment is complete. Failures append the fixed
// apology and leave the session errored but fully retryable.
func (c *Controller) Submit(ctx context.Context, userText string) (*TurnResult, error) {
	text := SanitizeSymptomText(userText)

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, domain.ErrTurnInFlight
	}
	history := c.log.transcript()
	userMsg, err := c.log.appendUserTurn(text)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.inFlight = true
	epoch := c.epoch
	analysisID := c.analysisID
	c.mu.Unlock()

	log := observability.LoggerFromContext(ctx)
	if analysisID != "" {
		log = log.With("analysis_id", analysisID)
	}

	res, userID, callErr := c.runAnalysis(ctx, log, analysisID, text, history)

	c.mu.Lock()
	defer c.mu.Unlock()

	// The session was reset while the call was in flight; the stale
	// response must not touch the fresh log.
	if c.epoch != epoch {
		log.Info("discarding stale analysis response after reset")
		return nil, domain.ErrSessionReset
	}
	c.inFlight = false

	if callErr != nil {
		log.Error("analysis call failed", "error", callErr)
		apology := c.log.markErrored(fallbackApology)
		return &TurnResult{
			UserMessage:      userMsg,
			AssistantMessage: apology,
			Status:           c.log.status,
			Notice:           transientNotice,
		}, nil
	}

	// Session-id pinning: the first successful turn binds the id; a
	// different id returned later is ignored.
	if c.analysisID == "" {
		c.analysisID = res.SessionID
		log = log.With("analysis_id", res.SessionID)
	} else if res.SessionID != "" && res.SessionID != c.analysisID {
		log.Warn("collaborator returned a different session id, keeping the pinned one",
			"pinned", c.analysisID, "returned", res.SessionID)
	}

	if !res.Analysis.NeedsMoreInfo && res.Analysis.Preliminary != nil {
		result, ferr := FinalizeAssessment(res.Analysis.Preliminary, log)
		if ferr != nil {
			// Malformed verdicts must not be promoted to a completed
			// assessment; degrade to the same retryable state.
			apology := c.log.markErrored(fallbackApology)
			return &TurnResult{
				UserMessage:      userMsg,
				AssistantMessage: apology,
				Status:           c.log.status,
				Notice:           assessmentNotice,
			}, nil
		}

		assistant := c.log.appendAssistantTurn(res.Analysis.Response, true)
		c.result = result
		c.archiveAssessment(ctx, log, userID, text, res.Analysis.Response, result)

		log.Info("triage session completed", "urgency", result.Urgency.String())
		return &TurnResult{
			UserMessage:      userMsg,
			AssistantMessage: assistant,
			Status:           c.log.status,
			Result:           result,
		}, nil
	}

	assistant := c.log.appendAssistantTurn(res.Analysis.Response, false)
	return &TurnResult{
		UserMessage:      userMsg,
		AssistantMessage: assistant,
		Status:           c.log.status,
	}, nil
}

// runAnalysis performs the I/O half of a turn outside the lock: credential
// lookup, profile read, context build, and the collaborator call.
func (c *Controller) runAnalysis(
	ctx context.Context,
	log *slog.Logger,
	analysisID domain.AnalysisID,
	text string,
	history []domain.TranscriptEntry,
) (*domain.AnalysisResult, domain.UserID, error) {
	creds, err := c.creds.Credentials(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("resolving credentials: %w", err)
	}

	var profile *domain.HealthProfile
	if c.profiles != nil {
		profile, err = c.profiles.GetProfile(ctx, creds.UserID)
		if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
			// A profile outage degrades to an empty clinical context, it
			// does not fail the turn.
			log.Warn("profile lookup failed", "error", err)
		}
	}

	res, err := c.analyzer.Analyze(ctx, domain.AnalysisRequest{
		SessionID:           analysisID,
		UserIdentity:        creds.UserID,
		SymptomText:         text,
		ConversationHistory: history,
		ClinicalContext:     c.builder.Build(profile),
	})
	if err != nil {
		return nil, creds.UserID, err
	}
	return res, creds.UserID, nil
}

// QuickReply submits a canned prompt as if the user had typed it.
func (c *Controller) QuickReply(ctx context.Context, text string) (*TurnResult, error) {
	return c.Submit(ctx, text)
}

// Reset discards the log, re-greets, clears the pinned analysis id and any
// assessment, and invalidates in-flight responses. Calling it twice yields
// the same state as calling it once.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.inFlight = false
	c.analysisID = ""
	c.result = nil
	c.log.initialize(c.greeting)
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Messages:   c.log.snapshot(),
		Status:     c.log.status,
		AnalysisID: c.analysisID,
		Result:     c.result,
	}
}

// archiveAssessment writes the completed assessment to the archive
// collaborator. Best effort: archive failures are logged, never surfaced.
func (c *Controller) archiveAssessment(
	ctx context.Context,
	log *slog.Logger,
	userID domain.UserID,
	complaint, reasoning string,
	result *domain.AssessmentResult,
) {
	if c.archive == nil {
		return
	}
	rec := &domain.AssessmentRecord{
		ID:               uuid.NewString(),
		AnalysisID:       c.analysisID,
		UserID:           userID,
		PrimaryComplaint: complaint,
		Urgency:          result.Urgency,
		RedFlags:         result.RedFlags,
		Conditions:       result.PossibleConditions,
		ConfidenceBucket: confidenceBucket(result.PossibleConditions),
		FollowUpNeeded:   result.Urgency != domain.UrgencySelfCare,
		Reasoning:        reasoning,
		CreatedAt:        c.now(),
	}
	if err := c.archive.SaveAssessment(ctx, rec); err != nil {
		log.Warn("archiving assessment failed", "error", err)
	}
}
