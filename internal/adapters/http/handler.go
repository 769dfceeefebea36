package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carebow/triage-api/internal/app/records"
	"github.com/carebow/triage-api/internal/app/triage"
	"github.com/carebow/triage-api/internal/domain"
)

type Server struct {
	registry *triage.Registry
	records  *records.Service
}

func NewServer(registry *triage.Registry, recordsSvc *records.Service, ids domain.IdentityProvider) http.Handler {
	s := &Server{registry: registry, records: recordsSvc}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withRequestID)
	r.Use(withLogging)
	r.Use(withCORS)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/v1/triage/examples", s.handleExamples)

	r.Group(func(r chi.Router) {
		r.Use(withAuth(ids))

		r.Post("/v1/triage/sessions", s.handleOpenSession)
		r.Get("/v1/triage/sessions/{key}", s.handleGetSession)
		r.Post("/v1/triage/sessions/{key}/messages", s.handleSendMessage)
		r.Post("/v1/triage/sessions/{key}/reset", s.handleResetSession)
		r.Delete("/v1/triage/sessions/{key}", s.handleDiscardSession)
		r.Get("/v1/triage/assessments", s.handleListAssessments)
	})

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type messageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type assessmentResponse struct {
	UrgencyLevel       string              `json:"urgencyLevel"`
	RecommendedAction  string              `json:"recommendedAction"`
	RedFlags           []string            `json:"redFlags"`
	PossibleConditions []conditionResponse `json:"possibleConditions"`
}

type conditionResponse struct {
	Condition  string  `json:"condition"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type sessionResponse struct {
	SessionKey string              `json:"session_key"`
	Status     string              `json:"status"`
	Messages   []messageResponse   `json:"messages"`
	Assessment *assessmentResponse `json:"assessment,omitempty"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	UserMessage      messageResponse     `json:"user_message"`
	AssistantMessage messageResponse     `json:"assistant_message"`
	Status           string              `json:"status"`
	Assessment       *assessmentResponse `json:"assessment,omitempty"`
	Notice           string              `json:"notice,omitempty"`
}

type examplesResponse struct {
	Examples []string `json:"examples"`
}

type assessmentRecordResponse struct {
	ID               string              `json:"id"`
	PrimaryComplaint string              `json:"primary_complaint"`
	UrgencyLevel     string              `json:"urgencyLevel"`
	RedFlags         []string            `json:"redFlags"`
	Conditions       []conditionResponse `json:"possibleConditions"`
	ConfidenceBucket string              `json:"confidence_bucket"`
	FollowUpNeeded   bool                `json:"follow_up_needed"`
	CreatedAt        time.Time           `json:"created_at"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExamples(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, examplesResponse{Examples: triage.ExamplePrompts})
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	key, ctrl, err := s.registry.Open(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(key, ctrl.Snapshot()))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	key := domain.SessionKey(chi.URLParam(r, "key"))

	ctrl, err := s.registry.Get(r.Context(), key)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(key, ctrl.Snapshot()))
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	key := domain.SessionKey(chi.URLParam(r, "key"))

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctrl, err := s.registry.Get(r.Context(), key)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out, err := ctrl.Submit(r.Context(), req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := sendMessageResponse{
		UserMessage:      toMessageResponse(out.UserMessage),
		AssistantMessage: toMessageResponse(out.AssistantMessage),
		Status:           string(out.Status),
		Notice:           out.Notice,
	}
	if out.Result != nil {
		a := toAssessmentResponse(out.Result)
		resp.Assessment = &a
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	key := domain.SessionKey(chi.URLParam(r, "key"))

	ctrl, err := s.registry.Get(r.Context(), key)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	ctrl.Reset()
	writeJSON(w, http.StatusOK, toSessionResponse(key, ctrl.Snapshot()))
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	key := domain.SessionKey(chi.URLParam(r, "key"))

	if err := s.registry.Discard(r.Context(), key); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	creds, err := RequestCredentials{}.Credentials(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recs, err := s.records.ListUserAssessments(r.Context(), creds.UserID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]assessmentRecordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessments": out})
}

// ─────────────────────────────────────────────
// Response mapping
// ─────────────────────────────────────────────

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:        string(m.ID),
		Role:      string(m.Role),
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

func toAssessmentResponse(a *domain.AssessmentResult) assessmentResponse {
	conditions := make([]conditionResponse, 0, len(a.PossibleConditions))
	for _, c := range a.PossibleConditions {
		conditions = append(conditions, conditionResponse(c))
	}
	return assessmentResponse{
		UrgencyLevel:       a.Urgency.String(),
		RecommendedAction:  a.RecommendedAction,
		RedFlags:           a.RedFlags,
		PossibleConditions: conditions,
	}
}

func toSessionResponse(key domain.SessionKey, snap triage.Snapshot) sessionResponse {
	msgs := make([]messageResponse, 0, len(snap.Messages))
	for _, m := range snap.Messages {
		msgs = append(msgs, toMessageResponse(m))
	}
	resp := sessionResponse{
		SessionKey: string(key),
		Status:     string(snap.Status),
		Messages:   msgs,
	}
	if snap.Result != nil {
		a := toAssessmentResponse(snap.Result)
		resp.Assessment = &a
	}
	return resp
}

func toRecordResponse(rec *domain.AssessmentRecord) assessmentRecordResponse {
	conditions := make([]conditionResponse, 0, len(rec.Conditions))
	for _, c := range rec.Conditions {
		conditions = append(conditions, conditionResponse(c))
	}
	return assessmentRecordResponse{
		ID:               rec.ID,
		PrimaryComplaint: rec.PrimaryComplaint,
		UrgencyLevel:     rec.Urgency.String(),
		RedFlags:         rec.RedFlags,
		Conditions:       conditions,
		ConfidenceBucket: rec.ConfidenceBucket,
		FollowUpNeeded:   rec.FollowUpNeeded,
		CreatedAt:        rec.CreatedAt,
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrTurnInFlight),
		errors.Is(err, domain.ErrSessionCompleted),
		errors.Is(err, domain.ErrSessionReset):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
