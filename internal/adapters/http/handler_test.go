package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carebow/triage-api/internal/adapters/analyzer"
	httpadapter "github.com/carebow/triage-api/internal/adapters/http"
	"github.com/carebow/triage-api/internal/adapters/identity"
	memstore "github.com/carebow/triage-api/internal/adapters/storage/memory"
	"github.com/carebow/triage-api/internal/app/records"
	"github.com/carebow/triage-api/internal/app/triage"
	"github.com/carebow/triage-api/internal/domain"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	profiles := memstore.NewProfileStore()
	profiles.PutProfile(&domain.HealthProfile{UserID: "test-user", Name: "Test"})
	archive := memstore.NewAssessmentArchive()

	registry := triage.NewRegistry(
		analyzer.NewMockAnalyzer(),
		httpadapter.RequestCredentials{},
		profiles,
		archive,
		time.Minute,
	)
	recordsSvc := records.NewService(archive)

	return httpadapter.NewServer(registry, recordsSvc, identity.NewLocal("test-user"))
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if out != nil && w.Code < 300 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decoding response %q: %v", w.Body.String(), err)
		}
	}
	return w
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequiresBearerToken(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/triage/sessions", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestOpenSessionAndSendMessage(t *testing.T) {
	srv := newTestServer(t)

	var opened struct {
		SessionKey string `json:"session_key"`
		Status     string `json:"status"`
		Messages   []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	w := doJSON(t, srv, http.MethodPost, "/v1/triage/sessions", nil, &opened)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}
	if opened.SessionKey == "" {
		t.Fatal("expected a session key")
	}
	if len(opened.Messages) != 1 || opened.Messages[0].Role != "assistant" {
		t.Fatalf("expected a single assistant greeting, got %+v", opened.Messages)
	}

	var sent struct {
		Status           string `json:"status"`
		AssistantMessage struct {
			Content string `json:"content"`
		} `json:"assistant_message"`
	}
	w = doJSON(t, srv, http.MethodPost, "/v1/triage/sessions/"+opened.SessionKey+"/messages",
		map[string]string{"text": "I have a headache and feel tired."}, &sent)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if sent.Status != "active" {
		t.Fatalf("expected active after a follow-up turn, got %q", sent.Status)
	}
	if sent.AssistantMessage.Content == "" {
		t.Fatal("expected a non-empty assistant reply")
	}
}

func TestEmergencyFlowCompletesAndArchives(t *testing.T) {
	srv := newTestServer(t)

	var opened struct {
		SessionKey string `json:"session_key"`
	}
	doJSON(t, srv, http.MethodPost, "/v1/triage/sessions", nil, &opened)

	var sent struct {
		Status     string `json:"status"`
		Assessment *struct {
			UrgencyLevel string `json:"urgencyLevel"`
		} `json:"assessment"`
	}
	w := doJSON(t, srv, http.MethodPost, "/v1/triage/sessions/"+opened.SessionKey+"/messages",
		map[string]string{"text": "I'm feeling chest pain and shortness of breath."}, &sent)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if sent.Status != "completed" {
		t.Fatalf("expected completed, got %q", sent.Status)
	}
	if sent.Assessment == nil || sent.Assessment.UrgencyLevel != "emergency" {
		t.Fatalf("expected an emergency assessment, got %+v", sent.Assessment)
	}

	var listed struct {
		Assessments []struct {
			UrgencyLevel string `json:"urgencyLevel"`
		} `json:"assessments"`
	}
	w = doJSON(t, srv, http.MethodGet, "/v1/triage/assessments", nil, &listed)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(listed.Assessments) != 1 || listed.Assessments[0].UrgencyLevel != "emergency" {
		t.Fatalf("expected one archived emergency assessment, got %+v", listed.Assessments)
	}
}

func TestResetReturnsFreshSession(t *testing.T) {
	srv := newTestServer(t)

	var opened struct {
		SessionKey string `json:"session_key"`
	}
	doJSON(t, srv, http.MethodPost, "/v1/triage/sessions", nil, &opened)
	doJSON(t, srv, http.MethodPost, "/v1/triage/sessions/"+opened.SessionKey+"/messages",
		map[string]string{"text": "I have a rash on my arm."}, nil)

	var reset struct {
		Status   string `json:"status"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	w := doJSON(t, srv, http.MethodPost, "/v1/triage/sessions/"+opened.SessionKey+"/reset", nil, &reset)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if reset.Status != "active" || len(reset.Messages) != 1 {
		t.Fatalf("expected a fresh single-greeting session, got status=%q messages=%d", reset.Status, len(reset.Messages))
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/v1/triage/sessions/nope", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestEmptyMessageIs400(t *testing.T) {
	srv := newTestServer(t)

	var opened struct {
		SessionKey string `json:"session_key"`
	}
	doJSON(t, srv, http.MethodPost, "/v1/triage/sessions", nil, &opened)

	w := doJSON(t, srv, http.MethodPost, "/v1/triage/sessions/"+opened.SessionKey+"/messages",
		map[string]string{"text": "   "}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestExamplesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// No auth required for the canned prompts.
	req := httptest.NewRequest(http.MethodGet, "/v1/triage/examples", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Examples []string `json:"examples"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Examples) == 0 {
		t.Fatal("expected canned example prompts")
	}
}
