package httpadapter

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carebow/triage-api/internal/domain"
	"github.com/carebow/triage-api/internal/observability"
)

type ctxKey string

const ctxKeyCredentials ctxKey = "credentials"

// RequestCredentials reads the per-request credentials the auth middleware
// stored in the context. It is the CredentialProvider handed to the turn
// controller, so the controller never touches ambient auth state.
type RequestCredentials struct{}

func (RequestCredentials) Credentials(ctx context.Context) (domain.Credentials, error) {
	creds, ok := ctx.Value(ctxKeyCredentials).(domain.Credentials)
	if !ok || creds.UserID == "" {
		return domain.Credentials{}, domain.ErrUnauthorized
	}
	return creds, nil
}

// withCredentials is used by tests to run handlers under a fixed identity.
func withCredentials(ctx context.Context, creds domain.Credentials) context.Context {
	return context.WithValue(ctx, ctxKeyCredentials, creds)
}

// withAuth extracts the bearer token, resolves it through the identity
// collaborator, and stores identity+token in the request context.
func withAuth(ids domain.IdentityProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authorization header required")
				return
			}

			userID, err := ids.Resolve(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "authentication failed")
				return
			}

			ctx := withCredentials(r.Context(), domain.Credentials{UserID: userID, Token: token})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// withRequestID tags every request with an id for log correlation.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		next.ServeHTTP(w, r.WithContext(observability.WithRequestID(r.Context(), reqID)))
	})
}

// withLogging logs every request with its duration.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		observability.LoggerFromContext(r.Context()).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed_ms", time.Since(start).Milliseconds())
	})
}

// withCORS adds basic CORS headers to allow calls from a web front-end.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
