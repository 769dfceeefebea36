package identity

import (
	"context"

	"github.com/carebow/triage-api/internal/domain"
)

// Local resolves every non-empty bearer token to one configured user. The
// real verifier is an external collaborator; this stands in for it in local
// mode and tests.
type Local struct {
	User domain.UserID
}

func NewLocal(user domain.UserID) Local {
	return Local{User: user}
}

func (l Local) Resolve(_ context.Context, token string) (domain.UserID, error) {
	if token == "" {
		return "", domain.ErrUnauthorized
	}
	return l.User, nil
}

// StaticCredentials is a CredentialProvider that always returns the same
// identity and token; used by tests and by non-HTTP callers.
type StaticCredentials struct {
	Creds domain.Credentials
}

func (s StaticCredentials) Credentials(context.Context) (domain.Credentials, error) {
	if s.Creds.UserID == "" {
		return domain.Credentials{}, domain.ErrUnauthorized
	}
	return s.Creds, nil
}
