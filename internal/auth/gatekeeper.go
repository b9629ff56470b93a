package auth

import (
	"context"
	"errors"
	"strings"
)

// ErrAuthentication is the only error a rejected connection ever sees.
// Missing, invalid and expired credentials as well as deleted users all map to it.
var ErrAuthentication = errors.New("authentication error")

// Identity is bound to an admitted connection for its whole lifetime.
type Identity struct {
	UserID   string
	Username string
}

// Admit validates a bearer credential presented at connection time and
// resolves it to a current user. The cause of a rejection is returned
// wrapped only for logging; callers must treat every failure alike.
func (s *Service) Admit(ctx context.Context, credential string) (*Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrAuthentication
	}

	claims, err := s.ValidateToken(credential)
	if err != nil {
		return nil, errors.Join(ErrAuthentication, err)
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.Join(ErrAuthentication, err)
	}

	return &Identity{UserID: user.ID, Username: user.Username}, nil
}

// CredentialFromHeader extracts the token from an "Authorization: Bearer <token>" value.
func CredentialFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
