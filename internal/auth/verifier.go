package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/research_hub/internal/domain"
	"github.com/immxrtalbeast/research_hub/internal/repository"
	"github.com/immxrtalbeast/research_hub/lib/logger/sl"
)

var ErrAccountUnavailable = errors.New("account unavailable")

// SessionVerifier resolves a raw session token to an authenticated identity.
// Called exactly once per connection, before any event dispatch.
type SessionVerifier struct {
	tokens *TokenManager
	users  repository.UserRepository
	log    *slog.Logger
}

func NewSessionVerifier(tokens *TokenManager, users repository.UserRepository, log *slog.Logger) *SessionVerifier {
	if log == nil {
		log = slog.Default()
	}
	return &SessionVerifier{tokens: tokens, users: users, log: log}
}

// Authenticate verifies the token and resolves its subject to a stored user.
// Missing, malformed or expired tokens, unknown subjects and suspended
// accounts all refuse the connection.
func (v *SessionVerifier) Authenticate(ctx context.Context, rawToken string) (*domain.Identity, error) {
	const op = "auth.verifier.authenticate"

	claims, err := v.tokens.Verify(rawToken)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := v.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAccountUnavailable
		}
		v.log.Error("user lookup failed", slog.String("op", op), sl.Err(err))
		return nil, err
	}

	if user.Suspended {
		return nil, ErrAccountUnavailable
	}

	return &domain.Identity{UserID: user.ID, Name: user.Name}, nil
}
