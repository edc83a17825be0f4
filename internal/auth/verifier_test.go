package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/research_hub/internal/domain"
	"github.com/immxrtalbeast/research_hub/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerifier(t *testing.T) (*SessionVerifier, *TokenManager, *repository.InMemoryUserRepository) {
	t.Helper()

	tokens := NewTokenManager("test-secret", time.Hour, "test-issuer")
	users := repository.NewInMemoryUserRepository()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewSessionVerifier(tokens, users, log), tokens, users
}

func TestSessionVerifier_ResolvesIdentity(t *testing.T) {
	verifier, tokens, users := newVerifier(t)

	user := domain.NewUser("Grace", "grace@example.com")
	require.NoError(t, users.Create(context.Background(), user))

	token, err := tokens.Issue(user.ID, user.Name)
	require.NoError(t, err)

	identity, err := verifier.Authenticate(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "Grace", identity.Name)
}

func TestSessionVerifier_RejectsMissingToken(t *testing.T) {
	verifier, _, _ := newVerifier(t)

	_, err := verifier.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionVerifier_RejectsUnknownUser(t *testing.T) {
	verifier, tokens, _ := newVerifier(t)

	token, err := tokens.Issue(uuid.New(), "Ghost")
	require.NoError(t, err)

	_, err = verifier.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrAccountUnavailable)
}

func TestSessionVerifier_RejectsSuspendedUser(t *testing.T) {
	verifier, tokens, users := newVerifier(t)

	user := domain.NewUser("Mallory", "")
	user.Suspended = true
	require.NoError(t, users.Create(context.Background(), user))

	token, err := tokens.Issue(user.ID, user.Name)
	require.NoError(t, err)

	_, err = verifier.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrAccountUnavailable)
}
