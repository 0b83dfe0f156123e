package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fathima-sithara/connect-service/internal/auth"
	"github.com/fathima-sithara/connect-service/internal/models"
	"github.com/fathima-sithara/connect-service/internal/repository"
)

func newHandshakeFixture(t *testing.T, ids ...string) (*auth.JWTValidator, *repository.MemoryUserStore) {
	t.Helper()
	jv, err := auth.NewJWTValidator("HS256", "test-secret", "")
	require.NoError(t, err)
	users := repository.NewMemoryUserStore()
	for _, id := range ids {
		users.Put(&models.User{ID: id, Name: "User " + id})
	}
	return jv, users
}

func TestAuthenticateValidToken(t *testing.T) {
	jv, users := newHandshakeFixture(t, "a")

	token, err := jv.Sign("a")
	require.NoError(t, err)

	user, reason := authenticate(jv, users, token, time.Second)
	require.NotNil(t, user)
	require.Empty(t, reason)
	require.Equal(t, "a", user.ID)
}

func TestAuthenticateMissingToken(t *testing.T) {
	jv, users := newHandshakeFixture(t, "a")

	user, reason := authenticate(jv, users, "", time.Second)
	require.Nil(t, user)
	require.Equal(t, "Authentication error", reason)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	jv, users := newHandshakeFixture(t, "a")

	user, reason := authenticate(jv, users, "not-a-token", time.Second)
	require.Nil(t, user)
	require.Equal(t, "Authentication error", reason)

	// A token signed with a different secret is just as dead.
	other, err := auth.NewJWTValidator("HS256", "other-secret", "")
	require.NoError(t, err)
	forged, err := other.Sign("a")
	require.NoError(t, err)

	user, reason = authenticate(jv, users, forged, time.Second)
	require.Nil(t, user)
	require.Equal(t, "Authentication error", reason)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	jv, users := newHandshakeFixture(t, "a")

	// Valid credential for a subject with no user record.
	token, err := jv.Sign("ghost")
	require.NoError(t, err)

	user, reason := authenticate(jv, users, token, time.Second)
	require.Nil(t, user)
	require.Equal(t, "User not found", reason)
}
