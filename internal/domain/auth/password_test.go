package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/projecthub/pkg/errors"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher := newTestHasher(t)

	for _, plain := range []string{"secret1", "correct horse battery staple", "пароль-ü", strings.Repeat("a", 72)} {
		hash, err := hasher.Hash(plain)
		require.NoError(t, err)
		require.NotEqual(t, plain, hash)
		require.True(t, hasher.Verify(plain, hash), plain)
		require.False(t, hasher.Verify(plain+"x", hash), plain)
	}
}

func TestPasswordHasher_SaltPerCall(t *testing.T) {
	hasher := newTestHasher(t)

	first, err := hasher.Hash("secret1")
	require.NoError(t, err)
	second, err := hasher.Hash("secret1")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, hasher.Verify("secret1", first))
	require.True(t, hasher.Verify("secret1", second))
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	hasher := newTestHasher(t)

	for _, hash := range []string{"", "plaintext", "$2a$04$short", "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA"} {
		require.NotPanics(t, func() {
			require.False(t, hasher.Verify("secret1", hash))
		})
	}
}

func TestPasswordHasher_RejectsOverlongInput(t *testing.T) {
	hasher := newTestHasher(t)

	_, err := hasher.Hash(strings.Repeat("a", 73))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, CodeInvalidInput))
}

func TestNewPasswordHasher_Cost(t *testing.T) {
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost, cost)

	_, err = NewPasswordHasher(bcrypt.MaxCost + 1)
	require.Error(t, err)
	_, err = NewPasswordHasher(1)
	require.Error(t, err)
}

func TestPasswordHasher_BurnDoesNotPanic(t *testing.T) {
	hasher := newTestHasher(t)
	require.NotPanics(t, func() { hasher.Burn("anything") })
}

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return hasher
}
