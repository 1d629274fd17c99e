package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalczyk/socialfeed/internal/domain"
)

func TestGuard_Allow(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	guard := NewGuard(codec)

	token, err := codec.Issue("account-123")
	require.NoError(t, err)

	assert.NoError(t, guard.Authorize(token, "account-123"))
}

func TestGuard_NoToken(t *testing.T) {
	guard := NewGuard(NewTokenCodec("test-secret"))

	err := guard.Authorize("", "account-123")
	assert.ErrorIs(t, err, domain.ErrNoToken)
}

func TestGuard_InvalidToken(t *testing.T) {
	guard := NewGuard(NewTokenCodec("test-secret"))

	err := guard.Authorize("not-a-token", "account-123")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestGuard_NotOwner(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	guard := NewGuard(codec)

	token, err := codec.Issue("account-123")
	require.NoError(t, err)

	err = guard.Authorize(token, "account-456")
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("sup3rsecret")
	require.NoError(t, err)
	assert.NotEqual(t, "sup3rsecret", hash)

	assert.NoError(t, hasher.Compare(hash, "sup3rsecret"))
	assert.Error(t, hasher.Compare(hash, "wrongpass1"))
}
