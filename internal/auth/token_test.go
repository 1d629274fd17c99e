package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalczyk/socialfeed/internal/domain"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	token, err := codec.Issue("account-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "account-123", subject)
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	token, err := NewTokenCodec("secret-a").Issue("account-123")
	require.NoError(t, err)

	_, err = NewTokenCodec("secret-b").Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := codec.Verify(token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "token %q", token)
	}
}

func TestTokenCodec_Tampered(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	token, err := codec.Issue("account-123")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = codec.Verify(tampered)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenCodec_Expired(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	issued := time.Now().UTC()
	codec.now = func() time.Time { return issued }
	token, err := codec.Issue("account-123")
	require.NoError(t, err)

	// still valid just inside the lifetime
	codec.now = func() time.Time { return issued.Add(SessionLifetime - time.Minute) }
	_, err = codec.Verify(token)
	assert.NoError(t, err)

	// expired past the lifetime
	codec.now = func() time.Time { return issued.Add(SessionLifetime + time.Minute) }
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
