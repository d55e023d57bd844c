package auth

import (
	"testing"
	"time"

	"github.com/etnz/tradedesk/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *Service {
	return New(config.AuthConfig{JWTSecret: "test-secret-key-for-tradedesk-tests", Issuer: "tradedesk", TokenTTL: time.Hour})
}

func TestIssueVerify(t *testing.T) {
	s := newService()
	token, err := s.Issue("user-1")
	require.NoError(t, err)

	sub, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestVerify_Rejects(t *testing.T) {
	s := newService()
	token, err := s.Issue("user-1")
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("other secret", func(t *testing.T) {
		other := New(config.AuthConfig{JWTSecret: "another-secret", Issuer: "tradedesk"})
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("other issuer", func(t *testing.T) {
		other := New(config.AuthConfig{JWTSecret: "test-secret-key-for-tradedesk-tests", Issuer: "someone-else"})
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("expired", func(t *testing.T) {
		later := newService()
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1", Issuer: "tradedesk"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.Verify(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("no subject", func(t *testing.T) {
		_, err := s.Issue("")
		assert.ErrorIs(t, err, ErrMissingSubject)
	})
}

func TestPassphrase(t *testing.T) {
	hash, err := HashPassphrase("open sesame")
	require.NoError(t, err)

	assert.NoError(t, CheckPassphrase(hash, "open sesame"))
	assert.ErrorIs(t, CheckPassphrase(hash, "wrong"), ErrInvalidPassphrase)
	assert.NoError(t, CheckPassphrase("", "anything"))
}
