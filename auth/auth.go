// Package auth verifies the bearer tokens of API callers and the passphrase
// of webhook alerts.
package auth

import (
	"errors"
	"time"

	"github.com/etnz/tradedesk/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token has expired")
	ErrMissingSubject    = errors.New("missing subject in claims")
	ErrInvalidPassphrase = errors.New("invalid passphrase")
)

// Service issues and verifies HS256 tokens whose subject is the user id.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// New creates a Service from the auth section of the configuration.
func New(cfg config.AuthConfig) *Service {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, ttl: ttl, now: time.Now}
}

// Issue signs a token for userID.
func (s *Service) Issue(userID string) (string, error) {
	if userID == "" {
		return "", ErrMissingSubject
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature, expiry and issuer of a token and returns the
// user id it was issued for.
func (s *Service) Verify(token string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

// HashPassphrase returns the bcrypt hash to store in
// auth.webhook_passphrase_hash.
func HashPassphrase(passphrase string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	return string(h), err
}

// CheckPassphrase compares a webhook passphrase with its configured hash.
// An empty hash accepts anything.
func CheckPassphrase(hash, passphrase string) error {
	if hash == "" {
		return nil
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(passphrase)) != nil {
		return ErrInvalidPassphrase
	}
	return nil
}
