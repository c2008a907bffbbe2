package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sealbox/sealbox/internal/capsule"
	"github.com/sealbox/sealbox/internal/config"
	"github.com/sealbox/sealbox/internal/errors"
)

// Admin issues and validates the opaque credential required by the
// administrative operations. Tokens are HS256-signed with a configured
// secret and expire after the configured TTL.
type Admin struct {
	password string
	secret   []byte
	ttl      time.Duration
	clock    capsule.Clock
}

// NewAdmin builds the gate from config. An empty configured secret gets a
// random per-process replacement, so tokens stop validating on restart.
func NewAdmin(cfg *config.Config, clock capsule.Clock) *Admin {
	secret := []byte(cfg.TokenSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		rand.Read(secret)
	}

	ttl := time.Duration(cfg.TokenTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Admin{
		password: cfg.AdminPassword,
		secret:   secret,
		ttl:      ttl,
		clock:    clock,
	}
}

// Login checks the admin password and returns a signed token.
// A blank configured password disables login entirely.
func (a *Admin) Login(password string) (string, error) {
	if a.password == "" {
		return "", errors.NewInvalidPassword()
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return "", errors.NewInvalidPassword()
	}

	now := a.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return token, nil
}

// Validate checks a credential. Missing, malformed, wrongly signed, and
// expired tokens all yield UNAUTHORIZED.
func (a *Admin) Validate(credential string) error {
	if credential == "" {
		return errors.NewUnauthorized()
	}

	_, err := jwt.Parse(credential,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.clock.Now),
	)
	if err != nil {
		return errors.NewUnauthorized()
	}
	return nil
}
