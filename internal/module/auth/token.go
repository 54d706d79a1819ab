package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/simp-lee/jwt"
)

// TokenService issues and verifies bearer tokens for a user ID on top of a
// jwt.Service. Tokens are stateless; nothing is revoked or refreshed.
type TokenService struct {
	jwtSvc jwt.Service
	expiry time.Duration
}

// NewTokenService builds the jwt.Service from secret and issuer. The maximum
// token lifetime follows expiry, so expiries beyond the library's 24h default
// are accepted. Extra options (a test clock, leeway) are applied last.
func NewTokenService(secret, issuer string, expiry time.Duration, opts ...jwt.Option) (*TokenService, error) {
	if expiry <= 0 {
		return nil, errors.New("auth: token expiry must be positive")
	}

	revocationTTL := jwt.DefaultUserRevocationTTL
	if expiry > revocationTTL {
		revocationTTL = expiry
	}
	base := []jwt.Option{
		jwt.WithIssuer(issuer),
		jwt.WithMaxTokenLifetime(expiry),
		jwt.WithUserRevocationTTL(revocationTTL),
	}

	svc, err := jwt.New(secret, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	return &TokenService{jwtSvc: svc, expiry: expiry}, nil
}

// NewTokenServiceWith wraps an existing jwt.Service.
func NewTokenServiceWith(svc jwt.Service, expiry time.Duration) *TokenService {
	return &TokenService{jwtSvc: svc, expiry: expiry}
}

// Issue signs a token for userID and returns it with its expiry time.
func (s *TokenService) Issue(userID string) (string, time.Time, error) {
	token, err := s.jwtSvc.GenerateToken(userID, nil, s.expiry)
	if err != nil {
		return "", time.Time{}, err
	}

	// Report the expiry the token actually carries (second precision).
	parsed, err := s.jwtSvc.ParseToken(token)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse issued token: %w", err)
	}
	return token, parsed.ExpiresAt, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the
// user ID the token was issued for.
func (s *TokenService) Verify(token string) (string, error) {
	parsed, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return "", err
	}
	if parsed.UserID == "" {
		return "", errors.New("auth: token has no user")
	}
	return parsed.UserID, nil
}

// Close stops the jwt.Service background cleanup.
func (s *TokenService) Close() error {
	s.jwtSvc.Close()
	return nil
}
