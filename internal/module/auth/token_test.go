package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/simp-lee/jwt"
)

const testSecret = "0123456789abcdef0123456789ABCDEF!"

// fakeJWTService implements jwt.Service for testing.
type fakeJWTService struct {
	token    string
	err      error
	parseErr error
	closed   bool
}

func (f *fakeJWTService) GenerateToken(userID string, _ []string, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.token != "" {
		return f.token, nil
	}
	return "token-for-" + userID, nil
}
func (f *fakeJWTService) ValidateToken(string) (*jwt.Token, error)                 { return nil, nil }
func (f *fakeJWTService) ValidateAndParse(string) (*jwt.Token, error)              { return nil, nil }
func (f *fakeJWTService) RefreshToken(string) (string, error)                      { return "", nil }
func (f *fakeJWTService) RefreshTokenExtend(string, time.Duration) (string, error) { return "", nil }
func (f *fakeJWTService) RevokeToken(string) error                                 { return nil }
func (f *fakeJWTService) IsTokenRevoked(string) bool                               { return false }
func (f *fakeJWTService) ParseToken(string) (*jwt.Token, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return &jwt.Token{ExpiresAt: time.Unix(1700000000, 0)}, nil
}
func (f *fakeJWTService) RevokeAllUserTokens(string) error { return nil }
func (f *fakeJWTService) Close()                           { f.closed = true }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestTokens(t *testing.T, expiry time.Duration, opts ...jwt.Option) *TokenService {
	t.Helper()
	s, err := NewTokenService(testSecret, "movies-test", expiry, opts...)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewTokenService_Validation(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		expiry time.Duration
	}{
		{"empty secret", "", time.Hour},
		{"short secret", "too-short", time.Hour},
		{"zero expiry", testSecret, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTokenService(tt.secret, "x", tt.expiry); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTokenService_RoundTrip(t *testing.T) {
	for _, expiry := range []time.Duration{time.Hour, 720 * time.Hour} {
		t.Run(expiry.String(), func(t *testing.T) {
			s := newTestTokens(t, expiry)
			before := time.Now()

			token, exp, err := s.Issue("user-1")
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			if strings.Count(token, ".") != 2 {
				t.Fatalf("token %q is not a compact JWS", token)
			}
			if exp.Before(before.Add(expiry-time.Second)) || exp.After(before.Add(expiry+time.Second)) {
				t.Errorf("exp = %v, want about %v from now", exp, expiry)
			}

			id, err := s.Verify(token)
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if id != "user-1" {
				t.Errorf("user ID = %q, want user-1", id)
			}
		})
	}
}

func forge(t *testing.T, method gojwt.SigningMethod, key any, claims gojwt.MapClaims) string {
	t.Helper()
	tok, err := gojwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestTokenService_Rejects(t *testing.T) {
	s := newTestTokens(t, time.Hour)
	good, _, _ := s.Issue("user-1")

	past := newTestTokens(t, time.Hour, jwt.WithClock(fixedClock{time.Now().Add(-2 * time.Hour)}))
	expiredTok, _, _ := past.Issue("user-1")

	otherKey, err := NewTokenService("another-secret-another-secret-XYZ!", "movies-test", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	defer otherKey.Close()
	foreignTok, _, _ := otherKey.Issue("user-1")

	otherIssuer := NewTokenServiceWith(mustJWT(t, jwt.WithIssuer("someone-else")), time.Hour)
	defer otherIssuer.Close()
	issuerTok, _, _ := otherIssuer.Issue("user-1")

	now := time.Now()
	valid := gojwt.MapClaims{
		"user_id": "user-1",
		"iss":     "movies-test",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	}
	without := func(key string) gojwt.MapClaims {
		out := gojwt.MapClaims{}
		for k, v := range valid {
			if k != key {
				out[k] = v
			}
		}
		return out
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"tampered", good[:len(good)-2] + "xx"},
		{"expired", expiredTok},
		{"wrong key", foreignTok},
		{"wrong issuer", issuerTok},
		{"alg none", forge(t, gojwt.SigningMethodNone, gojwt.UnsafeAllowNoneSignatureType, valid)},
		{"hs512", forge(t, gojwt.SigningMethodHS512, []byte(testSecret), valid)},
		{"no expiry", forge(t, gojwt.SigningMethodHS256, []byte(testSecret), without("exp"))},
		{"no user", forge(t, gojwt.SigningMethodHS256, []byte(testSecret), without("user_id"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Verify(tt.token); err == nil {
				t.Fatal("expected Verify to fail")
			}
		})
	}

	if id, err := s.Verify(forge(t, gojwt.SigningMethodHS256, []byte(testSecret), valid)); err != nil || id != "user-1" {
		t.Fatalf("Verify(valid claims) = %q, %v", id, err)
	}
}

func mustJWT(t *testing.T, opts ...jwt.Option) jwt.Service {
	t.Helper()
	svc, err := jwt.New(testSecret, opts...)
	if err != nil {
		t.Fatalf("jwt.New: %v", err)
	}
	return svc
}

func TestTokenService_IssueErrors(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeJWTService
	}{
		{"generate fails", &fakeJWTService{err: errors.New("jwt broken")}},
		{"parse fails", &fakeJWTService{parseErr: errors.New("parse failed")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewTokenServiceWith(tt.fake, time.Hour)
			if tok, _, err := s.Issue("user-1"); err == nil {
				t.Fatalf("Issue() = %q, want error", tok)
			}
		})
	}
}

func TestTokenService_IssueWithFake(t *testing.T) {
	s := NewTokenServiceWith(&fakeJWTService{}, time.Hour)

	tok, exp, err := s.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok != "token-for-u1" || !exp.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("Issue() = %q, %v", tok, exp)
	}
}

func TestTokenService_Close(t *testing.T) {
	fake := &fakeJWTService{}
	if err := NewTokenServiceWith(fake, time.Hour).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !fake.closed {
		t.Error("Close should stop the jwt service")
	}
}
