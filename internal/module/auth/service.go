package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt ignores bytes past 72
	maxNameLen     = 100
)

var errInvalidCredentials = domain.NewAppError(domain.CodeUnauthorized, "invalid email or password", nil)

// Result is what a successful register or login returns.
type Result struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// TokenIssuer signs bearer tokens for a user ID.
type TokenIssuer interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
}

// Service defines the authentication operations.
type Service interface {
	Register(ctx context.Context, name, email, password string) (*Result, error)
	Login(ctx context.Context, email, password string) (*Result, error)
}

type authService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	cost   int

	// dummyHash is compared against when the email is unknown so that
	// both login failure paths cost one bcrypt comparison.
	dummyHash []byte
}

// NewService creates an auth Service. cost is the bcrypt cost; zero means
// bcrypt.DefaultCost.
func NewService(users domain.UserRepository, tokens TokenIssuer, cost int) (Service, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, err
	}
	return &authService{users: users, tokens: tokens, cost: cost, dummyHash: dummy}, nil
}

// Register creates an account and signs the new user in.
func (s *authService) Register(ctx context.Context, name, email, password string) (*Result, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := validateRegisterInput(name, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, domain.NewAppError(domain.CodeAlreadyExists, "email already registered", err)
		}
		return nil, err
	}

	return s.issue(user)
}

// Login checks credentials. Unknown email and wrong password fail the same way.
func (s *authService) Login(ctx context.Context, email, password string) (*Result, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) issue(user *domain.User) (*Result, error) {
	token, exp, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to issue token", err)
	}
	return &Result{User: user, Token: token, ExpiresAt: exp}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegisterInput(name, email, password string) error {
	nameLen := utf8.RuneCountInString(name)
	if nameLen == 0 {
		return domain.NewAppError(domain.CodeValidation, "name is required", nil)
	}
	if nameLen > maxNameLen {
		return domain.NewAppError(domain.CodeValidation, "name must not exceed 100 characters", nil)
	}
	if email == "" {
		return domain.NewAppError(domain.CodeValidation, "email is required", nil)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return domain.NewAppError(domain.CodeValidation, "email must be a valid email address", nil)
	}
	if len(password) < minPasswordLen {
		return domain.NewAppError(domain.CodeValidation, "password must be at least 6 characters", nil)
	}
	if len(password) > maxPasswordLen {
		return domain.NewAppError(domain.CodeValidation, "password must not exceed 72 bytes", nil)
	}
	return nil
}
