package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
)

// --- fakes ---

type fakeUserRepo struct {
	byEmail   map[string]*domain.User
	createErr error
	getErr    error
	nextID    int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.NewAppError(domain.CodeAlreadyExists, "email already registered", errors.New("UNIQUE constraint failed"))
	}
	f.nextID++
	u.ID = "user-" + string(rune('0'+f.nextID))
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.NewAppError(domain.CodeNotFound, "user not found", nil)
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.NewAppError(domain.CodeNotFound, "user not found", nil)
}

func (f *fakeUserRepo) UpdateProfile(context.Context, *domain.User) error { return nil }

type fakeIssuer struct {
	err    error
	issued []string
}

func (f *fakeIssuer) Issue(userID string) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	f.issued = append(f.issued, userID)
	return "token-for-" + userID, time.Unix(1700000000, 0), nil
}

func newTestService(t *testing.T) (Service, *fakeUserRepo, *fakeIssuer) {
	t.Helper()
	repo := newFakeUserRepo()
	issuer := &fakeIssuer{}
	svc, err := NewService(repo, issuer, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, issuer
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	svc, repo, _ := newTestService(t)

	res, err := svc.Register(context.Background(), "  Ann ", "  Ann@X.com ", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.User.Name != "Ann" || res.User.Email != "ann@x.com" {
		t.Errorf("user not normalized: %+v", res.User)
	}
	if res.Token != "token-for-"+res.User.ID {
		t.Errorf("token = %q", res.Token)
	}
	stored := repo.byEmail["ann@x.com"]
	if stored == nil || stored.PasswordHash == "secret1" {
		t.Fatal("password must be stored hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")) != nil {
		t.Error("stored hash does not match password")
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"empty name", " ", "a@x.com", "secret1"},
		{"long name", strings.Repeat("a", 101), "a@x.com", "secret1"},
		{"empty email", "Ann", "  ", "secret1"},
		{"bad email", "Ann", "not-an-email", "secret1"},
		{"display-name email", "Ann", "Ann <a@x.com>", "secret1"},
		{"short password", "Ann", "a@x.com", "12345"},
		{"long password", "Ann", "a@x.com", strings.Repeat("p", 73)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			_, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			if !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(repo.byEmail) != 0 {
				t.Fatal("no user should be stored")
			}
		})
	}
}

func TestRegister_PasswordBoundaries(t *testing.T) {
	for _, pw := range []string{"123456", strings.Repeat("p", 72)} {
		svc, _, _ := newTestService(t)
		if _, err := svc.Register(context.Background(), "Ann", "a@x.com", pw); err != nil {
			t.Errorf("password of length %d should be accepted: %v", len(pw), err)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ann", "ann@x.com", "secret1"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(ctx, "Other Ann", "ANN@x.com", "secret2")
	if !domain.IsAlreadyExists(err) {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}
}

func TestRegister_TokenFailure(t *testing.T) {
	svc, _, issuer := newTestService(t)
	issuer.err = errors.New("signing failed")

	if _, err := svc.Register(context.Background(), "Ann", "ann@x.com", "secret1"); !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, "Ann", "ann@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Login(ctx, " ANN@x.com ", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User.ID != reg.User.ID || res.Token == "" {
		t.Errorf("unexpected login result: %+v", res)
	}
}

func TestLogin_FailuresIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "Ann", "ann@x.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, wrongPw := svc.Login(ctx, "ann@x.com", "wrong-password")
	_, unknown := svc.Login(ctx, "nobody@x.com", "secret1")

	for _, err := range []error{wrongPw, unknown} {
		if !domain.IsUnauthorized(err) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	}
	if wrongPw.Error() != unknown.Error() {
		t.Errorf("messages differ: %q vs %q", wrongPw, unknown)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Login(context.Background(), "", "x"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogin_StoreError(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.getErr = domain.NewAppError(domain.CodeInternal, "database error", errors.New("db down"))

	if _, err := svc.Login(context.Background(), "ann@x.com", "secret1"); !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
