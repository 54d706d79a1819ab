package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
	"github.com/okwareddevnest/movie-discovery-app/internal/pkg"
)

const currentUserKey = "current_user"

// TokenVerifier validates a bearer token and returns the user ID it was
// issued for.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserLoader resolves a verified user ID to the stored user.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Auth guards a route group. It requires "Authorization: Bearer <token>",
// verifies the token and loads the user it names. Any failure aborts with 401
// before the handler runs. On success the user is available through
// CurrentUser.
func Auth(verifier TokenVerifier, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			pkg.Abort(c, domain.NewAppError(domain.CodeUnauthorized, "missing or malformed authorization header", nil))
			return
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			slog.DebugContext(c.Request.Context(), "token rejected", slog.Any("error", err))
			pkg.Abort(c, domain.NewAppError(domain.CodeUnauthorized, "invalid or expired token", nil))
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if domain.IsNotFound(err) {
				pkg.Abort(c, domain.NewAppError(domain.CodeUnauthorized, "user no longer exists", nil))
				return
			}
			pkg.Abort(c, err)
			return
		}

		SetCurrentUser(c, user)
		c.Next()
	}
}

// SetCurrentUser attaches user to the gin context and tags log records
// written with the request context with user_id.
func SetCurrentUser(c *gin.Context, user *domain.User) {
	c.Set(currentUserKey, user)
	ctx := logger.WithContextAttrs(c.Request.Context(), slog.String("user_id", user.ID))
	c.Request = c.Request.WithContext(ctx)
}

// CurrentUser returns the user attached by Auth, or nil on public routes.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
