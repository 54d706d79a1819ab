package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
	"github.com/okwareddevnest/movie-discovery-app/internal/middleware"
	"github.com/okwareddevnest/movie-discovery-app/internal/pkg"
)

const avatarFormField = "avatar"

// UserHandler handles REST API requests for the caller's own profile.
type UserHandler struct {
	svc           domain.UserService
	maxAvatarSize int64
}

// NewUserHandler creates a new UserHandler with the given service.
// maxAvatarSize bounds the multipart body read for avatar uploads.
func NewUserHandler(svc domain.UserService, maxAvatarSize int64) *UserHandler {
	return &UserHandler{svc: svc, maxAvatarSize: maxAvatarSize}
}

// GetProfile handles GET /api/users/profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.svc.GetProfile(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, gin.H{"user": user})
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c).ID, req.Name, req.Avatar)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, gin.H{"user": user})
}

// UploadAvatar handles POST /api/users/profile/avatar (multipart field "avatar").
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	if h.maxAvatarSize > 0 {
		// Leave headroom for multipart framing.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxAvatarSize+64<<10)
	}

	fh, err := c.FormFile(avatarFormField)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "avatar file is required", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "avatar file is unreadable", err))
		return
	}
	defer f.Close()

	user, err := h.svc.UploadAvatar(c.Request.Context(), middleware.CurrentUser(c).ID, domain.AvatarUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, gin.H{"user": user})
}
