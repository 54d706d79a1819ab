package user

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
)

const maxAvatarURLLen = 512

// allowedAvatarTypes maps accepted image content types to the stored file extension.
var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// userService implements domain.UserService.
type userService struct {
	repo          domain.UserRepository
	avatars       AvatarStore
	maxAvatarSize int64
}

// Option configures the user service.
type Option func(*userService)

// WithAvatarStore enables avatar uploads up to maxBytes per image.
func WithAvatarStore(store AvatarStore, maxBytes int64) Option {
	return func(s *userService) {
		s.avatars = store
		s.maxAvatarSize = maxBytes
	}
}

// NewUserService creates a new UserService with the given repository.
func NewUserService(repo domain.UserRepository, opts ...Option) domain.UserService {
	s := &userService{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetProfile returns the stored user.
func (s *userService) GetProfile(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile changes display name and avatar URL. An empty avatar clears it.
func (s *userService) UpdateProfile(ctx context.Context, id, name, avatar string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	avatar = strings.TrimSpace(avatar)
	if err := validateProfile(name, avatar); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.Avatar = avatar
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// UploadAvatar stores the image and points the user's avatar at it.
func (s *userService) UploadAvatar(ctx context.Context, id string, up domain.AvatarUpload) (*domain.User, error) {
	if s.avatars == nil {
		return nil, domain.NewAppError(domain.CodeInternal, "avatar storage is not configured", nil)
	}

	contentType := strings.ToLower(strings.TrimSpace(up.ContentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	ext, ok := allowedAvatarTypes[contentType]
	if !ok {
		return nil, domain.NewAppError(domain.CodeValidation, "avatar must be a jpeg, png, webp or gif image", nil)
	}
	if up.Size <= 0 {
		return nil, domain.NewAppError(domain.CodeValidation, "avatar file is empty", nil)
	}
	if s.maxAvatarSize > 0 && up.Size > s.maxAvatarSize {
		return nil, domain.NewAppError(domain.CodeValidation, "avatar file is too large", nil)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	avatarURL, err := s.avatars.Put(ctx, user.ID, ext, contentType, up.Body, up.Size)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeUpstream, "failed to store avatar", err)
	}

	user.Avatar = avatarURL
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func validateProfile(name, avatar string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return domain.NewAppError(domain.CodeValidation, "name is required", nil)
	}
	if n > 100 {
		return domain.NewAppError(domain.CodeValidation, "name must not exceed 100 characters", nil)
	}
	if avatar == "" {
		return nil
	}
	if len(avatar) > maxAvatarURLLen {
		return domain.NewAppError(domain.CodeValidation, "avatar URL is too long", nil)
	}
	u, err := url.Parse(avatar)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.NewAppError(domain.CodeValidation, "avatar must be an absolute http(s) URL", nil)
	}
	return nil
}
