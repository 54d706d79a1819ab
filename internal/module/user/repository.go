package user

import (
	"context"

	"gorm.io/gorm"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
	"github.com/okwareddevnest/movie-discovery-app/internal/pkg"
)

// userRepository implements domain.UserRepository using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository backed by the given GORM database.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. A taken email yields AlreadyExists.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// GetByID retrieves a user by its primary key.
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetByEmail looks up a user by the normalized email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// UpdateProfile writes name and avatar only. Email and password hash are
// never touched here.
func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	result := r.db.WithContext(ctx).
		Model(user).
		Select("name", "avatar", "updated_at").
		Updates(map[string]any{
			"name":   user.Name,
			"avatar": user.Avatar,
		})
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewAppError(domain.CodeNotFound, "user not found", nil)
	}
	return nil
}

func mapError(err error) error {
	return pkg.MapDBError(err, "user not found", "email already registered")
}
