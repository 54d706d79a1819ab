package favorite

import (
	"context"

	"gorm.io/gorm"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
	"github.com/okwareddevnest/movie-discovery-app/internal/pkg"
)

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a FavoriteRepository backed by db.
func NewFavoriteRepository(db *gorm.DB) domain.FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Create inserts fav. The (user_id, movie_id) unique index turns a second
// insert for the same pair into AlreadyExists, including under concurrency.
func (r *favoriteRepository) Create(ctx context.Context, fav *domain.Favorite) error {
	if err := r.db.WithContext(ctx).Create(fav).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// ListByUser returns the user's favorites, newest first.
func (r *favoriteRepository) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	favs := make([]domain.Favorite, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&favs).Error
	if err != nil {
		return nil, mapError(err)
	}
	return favs, nil
}

func (r *favoriteRepository) DeleteByUserAndMovie(ctx context.Context, userID, movieID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&domain.Favorite{})
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewAppError(domain.CodeNotFound, "favorite not found", nil)
	}
	return nil
}

func mapError(err error) error {
	return pkg.MapDBError(err, "favorite not found", "movie already in favorites")
}
