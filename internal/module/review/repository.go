package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
	"github.com/okwareddevnest/movie-discovery-app/internal/pkg"
)

type reviewRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewReviewRepository creates a ReviewRepository backed by db.
func NewReviewRepository(db *gorm.DB) domain.ReviewRepository {
	return &reviewRepository{db: db, now: time.Now}
}

// Upsert inserts the review for (UserID, MovieID) or overwrites rating, title
// and comment of the existing one in a single INSERT ... ON CONFLICT statement,
// so concurrent submissions for the same pair end in one row without a
// read-then-write race. The stored row is read back for its ID and timestamps.
func (r *reviewRepository) Upsert(ctx context.Context, review *domain.Review) (bool, error) {
	now := r.now()
	review.ID = uuid.NewString()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}
	review.UpdatedAt = now

	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "title", "comment", "updated_at"}),
	}).Create(review).Error
	if err != nil {
		return false, mapError(err)
	}

	var stored domain.Review
	err = db.Select("id", "created_at", "updated_at").
		Where("user_id = ? AND movie_id = ?", review.UserID, review.MovieID).
		Take(&stored).Error
	if err != nil {
		return false, mapError(err)
	}

	created := stored.ID == review.ID
	review.ID = stored.ID
	review.CreatedAt = stored.CreatedAt
	review.UpdatedAt = stored.UpdatedAt
	return created, nil
}

// GetByID loads a review with its author's name.
func (r *reviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	var review domain.Review
	if err := r.withAuthor(ctx).Where("reviews.id = ?", id).Take(&review).Error; err != nil {
		return nil, mapError(err)
	}
	return &review, nil
}

// ListByMovie returns every review of a movie, newest first, with author names.
func (r *reviewRepository) ListByMovie(ctx context.Context, movieID string) ([]domain.Review, error) {
	return r.list(ctx, "reviews.movie_id = ?", movieID)
}

// ListByUser returns the reviews written by userID, newest first.
func (r *reviewRepository) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	return r.list(ctx, "reviews.user_id = ?", userID)
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Review{})
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewAppError(domain.CodeNotFound, "review not found", nil)
	}
	return nil
}

func (r *reviewRepository) list(ctx context.Context, cond string, arg any) ([]domain.Review, error) {
	reviews := make([]domain.Review, 0)
	err := r.withAuthor(ctx).
		Where(cond, arg).
		Order("reviews.created_at DESC").
		Order("reviews.id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, mapError(err)
	}
	return reviews, nil
}

// withAuthor selects reviews joined with the author's display name. A left
// join keeps reviews whose author row is gone.
func (r *reviewRepository) withAuthor(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&domain.Review{}).
		Select("reviews.*, COALESCE(users.name, ?) AS user_name", "").
		Joins("LEFT JOIN users ON users.id = reviews.user_id")
}

func mapError(err error) error {
	return pkg.MapDBError(err, "review not found", "review already exists")
}
