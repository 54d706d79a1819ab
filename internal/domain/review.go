package domain

import "context"

// Rating bounds for a review, inclusive.
const (
	MinReviewRating = 1
	MaxReviewRating = 10
)

// Review is a user's rating and comment for a movie. There is at most one
// review per (user, movie); resubmitting overwrites it.
type Review struct {
	BaseModel
	UserID  string `gorm:"size:36;not null;uniqueIndex:idx_reviews_user_movie,priority:1" json:"userId"`
	MovieID string `gorm:"size:32;not null;index;uniqueIndex:idx_reviews_user_movie,priority:2" json:"movieId"`
	Rating  int    `gorm:"not null" json:"rating"`
	Title   string `gorm:"size:200;not null" json:"title"`
	Comment string `gorm:"type:text;not null" json:"comment"`

	// UserName is the author's display name, filled by joined reads only.
	UserName string `gorm:"->;-:migration" json:"userName,omitempty"`
}

// ReviewInput carries every field of a review submission. All fields are
// required: an upsert overwrites the stored review completely.
type ReviewInput struct {
	MovieID string
	Rating  int
	Title   string
	Comment string
}

// ReviewRepository defines the data access interface for reviews.
type ReviewRepository interface {
	// Upsert creates the review for (UserID, MovieID) or overwrites the
	// existing one. created reports which happened.
	Upsert(ctx context.Context, review *Review) (created bool, err error)
	GetByID(ctx context.Context, id string) (*Review, error)
	ListByMovie(ctx context.Context, movieID string) ([]Review, error)
	ListByUser(ctx context.Context, userID string) ([]Review, error)
	Delete(ctx context.Context, id string) error
}

// ReviewService defines the business operations on reviews.
type ReviewService interface {
	Upsert(ctx context.Context, userID string, in ReviewInput) (review *Review, created bool, err error)
	ListByMovie(ctx context.Context, movieID string) ([]Review, error)
	ListByUser(ctx context.Context, userID string) ([]Review, error)
	Delete(ctx context.Context, reviewID, requesterID string) error
}
