package review

import "github.com/okwareddevnest/movie-discovery-app/internal/domain"

// UpsertReviewRequest is the body of POST /api/reviews. All fields are
// required because a resubmission replaces the stored review.
type UpsertReviewRequest struct {
	MovieID string `json:"movieId" binding:"required,max=32"`
	Rating  int    `json:"rating" binding:"required,min=1,max=10"`
	Title   string `json:"title" binding:"required,max=200"`
	Comment string `json:"comment" binding:"required,max=5000"`
}

func (r UpsertReviewRequest) input() domain.ReviewInput {
	return domain.ReviewInput{
		MovieID: r.MovieID,
		Rating:  r.Rating,
		Title:   r.Title,
		Comment: r.Comment,
	}
}
