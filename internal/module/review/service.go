package review

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
	"github.com/okwareddevnest/movie-discovery-app/internal/event"
)

const (
	maxMovieIDLen = 32
	maxTitleLen   = 200
	maxCommentLen = 5000
)

type reviewService struct {
	repo   domain.ReviewRepository
	events event.Publisher
}

// NewReviewService creates a ReviewService. A nil publisher disables
// activity events.
func NewReviewService(repo domain.ReviewRepository, events event.Publisher) domain.ReviewService {
	if events == nil {
		events = event.Nop{}
	}
	return &reviewService{repo: repo, events: events}
}

// Upsert creates the caller's review of in.MovieID or overwrites it. Every
// field is required; nothing from a previous version is kept.
func (s *reviewService) Upsert(ctx context.Context, userID string, in domain.ReviewInput) (*domain.Review, bool, error) {
	in.MovieID = strings.TrimSpace(in.MovieID)
	in.Title = strings.TrimSpace(in.Title)
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validateInput(in); err != nil {
		return nil, false, err
	}

	review := &domain.Review{
		UserID:  userID,
		MovieID: in.MovieID,
		Rating:  in.Rating,
		Title:   in.Title,
		Comment: in.Comment,
	}
	created, err := s.repo.Upsert(ctx, review)
	if err != nil {
		return nil, false, err
	}

	// Reload through the join so the author name is attached.
	saved, err := s.repo.GetByID(ctx, review.ID)
	if err != nil {
		return nil, false, err
	}

	event.Emit(ctx, s.events, event.Event{
		Type:     event.ReviewUpserted,
		UserID:   userID,
		MovieID:  saved.MovieID,
		ReviewID: saved.ID,
		Rating:   saved.Rating,
	})
	return saved, created, nil
}

func (s *reviewService) ListByMovie(ctx context.Context, movieID string) ([]domain.Review, error) {
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "movieId is required", nil)
	}
	return s.repo.ListByMovie(ctx, movieID)
}

func (s *reviewService) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Delete removes a review on behalf of requesterID, who must be its author.
func (s *reviewService) Delete(ctx context.Context, reviewID, requesterID string) error {
	review, err := s.repo.GetByID(ctx, strings.TrimSpace(reviewID))
	if err != nil {
		return err
	}
	if review.UserID != requesterID {
		return domain.NewAppError(domain.CodeForbidden, "not allowed to delete this review", nil)
	}
	if err := s.repo.Delete(ctx, review.ID); err != nil {
		return err
	}

	event.Emit(ctx, s.events, event.Event{
		Type:     event.ReviewDeleted,
		UserID:   requesterID,
		MovieID:  review.MovieID,
		ReviewID: review.ID,
	})
	return nil
}

func validateInput(in domain.ReviewInput) error {
	switch {
	case in.MovieID == "":
		return domain.NewAppError(domain.CodeValidation, "movieId is required", nil)
	case len(in.MovieID) > maxMovieIDLen:
		return domain.NewAppError(domain.CodeValidation, "movieId is too long", nil)
	case in.Rating < domain.MinReviewRating || in.Rating > domain.MaxReviewRating:
		return domain.NewAppError(domain.CodeValidation, "rating must be between 1 and 10", nil)
	case in.Title == "":
		return domain.NewAppError(domain.CodeValidation, "title is required", nil)
	case utf8.RuneCountInString(in.Title) > maxTitleLen:
		return domain.NewAppError(domain.CodeValidation, "title must not exceed 200 characters", nil)
	case in.Comment == "":
		return domain.NewAppError(domain.CodeValidation, "comment is required", nil)
	case utf8.RuneCountInString(in.Comment) > maxCommentLen:
		return domain.NewAppError(domain.CodeValidation, "comment must not exceed 5000 characters", nil)
	}
	return nil
}
