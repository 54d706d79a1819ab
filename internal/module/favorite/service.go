package favorite

import (
	"context"
	"strings"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
	"github.com/okwareddevnest/movie-discovery-app/internal/event"
)

const maxMovieIDLen = 32

type favoriteService struct {
	repo   domain.FavoriteRepository
	events event.Publisher
}

// NewFavoriteService creates a FavoriteService. A nil publisher disables
// activity events.
func NewFavoriteService(repo domain.FavoriteRepository, events event.Publisher) domain.FavoriteService {
	if events == nil {
		events = event.Nop{}
	}
	return &favoriteService{repo: repo, events: events}
}

// Add saves movie for the user with the given display snapshot.
func (s *favoriteService) Add(ctx context.Context, userID string, movie domain.MovieSnapshot) (*domain.Favorite, error) {
	movieID, err := normalizeMovieID(movie.MovieID)
	if err != nil {
		return nil, err
	}
	if movie.Rating < 0 || movie.Rating > 10 {
		return nil, domain.NewAppError(domain.CodeValidation, "rating must be between 0 and 10", nil)
	}

	fav := &domain.Favorite{
		UserID:      userID,
		MovieID:     movieID,
		Title:       strings.TrimSpace(movie.Title),
		Poster:      strings.TrimSpace(movie.Poster),
		Overview:    strings.TrimSpace(movie.Overview),
		Rating:      movie.Rating,
		ReleaseDate: strings.TrimSpace(movie.ReleaseDate),
	}
	if err := s.repo.Create(ctx, fav); err != nil {
		return nil, err
	}

	event.Emit(ctx, s.events, event.Event{Type: event.FavoriteAdded, UserID: userID, MovieID: movieID})
	return fav, nil
}

// List returns the user's favorites, newest first.
func (s *favoriteService) List(ctx context.Context, userID string) ([]domain.Favorite, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Remove deletes the favorite for movieID. A missing favorite is NotFound,
// so a repeated remove fails.
func (s *favoriteService) Remove(ctx context.Context, userID, movieID string) error {
	movieID, err := normalizeMovieID(movieID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByUserAndMovie(ctx, userID, movieID); err != nil {
		return err
	}

	event.Emit(ctx, s.events, event.Event{Type: event.FavoriteRemoved, UserID: userID, MovieID: movieID})
	return nil
}

func normalizeMovieID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.NewAppError(domain.CodeValidation, "movieId is required", nil)
	}
	if len(id) > maxMovieIDLen {
		return "", domain.NewAppError(domain.CodeValidation, "movieId is too long", nil)
	}
	return id, nil
}
