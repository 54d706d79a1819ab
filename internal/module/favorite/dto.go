package favorite

import "github.com/okwareddevnest/movie-discovery-app/internal/domain"

// AddFavoriteRequest is the body of POST /api/favorites. Only movieId is
// required; the rest is the display snapshot stored with the favorite.
type AddFavoriteRequest struct {
	MovieID     string  `json:"movieId" binding:"required,max=32"`
	Title       string  `json:"title" binding:"max=255"`
	Poster      string  `json:"poster" binding:"max=512"`
	Overview    string  `json:"overview"`
	Rating      float64 `json:"rating" binding:"gte=0,lte=10"`
	ReleaseDate string  `json:"releaseDate" binding:"max=32"`
}

func (r AddFavoriteRequest) snapshot() domain.MovieSnapshot {
	return domain.MovieSnapshot{
		MovieID:     r.MovieID,
		Title:       r.Title,
		Poster:      r.Poster,
		Overview:    r.Overview,
		Rating:      r.Rating,
		ReleaseDate: r.ReleaseDate,
	}
}
