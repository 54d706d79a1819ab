package domain

import "context"

// Favorite records that a user saved a movie. The display fields are a
// snapshot taken when the favorite was added and are never refreshed from the
// catalog afterwards.
type Favorite struct {
	BaseModel
	UserID      string  `gorm:"size:36;not null;uniqueIndex:idx_favorites_user_movie,priority:1" json:"userId"`
	MovieID     string  `gorm:"size:32;not null;uniqueIndex:idx_favorites_user_movie,priority:2" json:"movieId"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Poster      string  `gorm:"size:512" json:"poster"`
	Overview    string  `gorm:"type:text" json:"overview"`
	Rating      float64 `json:"rating"`
	ReleaseDate string  `gorm:"size:32" json:"releaseDate"`
}

// MovieSnapshot is the display data captured together with a favorite.
type MovieSnapshot struct {
	MovieID     string
	Title       string
	Poster      string
	Overview    string
	Rating      float64
	ReleaseDate string
}

// FavoriteRepository defines the data access interface for favorites.
type FavoriteRepository interface {
	Create(ctx context.Context, fav *Favorite) error
	ListByUser(ctx context.Context, userID string) ([]Favorite, error)
	DeleteByUserAndMovie(ctx context.Context, userID, movieID string) error
}

// FavoriteService defines the business operations on a user's favorites.
type FavoriteService interface {
	Add(ctx context.Context, userID string, movie MovieSnapshot) (*Favorite, error)
	List(ctx context.Context, userID string) ([]Favorite, error)
	Remove(ctx context.Context, userID, movieID string) error
}
