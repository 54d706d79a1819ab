package movie

// Display types returned by the catalog endpoints. Image paths are resolved
// to absolute URLs; a missing image is an empty string.

// Movie is a catalog entry as shown in grids and sliders.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"posterPath"`
	PosterURL   string  `json:"posterUrl"`
	BackdropURL string  `json:"backdropUrl"`
	ReleaseDate string  `json:"releaseDate"`
	Rating      float64 `json:"rating"`
	VoteCount   int     `json:"voteCount"`
	GenreIDs    []int   `json:"genreIds,omitempty"`
}

// MoviePage is one page of a paged listing.
type MoviePage struct {
	Page         int     `json:"page"`
	TotalPages   int     `json:"totalPages"`
	TotalResults int     `json:"totalResults"`
	Results      []Movie `json:"results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CastMember struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Character  string `json:"character"`
	ProfileURL string `json:"profileUrl"`
	Order      int    `json:"order"`
}

type CrewMember struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
	ProfileURL string `json:"profileUrl"`
}

// Credits lists the cast in billing order and the crew.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Video is a trailer, teaser or clip hosted on an external site.
type Video struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// MovieDetails is the full detail page, with videos, credits and similar
// titles fetched in the same upstream call.
type MovieDetails struct {
	Movie
	Tagline string  `json:"tagline"`
	Runtime int     `json:"runtime"`
	Status  string  `json:"status"`
	Genres  []Genre `json:"genres"`
	Videos  []Video `json:"videos"`
	Credits Credits `json:"credits"`
	Similar []Movie `json:"similar"`
}

// Upstream wire types.

type tmdbMovie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	GenreIDs     []int   `json:"genre_ids"`
}

type tmdbPage struct {
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
	Results      []tmdbMovie `json:"results"`
}

type tmdbCast struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

type tmdbCrew struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
}

type tmdbCredits struct {
	Cast []tmdbCast `json:"cast"`
	Crew []tmdbCrew `json:"crew"`
}

type tmdbVideos struct {
	Results []Video `json:"results"`
}

type tmdbDetails struct {
	tmdbMovie
	Tagline string      `json:"tagline"`
	Runtime int         `json:"runtime"`
	Status  string      `json:"status"`
	Genres  []Genre     `json:"genres"`
	Videos  tmdbVideos  `json:"videos"`
	Credits tmdbCredits `json:"credits"`
	Similar tmdbPage    `json:"similar"`
}
