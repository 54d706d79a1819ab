package movie

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okwareddevnest/movie-discovery-app/internal/config"
	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
	"github.com/okwareddevnest/movie-discovery-app/internal/pkg"
)

const defaultImageSize = "w500"

// Catalog is the read-only movie metadata source.
type Catalog interface {
	Trending(ctx context.Context, page int) (*MoviePage, error)
	Search(ctx context.Context, query string, page int) (*MoviePage, error)
	Details(ctx context.Context, id int) (*MovieDetails, error)
	Credits(ctx context.Context, id int) (*Credits, error)
	Videos(ctx context.Context, id int) ([]Video, error)
	Similar(ctx context.Context, id, page int) (*MoviePage, error)
}

// Client talks to the TMDB v3 REST API. Every request carries the API key,
// the configured language and include_adult=false.
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
	http         *http.Client
}

// NewClient builds a Client from validated configuration.
func NewClient(cfg *config.TMDBConfig) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		imageBaseURL: cfg.ImageBaseURL,
		apiKey:       cfg.APIKey,
		language:     cfg.Language,
		http:         &http.Client{Timeout: config.MustDuration(cfg.Timeout, 10*time.Second)},
	}
}

// ImageURL resolves an image path such as "/abc.jpg" at the given size.
// An empty path yields "" and an empty size means w500.
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = defaultImageSize
	}
	return c.imageBaseURL + "/" + size + path
}

// Trending returns this week's trending movies.
func (c *Client) Trending(ctx context.Context, page int) (*MoviePage, error) {
	var raw tmdbPage
	if err := c.get(ctx, "/trending/movie/week", pageParams(page), &raw); err != nil {
		return nil, err
	}
	return c.toPage(raw), nil
}

// Search finds movies by title.
func (c *Client) Search(ctx context.Context, query string, page int) (*MoviePage, error) {
	params := pageParams(page)
	params.Set("query", query)

	var raw tmdbPage
	if err := c.get(ctx, "/search/movie", params, &raw); err != nil {
		return nil, err
	}
	return c.toPage(raw), nil
}

// Details returns the movie with videos, credits and similar titles.
func (c *Client) Details(ctx context.Context, id int) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "videos,credits,similar")

	var raw tmdbDetails
	if err := c.get(ctx, moviePath(id, ""), params, &raw); err != nil {
		return nil, err
	}

	similar := c.toPage(raw.Similar)
	return &MovieDetails{
		Movie:   c.toMovie(raw.tmdbMovie),
		Tagline: raw.Tagline,
		Runtime: raw.Runtime,
		Status:  raw.Status,
		Genres:  nonNil(raw.Genres),
		Videos:  nonNil(raw.Videos.Results),
		Credits: c.toCredits(raw.Credits),
		Similar: similar.Results,
	}, nil
}

func (c *Client) Credits(ctx context.Context, id int) (*Credits, error) {
	var raw tmdbCredits
	if err := c.get(ctx, moviePath(id, "/credits"), nil, &raw); err != nil {
		return nil, err
	}
	credits := c.toCredits(raw)
	return &credits, nil
}

func (c *Client) Videos(ctx context.Context, id int) ([]Video, error) {
	var raw tmdbVideos
	if err := c.get(ctx, moviePath(id, "/videos"), nil, &raw); err != nil {
		return nil, err
	}
	return nonNil(raw.Results), nil
}

func (c *Client) Similar(ctx context.Context, id, page int) (*MoviePage, error) {
	var raw tmdbPage
	if err := c.get(ctx, moviePath(id, "/similar"), pageParams(page), &raw); err != nil {
		return nil, err
	}
	return c.toPage(raw), nil
}

// get performs a GET against path and decodes the JSON body into dest.
// 404 becomes NotFound; transport failures and other non-2xx answers become
// Upstream.
func (c *Client) get(ctx context.Context, path string, params url.Values, dest any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	params.Set("include_adult", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return domain.NewAppError(domain.CodeInternal, "build catalog request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewAppError(domain.CodeUpstream, "movie catalog unavailable", fmt.Errorf("tmdb request %s: %w", path, scrubKey(err, c.apiKey)))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.NewAppError(domain.CodeNotFound, "movie not found", nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return domain.NewAppError(domain.CodeUpstream, "movie catalog error", fmt.Errorf("tmdb: HTTP %d for %s", resp.StatusCode, path))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return domain.NewAppError(domain.CodeUpstream, "invalid movie catalog response", fmt.Errorf("tmdb decode %s: %w", path, err))
	}
	return nil
}

func (c *Client) toMovie(m tmdbMovie) Movie {
	return Movie{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		PosterPath:  m.PosterPath,
		PosterURL:   c.ImageURL(m.PosterPath, ""),
		BackdropURL: c.ImageURL(m.BackdropPath, "original"),
		ReleaseDate: m.ReleaseDate,
		Rating:      m.VoteAverage,
		VoteCount:   m.VoteCount,
		GenreIDs:    m.GenreIDs,
	}
}

func (c *Client) toPage(p tmdbPage) *MoviePage {
	out := &MoviePage{
		Page:         p.Page,
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
		Results:      make([]Movie, 0, len(p.Results)),
	}
	for _, m := range p.Results {
		out.Results = append(out.Results, c.toMovie(m))
	}
	return out
}

func (c *Client) toCredits(raw tmdbCredits) Credits {
	out := Credits{
		Cast: make([]CastMember, 0, len(raw.Cast)),
		Crew: make([]CrewMember, 0, len(raw.Crew)),
	}
	for _, m := range raw.Cast {
		out.Cast = append(out.Cast, CastMember{
			ID:         m.ID,
			Name:       m.Name,
			Character:  m.Character,
			ProfileURL: c.ImageURL(m.ProfilePath, "w185"),
			Order:      m.Order,
		})
	}
	for _, m := range raw.Crew {
		out.Crew = append(out.Crew, CrewMember{
			ID:         m.ID,
			Name:       m.Name,
			Job:        m.Job,
			Department: m.Department,
			ProfileURL: c.ImageURL(m.ProfilePath, "w185"),
		})
	}
	return out
}

func pageParams(page int) url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(pkg.ClampPage(strconv.Itoa(page))))
	return params
}

func moviePath(id int, suffix string) string {
	return "/movie/" + strconv.Itoa(id) + suffix
}

// scrubKey removes the API key from transport errors, which quote the URL.
func scrubKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, "REDACTED"))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
