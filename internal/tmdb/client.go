package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ListItem is one entry of a paginated listing response. Only the id is
// consumed; everything else is refetched through MovieDetails.
type ListItem struct {
	ID int64 `json:"id"`
}

// ListResponse models a paginated TMDB listing.
type ListResponse struct {
	Page         int        `json:"page"`
	Results      []ListItem `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// Genre is a TMDB genre reference.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Video is one entry of a movie's video list.
type Video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// Detail is the per-movie detail payload, with videos appended.
type Detail struct {
	ID               int64   `json:"id"`
	IMDBID           string  `json:"imdb_id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	Genres           []Genre `json:"genres"`
	Runtime          int     `json:"runtime"`
	ReleaseDate      string  `json:"release_date"`
	Status           string  `json:"status"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	Budget           int64   `json:"budget"`
	Revenue          int64   `json:"revenue"`
	OriginalLanguage string  `json:"original_language"`
	BackdropPath     string  `json:"backdrop_path"`
	Videos           struct {
		Results []Video `json:"results"`
	} `json:"videos"`
}

// Image is one entry of a movie's image collections.
type Image struct {
	FilePath string `json:"file_path"`
	ISO639   string `json:"iso_639_1"`
}

// Images holds the backdrop and logo collections for a movie.
type Images struct {
	Backdrops []Image `json:"backdrops"`
	Logos     []Image `json:"logos"`
}

// CountryRelease groups release certifications by country.
type CountryRelease struct {
	ISO3166      string `json:"iso_3166_1"`
	ReleaseDates []struct {
		Certification string `json:"certification"`
	} `json:"release_dates"`
}

// ReleaseDates models the release-certification payload.
type ReleaseDates struct {
	Results []CountryRelease `json:"results"`
}

// API defines the TMDB operations the pipeline driver consumes.
type API interface {
	ListMovies(ctx context.Context, list string, page int) (*ListResponse, error)
	MovieDetails(ctx context.Context, movieID int64) (*Detail, error)
	MovieImages(ctx context.Context, movieID int64) (*Images, error)
	MovieReleaseDates(ctx context.Context, movieID int64) (*ReleaseDates, error)
	GenreIndex(ctx context.Context) (map[int64]string, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	region     string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language, region string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		region:     strings.TrimSpace(region),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// listPaths maps listing names to their endpoint paths. Trending lives under
// /trending rather than /movie.
var listPaths = map[string]string{
	"popular":     "/movie/popular",
	"trending":    "/trending/movie/week",
	"top_rated":   "/movie/top_rated",
	"now_playing": "/movie/now_playing",
	"upcoming":    "/movie/upcoming",
}

// ListMovies fetches one page of the named listing.
func (c *Client) ListMovies(ctx context.Context, list string, page int) (*ListResponse, error) {
	path, ok := listPaths[strings.TrimSpace(list)]
	if !ok {
		return nil, fmt.Errorf("unknown listing %q", list)
	}
	if page <= 0 {
		return nil, errors.New("page must be positive")
	}
	params := url.Values{}
	if c.region != "" {
		params.Set("region", c.region)
	}
	params.Set("page", strconv.Itoa(page))

	var payload ListResponse
	if err := c.get(ctx, path, params, true, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieDetails fetches movie details by TMDB ID with the video list appended.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*Detail, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	params := url.Values{}
	params.Set("append_to_response", "videos")

	var payload Detail
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), params, true, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieImages fetches the image collections for a movie. No language filter is
// applied so the full backdrop set is available for English-tag selection.
func (c *Client) MovieImages(ctx context.Context, movieID int64) (*Images, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	var payload Images
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/images", movieID), nil, false, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieReleaseDates fetches per-country release certifications for a movie.
func (c *Client) MovieReleaseDates(ctx context.Context, movieID int64) (*ReleaseDates, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	var payload ReleaseDates
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/release_dates", movieID), nil, false, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GenreIndex fetches the global genre id-to-name table.
func (c *Client) GenreIndex(ctx context.Context) (map[int64]string, error) {
	var payload struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/movie/list", nil, true, &payload); err != nil {
		return nil, err
	}
	index := make(map[int64]string, len(payload.Genres))
	for _, genre := range payload.Genres {
		index[genre.ID] = genre.Name
	}
	return index, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, withLanguage bool, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if withLanguage && c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}
