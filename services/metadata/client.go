package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"cinelog/models"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// Filter describes a discover query against the metadata service. Zero
// values mean "not constrained".
type Filter struct {
	GenreIDs        []int
	ExcludeGenreIDs []int
	Country         string // ISO 3166-1 origin country
	YearFrom        int
	YearTo          int
	PersonID        int
	MinVoteAverage  float64
	MinVoteCount    int
}

// Client queries a TMDb-compatible metadata API for movie summaries and
// detail records.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	region     string
	httpClient *http.Client

	// Detail records change rarely; cache them to avoid repeated calls.
	cacheMu  sync.RWMutex
	cache    map[int]*detailCacheEntry
	cacheTTL time.Duration
}

type detailCacheEntry struct {
	detail    models.MovieDetail
	fetchedAt time.Time
}

// NewClient creates a metadata client. An empty baseURL selects the public
// API endpoint.
func NewClient(apiKey, baseURL, language, region string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		region:     region,
		httpClient: &http.Client{Timeout: timeout},
		cache:      make(map[int]*detailCacheEntry),
		cacheTTL:   24 * time.Hour,
	}
}

type discoverResponse struct {
	Results []struct {
		ID          int     `json:"id"`
		Title       string  `json:"title"`
		PosterPath  string  `json:"poster_path"`
		Overview    string  `json:"overview"`
		ReleaseDate string  `json:"release_date"`
		VoteAverage float64 `json:"vote_average"`
	} `json:"results"`
}

type detailResponse struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	PosterPath    string  `json:"poster_path"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	Genres        []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	Credits struct {
		Cast []struct {
			Name  string `json:"name"`
			Order int    `json:"order"`
		} `json:"cast"`
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	} `json:"credits"`
}

// Discover returns movie summaries matching the filter, in the service's
// own relevance order.
func (c *Client) Discover(ctx context.Context, filter Filter) ([]models.MovieSummary, error) {
	params := c.baseParams()
	params.Set("sort_by", "popularity.desc")
	params.Set("include_adult", "false")

	if len(filter.GenreIDs) > 0 {
		params.Set("with_genres", joinIDs(filter.GenreIDs, ","))
	}
	if len(filter.ExcludeGenreIDs) > 0 {
		params.Set("without_genres", joinIDs(filter.ExcludeGenreIDs, ","))
	}
	if filter.Country != "" {
		params.Set("with_origin_country", filter.Country)
	}
	if filter.YearFrom > 0 {
		params.Set("primary_release_date.gte", fmt.Sprintf("%04d-01-01", filter.YearFrom))
	}
	if filter.YearTo > 0 {
		params.Set("primary_release_date.lte", fmt.Sprintf("%04d-12-31", filter.YearTo))
	}
	if filter.PersonID > 0 {
		params.Set("with_crew", strconv.Itoa(filter.PersonID))
	}
	if filter.MinVoteAverage > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(filter.MinVoteAverage, 'f', 1, 64))
	}
	if filter.MinVoteCount > 0 {
		params.Set("vote_count.gte", strconv.Itoa(filter.MinVoteCount))
	}

	var result discoverResponse
	if err := c.get(ctx, "/discover/movie", params, &result); err != nil {
		return nil, err
	}

	summaries := make([]models.MovieSummary, 0, len(result.Results))
	for _, r := range result.Results {
		summaries = append(summaries, models.MovieSummary{
			ID:          r.ID,
			Title:       r.Title,
			PosterURL:   ImageURL(r.PosterPath, "w342"),
			Overview:    r.Overview,
			ReleaseDate: r.ReleaseDate,
			VoteAverage: r.VoteAverage,
		})
	}
	return summaries, nil
}

// Search returns movie summaries matching a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]models.MovieSummary, error) {
	params := c.baseParams()
	params.Set("query", query)
	params.Set("include_adult", "false")

	var result discoverResponse
	if err := c.get(ctx, "/search/movie", params, &result); err != nil {
		return nil, err
	}

	summaries := make([]models.MovieSummary, 0, len(result.Results))
	for _, r := range result.Results {
		summaries = append(summaries, models.MovieSummary{
			ID:          r.ID,
			Title:       r.Title,
			PosterURL:   ImageURL(r.PosterPath, "w342"),
			Overview:    r.Overview,
			ReleaseDate: r.ReleaseDate,
			VoteAverage: r.VoteAverage,
		})
	}
	return summaries, nil
}

// Movie returns the full metadata record for one movie, including genre
// names, directors and cast.
func (c *Client) Movie(ctx context.Context, id int) (*models.MovieDetail, error) {
	c.cacheMu.RLock()
	if entry, ok := c.cache[id]; ok && time.Since(entry.fetchedAt) < c.cacheTTL {
		c.cacheMu.RUnlock()
		detail := entry.detail
		return &detail, nil
	}
	c.cacheMu.RUnlock()

	params := c.baseParams()
	params.Set("append_to_response", "credits")

	var result detailResponse
	if err := c.get(ctx, "/movie/"+strconv.Itoa(id), params, &result); err != nil {
		return nil, err
	}

	detail := models.MovieDetail{
		ID:            result.ID,
		Title:         result.Title,
		OriginalTitle: result.OriginalTitle,
		PosterURL:     ImageURL(result.PosterPath, "w342"),
		Overview:      result.Overview,
		ReleaseDate:   result.ReleaseDate,
		VoteAverage:   result.VoteAverage,
	}
	for _, g := range result.Genres {
		detail.Genres = append(detail.Genres, g.Name)
	}
	for _, crew := range result.Credits.Crew {
		if crew.Job == "Director" {
			detail.Directors = append(detail.Directors, crew.Name)
		}
	}
	// Top-billed cast only; the full list runs to hundreds of entries.
	for _, cast := range result.Credits.Cast {
		if cast.Order < 8 {
			detail.Cast = append(detail.Cast, cast.Name)
		}
	}

	c.cacheMu.Lock()
	c.cache[id] = &detailCacheEntry{detail: detail, fetchedAt: time.Now()}
	c.cacheMu.Unlock()

	return &detail, nil
}

func (c *Client) baseParams() url.Values {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	if c.region != "" {
		params.Set("region", c.region)
	}
	return params
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("metadata api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("metadata api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ImageURL builds a CDN URL for a poster or backdrop path.
func ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("https://image.tmdb.org/t/p/%s%s", size, path)
}

func joinIDs(ids []int, sep string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, sep)
}
