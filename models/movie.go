package models

// MovieSummary is the flattened listing entry returned by the metadata service.
type MovieSummary struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterURL   string  `json:"posterUrl,omitempty"`
	Overview    string  `json:"overview,omitempty"`
	ReleaseDate string  `json:"releaseDate,omitempty"`
	VoteAverage float64 `json:"voteAverage"`
}

// MovieDetail carries the full metadata record for a single movie.
type MovieDetail struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"originalTitle,omitempty"`
	PosterURL     string   `json:"posterUrl,omitempty"`
	Overview      string   `json:"overview,omitempty"`
	ReleaseDate   string   `json:"releaseDate,omitempty"`
	VoteAverage   float64  `json:"voteAverage"`
	Genres        []string `json:"genres,omitempty"`
	Directors     []string `json:"directors,omitempty"`
	Cast          []string `json:"cast,omitempty"`
}

// SelectedMovie is the subset of movie facts captured when a review session
// starts. It is owned by the active session and cleared with it.
type SelectedMovie struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"originalTitle,omitempty"`
	PosterURL     string   `json:"posterUrl,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Directors     []string `json:"directors,omitempty"`
	Cast          []string `json:"cast,omitempty"`
	Overview      string   `json:"overview,omitempty"`
	ReleaseDate   string   `json:"releaseDate,omitempty"`
	VoteAverage   float64  `json:"voteAverage"`
}

// SelectedMovieFromDetail flattens a metadata record into session context.
func SelectedMovieFromDetail(d MovieDetail) SelectedMovie {
	return SelectedMovie{
		ID:            d.ID,
		Title:         d.Title,
		OriginalTitle: d.OriginalTitle,
		PosterURL:     d.PosterURL,
		Genres:        d.Genres,
		Directors:     d.Directors,
		Cast:          d.Cast,
		Overview:      d.Overview,
		ReleaseDate:   d.ReleaseDate,
		VoteAverage:   d.VoteAverage,
	}
}
