package review

import (
	"context"
	"fmt"

	"cinelog/models"
)

// DefaultQuickRating pre-fills the quick capture form so a review can be
// submitted with zero extra interaction. The caller may override it.
const DefaultQuickRating = 3

// QuickCapture is the non-conversational capture path: explicit rating,
// optional tags and free text, no transcript and no summarization.
type QuickCapture struct {
	MovieID    int      `json:"movieId"`
	MovieTitle string   `json:"movieTitle,omitempty"`
	PosterURL  string   `json:"posterUrl,omitempty"`
	Rating     int      `json:"rating"`
	Tags       []string `json:"tags,omitempty"`
	Content    string   `json:"content,omitempty"`
}

// Quick submits direct captures straight to the persistence bridge.
type Quick struct {
	bridge submitter
}

// NewQuick creates the quick-capture service.
func NewQuick(bridge submitter) *Quick {
	return &Quick{bridge: bridge}
}

// Submit validates the capture and persists it. A zero rating takes the
// default; out-of-range ratings and unknown tags are rejected.
func (q *Quick) Submit(ctx context.Context, userID string, capture QuickCapture) (*models.Review, error) {
	rating := capture.Rating
	if rating == 0 {
		rating = DefaultQuickRating
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if capture.MovieID == 0 {
		return nil, fmt.Errorf("review: quick capture requires a movie id")
	}
	for _, tag := range capture.Tags {
		if !models.IsEmotionTag(tag) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
		}
	}

	draft := models.ReviewDraft{
		MovieID:    capture.MovieID,
		MovieTitle: capture.MovieTitle,
		PosterURL:  capture.PosterURL,
		Rating:     rating,
		Content:    capture.Content,
		Tags:       capture.Tags,
	}
	return q.bridge.Submit(ctx, userID, draft)
}
