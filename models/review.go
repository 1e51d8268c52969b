package models

import (
	"strconv"
	"time"
)

// EmotionTags is the fixed vocabulary selectable on a review. The entries
// match the product's tag set and are the only values accepted by either
// capture path.
var EmotionTags = []string{
	"感動した",
	"泣いた",
	"笑った",
	"怖かった",
	"引き込まれた",
	"考えさせられた",
	"癒された",
	"切なかった",
	"ハラハラした",
	"スカッとした",
	"じんわりきた",
	"驚いた",
	"胸が熱くなった",
	"余韻がすごい",
	"映像が美しい",
	"音楽が良かった",
	"演技が光った",
	"また観たい",
	"人に勧めたい",
	"眠くなった",
}

// IsEmotionTag reports whether tag belongs to the fixed vocabulary.
func IsEmotionTag(tag string) bool {
	for _, t := range EmotionTags {
		if t == tag {
			return true
		}
	}
	return false
}

// ReviewDraft is a captured but not yet persisted review.
type ReviewDraft struct {
	MovieID    int      `json:"movieId"`
	MovieTitle string   `json:"movieTitle,omitempty"`
	PosterURL  string   `json:"posterUrl,omitempty"`
	Rating     int      `json:"rating"` // 1..5
	Content    string   `json:"content,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Review is a persisted review record owned by a user.
type Review struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	MovieID    int       `json:"movieId"`
	MovieTitle string    `json:"movieTitle,omitempty"`
	PosterURL  string    `json:"posterUrl,omitempty"`
	Rating     int       `json:"rating"`
	Content    string    `json:"content,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WatchRecord marks a movie as watched. Every persisted review is
// accompanied by one, sharing the review's capture time.
type WatchRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	MovieID   int       `json:"movieId"`
	Title     string    `json:"title,omitempty"`
	PosterURL string    `json:"posterUrl,omitempty"`
	WatchedAt time.Time `json:"watchedAt"`
}

// Key returns a stable identifier combining user and movie.
func (r Review) Key() string {
	return r.UserID + ":" + strconv.Itoa(r.MovieID)
}

// Key returns a stable identifier combining user and movie.
func (w WatchRecord) Key() string {
	return w.UserID + ":" + strconv.Itoa(w.MovieID)
}
