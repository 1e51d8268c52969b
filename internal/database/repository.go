package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cinelog/models"
)

// ReviewRepository stores reviews and watch records scoped to a user id.
// Temporary client-side ids are replaced with server ids on insert.
type ReviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a repository over an open connection.
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// InsertReview writes a review and returns it with the authoritative id
// and timestamps.
func (r *ReviewRepository) InsertReview(ctx context.Context, review models.Review) (models.Review, error) {
	saved := review
	saved.ID = uuid.NewString()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}

	tags, err := json.Marshal(saved.Tags)
	if err != nil {
		return models.Review{}, fmt.Errorf("encode tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO reviews (id, user_id, movie_id, movie_title, poster_url, rating, content, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, saved.UserID, saved.MovieID, saved.MovieTitle, saved.PosterURL,
		saved.Rating, saved.Content, string(tags), saved.CreatedAt)
	if err != nil {
		return models.Review{}, fmt.Errorf("insert review: %w", err)
	}
	return saved, nil
}

// UpdateReview rewrites rating, content and tags for a review owned by
// the record's user.
func (r *ReviewRepository) UpdateReview(ctx context.Context, review models.Review) (models.Review, error) {
	tags, err := json.Marshal(review.Tags)
	if err != nil {
		return models.Review{}, fmt.Errorf("encode tags: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET rating = ?, content = ?, tags = ? WHERE id = ? AND user_id = ?`,
		review.Rating, review.Content, string(tags), review.ID, review.UserID)
	if err != nil {
		return models.Review{}, fmt.Errorf("update review: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.Review{}, fmt.Errorf("update review: %w", err)
	}
	if affected == 0 {
		return models.Review{}, sql.ErrNoRows
	}
	return review, nil
}

// DeleteReview removes a review owned by the user.
func (r *ReviewRepository) DeleteReview(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListReviews returns the user's reviews, newest first.
func (r *ReviewRepository) ListReviews(ctx context.Context, userID string) ([]models.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, movie_id, movie_title, poster_url, rating, content, tags, created_at
		 FROM reviews WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var review models.Review
		var tags string
		if err := rows.Scan(&review.ID, &review.UserID, &review.MovieID, &review.MovieTitle,
			&review.PosterURL, &review.Rating, &review.Content, &tags, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		if strings.TrimSpace(tags) != "" {
			if err := json.Unmarshal([]byte(tags), &review.Tags); err != nil {
				return nil, fmt.Errorf("decode tags: %w", err)
			}
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// InsertWatchRecord writes a watch record and returns it with the
// authoritative id.
func (r *ReviewRepository) InsertWatchRecord(ctx context.Context, record models.WatchRecord) (models.WatchRecord, error) {
	saved := record
	saved.ID = uuid.NewString()
	if saved.WatchedAt.IsZero() {
		saved.WatchedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO watch_records (id, user_id, movie_id, title, poster_url, watched_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		saved.ID, saved.UserID, saved.MovieID, saved.Title, saved.PosterURL, saved.WatchedAt)
	if err != nil {
		return models.WatchRecord{}, fmt.Errorf("insert watch record: %w", err)
	}
	return saved, nil
}

// DeleteWatchRecord removes a watch record owned by the user.
func (r *ReviewRepository) DeleteWatchRecord(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM watch_records WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete watch record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete watch record: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListWatchRecords returns the user's watch records, newest first.
func (r *ReviewRepository) ListWatchRecords(ctx context.Context, userID string) ([]models.WatchRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, movie_id, title, poster_url, watched_at
		 FROM watch_records WHERE user_id = ? ORDER BY watched_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list watch records: %w", err)
	}
	defer rows.Close()

	var records []models.WatchRecord
	for rows.Next() {
		var record models.WatchRecord
		if err := rows.Scan(&record.ID, &record.UserID, &record.MovieID, &record.Title,
			&record.PosterURL, &record.WatchedAt); err != nil {
			return nil, fmt.Errorf("scan watch record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
