package reviews

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"cinelog/models"
)

// tmpPrefix marks locally generated identifiers awaiting remote
// confirmation.
const tmpPrefix = "tmp-"

var (
	// ErrUnconfirmed rejects operations addressed by a still-temporary id.
	ErrUnconfirmed = errors.New("reviews: entry not yet confirmed by the remote store")
	// ErrNotFound indicates an id absent from the local store.
	ErrNotFound = errors.New("reviews: entry not found")
)

// RemoteStore is the authenticated structured-storage collaborator. All
// operations are scoped to the record's user; the backend enforces
// ownership.
type RemoteStore interface {
	InsertReview(ctx context.Context, review models.Review) (models.Review, error)
	UpdateReview(ctx context.Context, review models.Review) (models.Review, error)
	DeleteReview(ctx context.Context, userID, id string) error
	ListReviews(ctx context.Context, userID string) ([]models.Review, error)
	InsertWatchRecord(ctx context.Context, record models.WatchRecord) (models.WatchRecord, error)
	DeleteWatchRecord(ctx context.Context, userID, id string) error
	ListWatchRecords(ctx context.Context, userID string) ([]models.WatchRecord, error)
}

// Bridge is the only write path for reviews and watch records. Every
// submitted review also emits a companion watch record stamped with the
// review's capture time.
type Bridge struct {
	store  *Store
	remote RemoteStore
	now    func() time.Time
}

// NewBridge creates the persistence bridge.
func NewBridge(store *Store, remote RemoteStore) *Bridge {
	return &Bridge{store: store, remote: remote, now: time.Now}
}

// Store exposes the local state container for read access.
func (b *Bridge) Store() *Store {
	return b.store
}

// Submit persists a review draft. The review and its watch record are
// applied to local state immediately under temporary ids. Guests (empty
// userID) stop there. For authenticated users the review write is
// confirmed remotely with rollback on failure; the watch record runs its
// own independent best-effort cycle.
func (b *Bridge) Submit(ctx context.Context, userID string, draft models.ReviewDraft) (*models.Review, error) {
	if draft.Rating < 1 || draft.Rating > 5 {
		return nil, fmt.Errorf("reviews: rating %d out of range", draft.Rating)
	}

	capturedAt := b.now()
	review := models.Review{
		ID:         tmpPrefix + uuid.NewString(),
		UserID:     userID,
		MovieID:    draft.MovieID,
		MovieTitle: draft.MovieTitle,
		PosterURL:  draft.PosterURL,
		Rating:     draft.Rating,
		Content:    draft.Content,
		Tags:       draft.Tags,
		CreatedAt:  capturedAt,
	}
	record := models.WatchRecord{
		ID:        tmpPrefix + uuid.NewString(),
		UserID:    userID,
		MovieID:   draft.MovieID,
		Title:     draft.MovieTitle,
		PosterURL: draft.PosterURL,
		WatchedAt: capturedAt,
	}

	if userID == "" {
		// Guest mode: the optimistic local state is the final state.
		b.store.insertReview(review)
		b.store.insertWatch(record)
		log.Printf("[reviews] guest review captured movie=%d", draft.MovieID)
		return &review, nil
	}

	tmpID := review.ID
	confirmed, err := optimisticWrite(ctx,
		func() { b.store.insertReview(review) },
		func(ctx context.Context) (models.Review, error) { return b.remote.InsertReview(ctx, review) },
		func(saved models.Review) { b.store.replaceReview(tmpID, saved) },
		func() { b.store.removeReview(tmpID) },
	)
	if err != nil {
		return nil, fmt.Errorf("persist review: %w", err)
	}

	b.submitWatchRecord(ctx, record)

	log.Printf("[reviews] review persisted id=%s movie=%d", confirmed.ID, confirmed.MovieID)
	return &confirmed, nil
}

// submitWatchRecord runs the companion write. It is best-effort and
// independent: a failure rolls back only the record itself.
func (b *Bridge) submitWatchRecord(ctx context.Context, record models.WatchRecord) {
	tmpID := record.ID
	_, err := optimisticWrite(ctx,
		func() { b.store.insertWatch(record) },
		func(ctx context.Context) (models.WatchRecord, error) { return b.remote.InsertWatchRecord(ctx, record) },
		func(saved models.WatchRecord) { b.store.replaceWatch(tmpID, saved) },
		func() { b.store.removeWatch(tmpID) },
	)
	if err != nil {
		log.Printf("[reviews] watch record write failed (review kept): %v", err)
	}
}

// Update rewrites a confirmed review's rating, content and tags.
func (b *Bridge) Update(ctx context.Context, userID, id string, rating int, content string, tags []string) (*models.Review, error) {
	if strings.HasPrefix(id, tmpPrefix) {
		return nil, ErrUnconfirmed
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("reviews: rating %d out of range", rating)
	}

	previous, ok := b.store.findReview(id)
	if !ok {
		return nil, ErrNotFound
	}

	updated := previous
	updated.Rating = rating
	updated.Content = content
	updated.Tags = tags

	if userID == "" {
		b.store.replaceReview(id, updated)
		return &updated, nil
	}

	confirmed, err := optimisticWrite(ctx,
		func() { b.store.replaceReview(id, updated) },
		func(ctx context.Context) (models.Review, error) { return b.remote.UpdateReview(ctx, updated) },
		func(saved models.Review) { b.store.replaceReview(id, saved) },
		func() { b.store.replaceReview(id, previous) },
	)
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return &confirmed, nil
}

// Delete removes a confirmed review.
func (b *Bridge) Delete(ctx context.Context, userID, id string) error {
	if strings.HasPrefix(id, tmpPrefix) {
		return ErrUnconfirmed
	}

	previous, ok := b.store.findReview(id)
	if !ok {
		return ErrNotFound
	}

	if userID == "" {
		b.store.removeReview(id)
		return nil
	}

	_, err := optimisticWrite(ctx,
		func() { b.store.removeReview(id) },
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, b.remote.DeleteReview(ctx, userID, id)
		},
		func(struct{}) {},
		func() { b.store.insertReview(previous) },
	)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

// Refresh replaces local state with the remote state for the user.
func (b *Bridge) Refresh(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	reviews, err := b.remote.ListReviews(ctx, userID)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}
	watched, err := b.remote.ListWatchRecords(ctx, userID)
	if err != nil {
		return fmt.Errorf("list watch records: %w", err)
	}
	b.store.Reset(reviews, watched)
	return nil
}
