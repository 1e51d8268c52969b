package reviews

import (
	"sync"

	"cinelog/models"
)

// Store is the single-owner in-memory aggregate of the user's reviews and
// watch records, with subscriber notification. It is instantiated once
// per process and injected into consumers; only the bridge mutates it.
type Store struct {
	mu      sync.RWMutex
	reviews []models.Review
	watched []models.WatchRecord

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func()
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{subs: make(map[int]func())}
}

// Reviews returns a snapshot of the review list.
func (s *Store) Reviews() []models.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Review, len(s.reviews))
	copy(out, s.reviews)
	return out
}

// Watched returns a snapshot of the watch records.
func (s *Store) Watched() []models.WatchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.WatchRecord, len(s.watched))
	copy(out, s.watched)
	return out
}

// Subscribe registers a change callback and returns its unsubscribe
// function. Callbacks run synchronously after each mutation.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Reset replaces the store contents, e.g. after loading the remote state
// at sign-in.
func (s *Store) Reset(reviews []models.Review, watched []models.WatchRecord) {
	s.mu.Lock()
	s.reviews = append([]models.Review(nil), reviews...)
	s.watched = append([]models.WatchRecord(nil), watched...)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) insertReview(r models.Review) {
	s.mu.Lock()
	s.reviews = append([]models.Review{r}, s.reviews...)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) replaceReview(id string, r models.Review) {
	s.mu.Lock()
	for i := range s.reviews {
		if s.reviews[i].ID == id {
			s.reviews[i] = r
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Store) removeReview(id string) (models.Review, bool) {
	s.mu.Lock()
	var removed models.Review
	found := false
	for i := range s.reviews {
		if s.reviews[i].ID == id {
			removed = s.reviews[i]
			s.reviews = append(s.reviews[:i], s.reviews[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if found {
		s.notify()
	}
	return removed, found
}

func (s *Store) findReview(id string) (models.Review, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reviews {
		if r.ID == id {
			return r, true
		}
	}
	return models.Review{}, false
}

func (s *Store) insertWatch(w models.WatchRecord) {
	s.mu.Lock()
	s.watched = append([]models.WatchRecord{w}, s.watched...)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) replaceWatch(id string, w models.WatchRecord) {
	s.mu.Lock()
	for i := range s.watched {
		if s.watched[i].ID == id {
			s.watched[i] = w
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Store) removeWatch(id string) (models.WatchRecord, bool) {
	s.mu.Lock()
	var removed models.WatchRecord
	found := false
	for i := range s.watched {
		if s.watched[i].ID == id {
			removed = s.watched[i]
			s.watched = append(s.watched[:i], s.watched[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if found {
		s.notify()
	}
	return removed, found
}
