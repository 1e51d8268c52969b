package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"cinelog/models"
	"cinelog/services/genai"
)

// State names the phases of a conversational review session.
type State string

const (
	StateIdle             State = "idle"
	StateContextSeeded    State = "context_seeded"
	StateExchanging       State = "exchanging"
	StateReadyToSummarize State = "ready_to_summarize"
	StateSummarized       State = "summarized"
	StateSubmitted        State = "submitted"
)

// readyTurnThreshold is the transcript length (two full exchanges) at
// which summarization becomes available. It gates an affordance only; the
// user may keep exchanging past it.
const readyTurnThreshold = 4

// summaryMaxRunes bounds the generated review seed text.
const summaryMaxRunes = 150

// fallbackReply is appended as the assistant turn when the collaborator
// fails, keeping the session recoverable.
const fallbackReply = "すみません、うまく返信できませんでした。もう一度送ってみてください。"

var (
	ErrNoActiveSession = errors.New("review: no active session")
	ErrBusy            = errors.New("review: previous message still in flight")
	ErrNotReady        = errors.New("review: transcript too short to summarize")
	ErrInvalidRating   = errors.New("review: rating must be between 1 and 5")
	ErrUnknownTag      = errors.New("review: tag not in emotion vocabulary")
)

type generator interface {
	Generate(ctx context.Context, messages []genai.Message) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

var _ generator = (*genai.Client)(nil)

type submitter interface {
	Submit(ctx context.Context, userID string, draft models.ReviewDraft) (*models.Review, error)
}

// Session drives one conversational review: context seeding, ordered
// multi-turn exchange, summarization, and submission. A session owns its
// transcript and selected movie exclusively.
type Session struct {
	gen    generator
	bridge submitter

	mu         sync.Mutex
	state      State
	movie      *models.SelectedMovie
	transcript []models.ChatTurn
	context    string
	summary    string
	inFlight   bool
	generation uint64
}

// NewSession creates an idle session over the given collaborators.
func NewSession(gen generator, bridge submitter) *Session {
	return &Session{gen: gen, bridge: bridge, state: StateIdle}
}

// Begin attaches a movie to the session and seeds the conversational
// context. Starting over an existing session abandons it first.
func (s *Session) Begin(movie models.SelectedMovie) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		s.resetLocked()
	}

	m := movie
	s.movie = &m
	s.context = buildContextBlock(movie)
	s.state = StateContextSeeded
	log.Printf("[review] session seeded movie=%d %q", movie.ID, movie.Title)
}

// Send appends the user's message, ships the full transcript to the
// collaborator, and appends the reply. Turns are strictly ordered: a
// second Send while one is in flight fails with ErrBusy. A collaborator
// failure appends a fallback assistant turn and keeps the session in
// Exchanging; the user's turn is never lost.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	switch s.state {
	case StateContextSeeded, StateExchanging, StateReadyToSummarize:
	default:
		s.mu.Unlock()
		return "", ErrNoActiveSession
	}
	if s.inFlight {
		s.mu.Unlock()
		return "", ErrBusy
	}

	s.transcript = append(s.transcript, models.ChatTurn{
		Role:      models.RoleUser,
		Text:      text,
		CreatedAt: time.Now(),
	})
	s.state = StateExchanging
	s.inFlight = true
	generation := s.generation
	messages := s.outboundLocked()
	s.mu.Unlock()

	reply, err := s.gen.Generate(ctx, messages)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	// The session was abandoned while the call was in flight; the reply
	// belongs to a transcript that no longer exists.
	if generation != s.generation {
		log.Printf("[review] discarding late reply for abandoned session")
		return "", nil
	}

	if err != nil {
		log.Printf("[review] collaborator error, using fallback reply: %v", err)
		reply = fallbackReply
	}

	s.transcript = append(s.transcript, models.ChatTurn{
		Role:      models.RoleAssistant,
		Text:      reply,
		CreatedAt: time.Now(),
	})
	return reply, nil
}

// outboundLocked maps the transcript to collaborator roles. The context
// block is folded into the first user message only; it is never repeated
// on later turns.
func (s *Session) outboundLocked() []genai.Message {
	messages := make([]genai.Message, 0, len(s.transcript))
	userSeen := false
	for _, turn := range s.transcript {
		role := genai.RoleModel
		text := turn.Text
		if turn.Role == models.RoleUser {
			role = genai.RoleUser
			if !userSeen {
				userSeen = true
				text = s.context + "\n\n" + text
			}
		}
		messages = append(messages, genai.Message{Role: role, Text: text})
	}
	return messages
}

// ReadyToSummarize reports whether the summarize affordance is available.
func (s *Session) ReadyToSummarize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateExchanging && s.state != StateReadyToSummarize {
		return false
	}
	return len(s.transcript) >= readyTurnThreshold
}

// Summarize condenses the transcript into a short impression text that
// seeds the editable review content. A collaborator failure degrades to
// an empty seed; it never blocks submission.
func (s *Session) Summarize(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.movie == nil {
		s.mu.Unlock()
		return "", ErrNoActiveSession
	}
	if len(s.transcript) < readyTurnThreshold {
		s.mu.Unlock()
		return "", ErrNotReady
	}
	generation := s.generation
	prompt := buildSummaryPrompt(*s.movie, s.transcript)
	s.mu.Unlock()

	summary, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		log.Printf("[review] summarization failed, falling back to empty seed: %v", err)
		summary = ""
	}
	summary = truncateRunes(summary, summaryMaxRunes)

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return "", nil
	}
	s.summary = summary
	s.state = StateSummarized
	return summary, nil
}

// Submit persists the review with the user's rating, tags and (possibly
// edited) text, then resets the session for the next movie. On
// persistence failure the session is left intact so the user can retry.
func (s *Session) Submit(ctx context.Context, userID string, rating int, tags []string, content string) (*models.Review, error) {
	s.mu.Lock()
	if s.movie == nil {
		s.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	if rating < 1 || rating > 5 {
		s.mu.Unlock()
		return nil, ErrInvalidRating
	}
	for _, tag := range tags {
		if !models.IsEmotionTag(tag) {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
		}
	}

	draft := models.ReviewDraft{
		MovieID:    s.movie.ID,
		MovieTitle: s.movie.Title,
		PosterURL:  s.movie.PosterURL,
		Rating:     rating,
		Content:    content,
		Tags:       tags,
	}
	s.mu.Unlock()

	saved, err := s.bridge.Submit(ctx, userID, draft)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state = StateSubmitted
	s.resetLocked()
	s.mu.Unlock()
	return saved, nil
}

// Abandon cancels the session from any non-terminal state, discarding the
// transcript and selected movie. Any in-flight collaborator reply is
// dropped when it arrives.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// resetLocked clears session state and bumps the generation counter so
// late replies are discarded. Caller holds s.mu.
func (s *Session) resetLocked() {
	s.generation++
	s.movie = nil
	s.transcript = nil
	s.context = ""
	s.summary = ""
	s.state = StateIdle
}

// State returns the current session state. ReadyToSummarize is derived:
// it is Exchanging with the turn threshold reached.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateExchanging && len(s.transcript) >= readyTurnThreshold {
		return StateReadyToSummarize
	}
	return s.state
}

// Movie returns a copy of the attached movie, or nil when idle.
func (s *Session) Movie() *models.SelectedMovie {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.movie == nil {
		return nil
	}
	m := *s.movie
	return &m
}

// Transcript returns a copy of the transcript in insertion order.
func (s *Session) Transcript() []models.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatTurn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Summary returns the last generated summary seed.
func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
