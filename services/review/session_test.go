package review_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cinelog/models"
	"cinelog/services/genai"
	"cinelog/services/review"
)

type stubGenerator struct {
	requests [][]genai.Message
	prompts  []string
	reply    string
	summary  string
	failNext bool
	block    chan struct{} // when set, Generate waits on it
}

func (s *stubGenerator) Generate(ctx context.Context, messages []genai.Message) (string, error) {
	copied := make([]genai.Message, len(messages))
	copy(copied, messages)
	s.requests = append(s.requests, copied)
	if s.block != nil {
		<-s.block
	}
	if s.failNext {
		s.failNext = false
		return "", errors.New("collaborator down")
	}
	if s.reply == "" {
		return "なるほど、どう感じましたか？", nil
	}
	return s.reply, nil
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.failNext {
		s.failNext = false
		return "", errors.New("collaborator down")
	}
	return s.summary, nil
}

type stubSubmitter struct {
	submitted []models.ReviewDraft
	fail      bool
}

func (s *stubSubmitter) Submit(ctx context.Context, userID string, draft models.ReviewDraft) (*models.Review, error) {
	if s.fail {
		return nil, errors.New("remote rejected")
	}
	s.submitted = append(s.submitted, draft)
	return &models.Review{ID: "srv-1", UserID: userID, MovieID: draft.MovieID, Rating: draft.Rating}, nil
}

func testMovie() models.SelectedMovie {
	return models.SelectedMovie{
		ID:        603,
		Title:     "マトリックス",
		Genres:    []string{"SF", "アクション"},
		Directors: []string{"ウォシャウスキー姉妹"},
		Overview:  "仮想現実の話",
	}
}

func TestBeginSeedsContext(t *testing.T) {
	session := review.NewSession(&stubGenerator{}, &stubSubmitter{})

	if session.State() != review.StateIdle {
		t.Fatalf("expected idle initial state, got %s", session.State())
	}

	session.Begin(testMovie())
	if session.State() != review.StateContextSeeded {
		t.Fatalf("expected context_seeded, got %s", session.State())
	}
	if session.Movie() == nil || session.Movie().ID != 603 {
		t.Fatalf("expected attached movie")
	}
}

func TestContextBlockOnlyInFirstOutboundMessage(t *testing.T) {
	gen := &stubGenerator{}
	session := review.NewSession(gen, &stubSubmitter{})
	session.Begin(testMovie())

	for _, text := range []string{"観たよ", "面白かった", "特にラストが"} {
		if _, err := session.Send(context.Background(), text); err != nil {
			t.Fatalf("send returned error: %v", err)
		}
	}

	if len(gen.requests) != 3 {
		t.Fatalf("expected 3 collaborator calls, got %d", len(gen.requests))
	}

	for callIdx, request := range gen.requests {
		seeded := 0
		for msgIdx, msg := range request {
			if strings.Contains(msg.Text, "マトリックス") && strings.Contains(msg.Text, "インタビュアー") {
				seeded++
				if msgIdx != 0 {
					t.Fatalf("call %d: context found at position %d, expected first message only", callIdx, msgIdx)
				}
			}
		}
		if seeded != 1 {
			t.Fatalf("call %d: context block appeared %d times, expected exactly once", callIdx, seeded)
		}
	}
}

func TestSendAppendsBothTurns(t *testing.T) {
	session := review.NewSession(&stubGenerator{reply: "いいですね"}, &stubSubmitter{})
	session.Begin(testMovie())

	reply, err := session.Send(context.Background(), "観ました")
	if err != nil {
		t.Fatalf("send returned error: %v", err)
	}
	if reply != "いいですね" {
		t.Fatalf("unexpected reply %q", reply)
	}

	transcript := session.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(transcript))
	}
	if transcript[0].Role != models.RoleUser || transcript[1].Role != models.RoleAssistant {
		t.Fatalf("unexpected turn order: %s, %s", transcript[0].Role, transcript[1].Role)
	}
}

func TestSendFailureKeepsUserTurnAndRecovers(t *testing.T) {
	gen := &stubGenerator{failNext: true}
	session := review.NewSession(gen, &stubSubmitter{})
	session.Begin(testMovie())

	reply, err := session.Send(context.Background(), "観ました")
	if err != nil {
		t.Fatalf("collaborator failure must not surface as send error, got %v", err)
	}
	if reply == "" {
		t.Fatalf("expected fallback reply text")
	}

	transcript := session.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("expected user turn plus fallback turn, got %d turns", len(transcript))
	}
	if transcript[0].Text != "観ました" {
		t.Fatalf("user turn lost on collaborator failure")
	}
	if session.State() != review.StateExchanging {
		t.Fatalf("expected session to stay in exchanging, got %s", session.State())
	}

	// The next exchange works normally.
	if _, err := session.Send(context.Background(), "もう一度"); err != nil {
		t.Fatalf("send after failure returned error: %v", err)
	}
	if len(session.Transcript()) != 4 {
		t.Fatalf("expected 4 turns after recovery, got %d", len(session.Transcript()))
	}
}

func TestSendWithoutSession(t *testing.T) {
	session := review.NewSession(&stubGenerator{}, &stubSubmitter{})
	if _, err := session.Send(context.Background(), "hello"); !errors.Is(err, review.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestStrictTurnOrdering(t *testing.T) {
	gen := &stubGenerator{block: make(chan struct{})}
	session := review.NewSession(gen, &stubSubmitter{})
	session.Begin(testMovie())

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := session.Send(context.Background(), "一通目"); err != nil {
			t.Errorf("first send returned error: %v", err)
		}
	}()

	// Wait until the first round-trip is in flight.
	for len(session.Transcript()) == 0 {
		time.Sleep(time.Millisecond)
	}

	if _, err := session.Send(context.Background(), "二通目"); !errors.Is(err, review.ErrBusy) {
		t.Fatalf("expected ErrBusy while a round-trip is in flight, got %v", err)
	}

	close(gen.block)
	<-done
}

func TestReadyToSummarizeGate(t *testing.T) {
	gen := &stubGenerator{}
	session := review.NewSession(gen, &stubSubmitter{})
	session.Begin(testMovie())

	// One full exchange: 2 turns. Not ready.
	if _, err := session.Send(context.Background(), "観た"); err != nil {
		t.Fatalf("send returned error: %v", err)
	}
	if session.ReadyToSummarize() {
		t.Fatalf("expected not ready at 2 turns")
	}
	if _, err := session.Summarize(context.Background()); !errors.Is(err, review.ErrNotReady) {
		t.Fatalf("expected ErrNotReady at 2 turns, got %v", err)
	}

	// Second exchange: 4 turns. Ready.
	if _, err := session.Send(context.Background(), "面白かった"); err != nil {
		t.Fatalf("send returned error: %v", err)
	}
	if got := len(session.Transcript()); got != 4 {
		t.Fatalf("expected 4 turns, got %d", got)
	}
	if !session.ReadyToSummarize() {
		t.Fatalf("expected ready at 4 turns")
	}
	if session.State() != review.StateReadyToSummarize {
		t.Fatalf("expected ready_to_summarize state, got %s", session.State())
	}
}

func TestSummarizeSeedsDraftText(t *testing.T) {
	gen := &stubGenerator{summary: "静かな余韻が残る作品だった。"}
	session := review.NewSession(gen, &stubSubmitter{})
	session.Begin(testMovie())
	for _, text := range []string{"観た", "面白かった"} {
		if _, err := session.Send(context.Background(), text); err != nil {
			t.Fatalf("send returned error: %v", err)
		}
	}

	summary, err := session.Summarize(context.Background())
	if err != nil {
		t.Fatalf("summarize returned error: %v", err)
	}
	if summary != "静かな余韻が残る作品だった。" {
		t.Fatalf("unexpected summary %q", summary)
	}
	if session.State() != review.StateSummarized {
		t.Fatalf("expected summarized state, got %s", session.State())
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "マトリックス") {
		t.Fatalf("expected summary prompt to mention the movie")
	}
}

func TestSummarizeTruncatesLongOutput(t *testing.T) {
	gen := &stubGenerator{summary: strings.Repeat("あ", 300)}
	session := review.NewSession(gen, &stubSubmitter{})
	session.Begin(testMovie())
	for _, text := range []string{"観た", "面白かった"} {
		if _, err := session.Send(context.Background(), text); err != nil {
			t.Fatalf("send returned error: %v", err)
		}
	}

	summary, err := session.Summarize(context.Background())
	if err != nil {
		t.Fatalf("summarize returned error: %v", err)
	}
	if got := len([]rune(summary)); got != 150 {
		t.Fatalf("expected summary bounded to 150 runes, got %d", got)
	}
}

func TestSummarizeFailureFallsBackToEmpty(t *testing.T) {
	gen := &stubGenerator{}
	session := review.NewSession(gen, &stubSubmitter{})
	session.Begin(testMovie())
	for _, text := range []string{"観た", "面白かった"} {
		if _, err := session.Send(context.Background(), text); err != nil {
			t.Fatalf("send returned error: %v", err)
		}
	}

	gen.failNext = true
	summary, err := session.Summarize(context.Background())
	if err != nil {
		t.Fatalf("summarize failure must not block, got error: %v", err)
	}
	if summary != "" {
		t.Fatalf("expected empty summary on failure, got %q", summary)
	}
	if session.State() != review.StateSummarized {
		t.Fatalf("expected summarized state even after fallback, got %s", session.State())
	}
}

func TestSubmitResetsSession(t *testing.T) {
	submitter := &stubSubmitter{}
	session := review.NewSession(&stubGenerator{}, submitter)
	session.Begin(testMovie())
	for _, text := range []string{"観た", "面白かった"} {
		if _, err := session.Send(context.Background(), text); err != nil {
			t.Fatalf("send returned error: %v", err)
		}
	}
	if _, err := session.Summarize(context.Background()); err != nil {
		t.Fatalf("summarize returned error: %v", err)
	}

	saved, err := session.Submit(context.Background(), "user-1", 4, []string{"感動した"}, "編集済みの感想")
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if saved.ID != "srv-1" {
		t.Fatalf("expected server entity back, got %q", saved.ID)
	}
	if len(submitter.submitted) != 1 || submitter.submitted[0].Content != "編集済みの感想" {
		t.Fatalf("expected edited text submitted")
	}

	// Terminal state immediately yields a fresh idle session.
	if session.State() != review.StateIdle {
		t.Fatalf("expected idle after submit, got %s", session.State())
	}
	if session.Movie() != nil || len(session.Transcript()) != 0 {
		t.Fatalf("expected transcript and movie cleared after submit")
	}
}

func TestSubmitValidation(t *testing.T) {
	session := review.NewSession(&stubGenerator{}, &stubSubmitter{})
	session.Begin(testMovie())

	if _, err := session.Submit(context.Background(), "user-1", 0, nil, ""); !errors.Is(err, review.ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	if _, err := session.Submit(context.Background(), "user-1", 3, []string{"謎のタグ"}, ""); !errors.Is(err, review.ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}

func TestSubmitFailureKeepsSession(t *testing.T) {
	submitter := &stubSubmitter{fail: true}
	session := review.NewSession(&stubGenerator{}, submitter)
	session.Begin(testMovie())
	if _, err := session.Send(context.Background(), "観た"); err != nil {
		t.Fatalf("send returned error: %v", err)
	}

	if _, err := session.Submit(context.Background(), "user-1", 4, nil, "感想"); err == nil {
		t.Fatalf("expected submit failure to surface")
	}
	// Session intact so the user can retry.
	if session.Movie() == nil || len(session.Transcript()) != 2 {
		t.Fatalf("expected session preserved after failed submit")
	}
}

func TestAbandonClearsEverything(t *testing.T) {
	session := review.NewSession(&stubGenerator{}, &stubSubmitter{})
	session.Begin(testMovie())
	for _, text := range []string{"観た", "面白かった"} {
		if _, err := session.Send(context.Background(), text); err != nil {
			t.Fatalf("send returned error: %v", err)
		}
	}

	session.Abandon()
	if session.State() != review.StateIdle {
		t.Fatalf("expected idle after abandon, got %s", session.State())
	}
	if session.Movie() != nil {
		t.Fatalf("expected selected movie cleared")
	}
	if len(session.Transcript()) != 0 {
		t.Fatalf("expected transcript cleared")
	}
}

func TestLateReplyAfterAbandonIsDiscarded(t *testing.T) {
	gen := &stubGenerator{block: make(chan struct{})}
	session := review.NewSession(gen, &stubSubmitter{})
	session.Begin(testMovie())

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := session.Send(context.Background(), "観ました"); err != nil {
			t.Errorf("send returned error: %v", err)
		}
	}()

	for len(session.Transcript()) == 0 {
		time.Sleep(time.Millisecond)
	}

	// Abandon while the collaborator call is still in flight, then let
	// the delayed reply arrive.
	session.Abandon()
	close(gen.block)
	<-done

	if len(session.Transcript()) != 0 {
		t.Fatalf("late reply reappeared in transcript: %v", session.Transcript())
	}
	if session.Movie() != nil {
		t.Fatalf("expected movie to stay cleared")
	}
	if session.State() != review.StateIdle {
		t.Fatalf("expected idle state, got %s", session.State())
	}
}

func TestBeginOverActiveSessionStartsFresh(t *testing.T) {
	session := review.NewSession(&stubGenerator{}, &stubSubmitter{})
	session.Begin(testMovie())
	if _, err := session.Send(context.Background(), "観た"); err != nil {
		t.Fatalf("send returned error: %v", err)
	}

	next := testMovie()
	next.ID = 550
	next.Title = "ファイト・クラブ"
	session.Begin(next)

	if session.Movie().ID != 550 {
		t.Fatalf("expected new movie attached")
	}
	if len(session.Transcript()) != 0 {
		t.Fatalf("expected old transcript discarded")
	}
}
