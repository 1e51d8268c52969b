package speech_test

import (
	"context"
	"errors"
	"testing"

	"cinelog/services/speech"
)

type fakeRecognizer struct {
	supported bool
	startErr  error
	handler   func(speech.Result)
	starts    int
	stops     int
}

func (f *fakeRecognizer) Supported() bool { return f.supported }

func (f *fakeRecognizer) Start(ctx context.Context, handler func(speech.Result)) error {
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	f.handler = handler
	return nil
}

func (f *fakeRecognizer) Stop() { f.stops++ }

func (f *fakeRecognizer) emit(text string, final bool) {
	f.handler(speech.Result{Text: text, Final: final})
}

func TestDictationUnsupportedFailsFast(t *testing.T) {
	rec := &fakeRecognizer{supported: false}
	d := speech.NewDictation(rec)

	if err := d.Start(context.Background(), ""); !errors.Is(err, speech.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if rec.starts != 0 {
		t.Fatalf("recognizer must not be started when unsupported")
	}
	if d.Recording() {
		t.Fatalf("expected not recording")
	}
}

func TestDictationPartialComposesWithSnapshot(t *testing.T) {
	rec := &fakeRecognizer{supported: true}
	d := speech.NewDictation(rec)

	if err := d.Start(context.Background(), "最初のメモ。"); err != nil {
		t.Fatalf("start returned error: %v", err)
	}

	rec.emit("この映画は", false)
	if got := d.Text(); got != "最初のメモ。この映画は" {
		t.Fatalf("unexpected text %q", got)
	}

	// A newer partial supersedes the previous one, never stacks on it.
	rec.emit("この映画はとても", false)
	if got := d.Text(); got != "最初のメモ。この映画はとても" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestDictationFinalAdvancesSnapshot(t *testing.T) {
	rec := &fakeRecognizer{supported: true}
	d := speech.NewDictation(rec)

	if err := d.Start(context.Background(), ""); err != nil {
		t.Fatalf("start returned error: %v", err)
	}

	rec.emit("この映画は", false)
	rec.emit("この映画は面白かった。", true)
	rec.emit("特にラストが", false)

	if got := d.Text(); got != "この映画は面白かった。特にラストが" {
		t.Fatalf("unexpected text %q", got)
	}

	rec.emit("特にラストが良かった。", true)
	if got := d.Text(); got != "この映画は面白かった。特にラストが良かった。" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestDictationStopKeepsCommittedDropsPartial(t *testing.T) {
	rec := &fakeRecognizer{supported: true}
	d := speech.NewDictation(rec)

	if err := d.Start(context.Background(), ""); err != nil {
		t.Fatalf("start returned error: %v", err)
	}
	rec.emit("確定した文。", true)
	rec.emit("消える途中経過", false)

	d.Stop()
	if d.Recording() {
		t.Fatalf("expected recording stopped")
	}
	if got := d.Text(); got != "確定した文。" {
		t.Fatalf("expected trailing partial dropped, got %q", got)
	}
	if rec.stops != 1 {
		t.Fatalf("expected recognizer stopped once, got %d", rec.stops)
	}
}

func TestDictationLateEventsDropped(t *testing.T) {
	rec := &fakeRecognizer{supported: true}
	d := speech.NewDictation(rec)

	if err := d.Start(context.Background(), ""); err != nil {
		t.Fatalf("start returned error: %v", err)
	}
	rec.emit("確定。", true)
	d.Stop()

	// The recognizer may still flush events after Stop.
	rec.emit("遅れて届いた", false)
	rec.emit("遅れて確定した", true)

	if got := d.Text(); got != "確定。" {
		t.Fatalf("late events mutated the buffer: %q", got)
	}
}

func TestDictationRestartReplacesSession(t *testing.T) {
	rec := &fakeRecognizer{supported: true}
	d := speech.NewDictation(rec)

	if err := d.Start(context.Background(), ""); err != nil {
		t.Fatalf("start returned error: %v", err)
	}
	rec.emit("一回目。", true)

	if err := d.Start(context.Background(), d.Text()); err != nil {
		t.Fatalf("restart returned error: %v", err)
	}
	if rec.stops != 1 {
		t.Fatalf("expected previous session stopped, got %d stops", rec.stops)
	}
	if rec.starts != 2 {
		t.Fatalf("expected recognizer restarted, got %d starts", rec.starts)
	}

	rec.emit("二回目。", true)
	if got := d.Text(); got != "一回目。二回目。" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestDictationStartFailureResetsRecording(t *testing.T) {
	rec := &fakeRecognizer{supported: true, startErr: errors.New("mic busy")}
	d := speech.NewDictation(rec)

	if err := d.Start(context.Background(), ""); err == nil {
		t.Fatalf("expected start failure to surface")
	}
	if d.Recording() {
		t.Fatalf("expected not recording after failed start")
	}
}
