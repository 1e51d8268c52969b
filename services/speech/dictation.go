package speech

import (
	"context"
	"log"
	"sync"
)

// Dictation composes recognition events into a text field. While
// recording, partial results render appended to a frozen snapshot of the
// text that existed before recording started; each final result advances
// the snapshot so the next partial composes correctly. Stopping never
// discards committed text.
//
// One Dictation owns one recognizer; starting while already recording
// stops the previous session first, so there is never a second active
// subscriber.
type Dictation struct {
	recognizer Recognizer

	mu        sync.Mutex
	recording bool
	committed string // snapshot + finalized segments
	partial   string // latest non-final segment, superseded by the next event
}

// NewDictation creates a dictation buffer over the given recognizer.
func NewDictation(recognizer Recognizer) *Dictation {
	return &Dictation{recognizer: recognizer}
}

// Start freezes the current text as the snapshot and begins recognition.
// The seed is whatever text the field holds when recording starts.
func (d *Dictation) Start(ctx context.Context, seed string) error {
	if !d.recognizer.Supported() {
		return ErrUnsupported
	}

	d.mu.Lock()
	if d.recording {
		d.mu.Unlock()
		// A session is already active; replace it rather than stacking a
		// second subscriber.
		d.Stop()
		d.mu.Lock()
	}
	d.committed = seed
	d.partial = ""
	d.recording = true
	d.mu.Unlock()

	if err := d.recognizer.Start(ctx, d.handle); err != nil {
		d.mu.Lock()
		d.recording = false
		d.mu.Unlock()
		return err
	}

	log.Printf("[speech] dictation started")
	return nil
}

// handle receives recognition events. The recording flag gates every
// mutation: events arriving after Stop are dropped.
func (d *Dictation) handle(result Result) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.recording {
		return
	}

	if result.Final {
		d.committed += result.Text
		d.partial = ""
		return
	}
	d.partial = result.Text
}

// Stop ends recognition. Committed text is kept; the trailing partial is
// dropped because it was never finalized.
func (d *Dictation) Stop() {
	d.mu.Lock()
	if !d.recording {
		d.mu.Unlock()
		return
	}
	d.recording = false
	d.partial = ""
	d.mu.Unlock()

	d.recognizer.Stop()
	log.Printf("[speech] dictation stopped")
}

// Recording reports whether a session is active.
func (d *Dictation) Recording() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recording
}

// Text returns the current display text: committed text plus the live
// partial while recording.
func (d *Dictation) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.committed + d.partial
}
