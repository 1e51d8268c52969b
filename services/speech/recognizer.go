package speech

import (
	"context"
	"errors"
)

// ErrUnsupported is returned synchronously when the runtime has no speech
// recognition capability. Start must fail fast, never hang.
var ErrUnsupported = errors.New("speech: recognition not supported on this runtime")

// Result is one recognition event. Non-final results are superseded by
// the next event; final results are committed text segments.
type Result struct {
	Text  string
	Final bool
}

// Recognizer is a push-based source of recognition events with explicit
// lifecycle control. Implementations deliver events to the handler passed
// to Start and must stop delivering after Stop returns.
type Recognizer interface {
	// Supported reports whether recognition is available at all.
	Supported() bool
	// Start begins a recognition session, delivering events to handler.
	// It fails with ErrUnsupported when Supported is false.
	Start(ctx context.Context, handler func(Result)) error
	// Stop ends the active session. Safe to call when none is active.
	Stop()
}
