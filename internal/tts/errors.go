package tts

import (
	"errors"
	"fmt"
)

// Common synthesis errors.
var (
	// ErrEmptyText indicates the request carried no text to synthesize.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrTextTooLong indicates the prompt exceeds MaxTextSize.
	ErrTextTooLong = errors.New("text exceeds maximum prompt length")

	// ErrInvalidFormat indicates an unsupported audio format was requested.
	ErrInvalidFormat = errors.New("invalid audio format")

	// ErrInvalidEngine indicates an unknown engine was selected.
	ErrInvalidEngine = errors.New("invalid TTS engine specified")

	// ErrInvalidSpeed indicates the speed multiplier is out of range.
	ErrInvalidSpeed = errors.New("speed must be between 0.25 and 4.0")

	// ErrMissingAPIKey indicates the API key environment variable is unset.
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable is not set")

	// ErrNoAudio indicates the engine returned an empty payload.
	ErrNoAudio = errors.New("engine produced no audio output")

	// ErrEngineUnavailable indicates the selected engine cannot run here.
	ErrEngineUnavailable = errors.New("selected TTS engine is not available")
)

// EngineError wraps an engine failure with the engine name for reporting.
type EngineError struct {
	Engine string
	Op     string
	Err    error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Engine, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError wraps err with engine and operation context.
func NewEngineError(engine, op string, err error) *EngineError {
	return &EngineError{Engine: engine, Op: op, Err: err}
}
