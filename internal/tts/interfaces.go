package tts

import "context"

// Engine defines the contract for text-to-speech engines.
// Implementations include the OpenAI-compatible API client (online) and
// Piper (offline). Engines return fully encoded audio in the requested
// container; they do not write files.
type Engine interface {
	// Synthesize converts the request's text to encoded audio.
	// Implementations must respect context cancellation and enforce
	// their own request timeouts.
	Synthesize(ctx context.Context, req Request) (*Result, error)

	// Info returns engine capabilities and configuration.
	Info() EngineInfo

	// Validate checks that the engine is properly configured and
	// available: API key present (openai), binary on PATH (piper).
	Validate() error

	// Close releases any resources held by the engine.
	Close() error
}
