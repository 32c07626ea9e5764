package tts

import "time"

// Defaults mirror the service-side defaults for speech synthesis.
const (
	// DefaultModel is the speech model requested when none is configured.
	DefaultModel = "gpt-4o-mini-tts"

	// DefaultVoice is the voice requested when none is configured.
	DefaultVoice = "alloy"

	// DefaultInstructions steer the delivery of the synthesized speech.
	DefaultInstructions = "Speak in a cheerful and positive tone."

	// DefaultSpeed is the playback speed multiplier sent with each request.
	DefaultSpeed = 1.0

	// MaxTextSize is the maximum prompt length accepted per request.
	MaxTextSize = 4096
)

// Request describes a single synthesis request.
// Zero-value fields are filled in with defaults by ApplyDefaults.
type Request struct {
	// Text is the prompt to synthesize. Required.
	Text string

	// Format is the requested audio container/codec.
	Format Format

	// Voice is the engine-specific voice identifier.
	Voice string

	// Model is the engine-specific model identifier.
	Model string

	// Instructions steer tone and delivery. Not all engines honor it.
	Instructions string

	// Speed is the speech rate multiplier (0.25 to 4.0).
	Speed float64
}

// ApplyDefaults fills unset fields with package defaults.
func (r *Request) ApplyDefaults() {
	if r.Format == FormatUnknown {
		r.Format = FormatWAV
	}
	if r.Voice == "" {
		r.Voice = DefaultVoice
	}
	if r.Model == "" {
		r.Model = DefaultModel
	}
	if r.Speed == 0 {
		r.Speed = DefaultSpeed
	}
}

// Result is the outcome of a synthesis request.
type Result struct {
	// Audio is the encoded audio returned by the engine.
	Audio []byte

	// Format is the container the audio was requested in.
	Format Format

	// Engine names the engine that produced the audio.
	Engine string

	// Cached reports whether the audio was served from cache.
	Cached bool

	// Elapsed is the wall-clock synthesis time (zero for cache hits).
	Elapsed time.Duration
}

// EngineInfo describes engine capabilities and configuration.
type EngineInfo struct {
	Name        string   // Engine name (e.g., "openai", "piper")
	Formats     []Format // Formats the engine can produce
	MaxTextSize int      // Maximum text size in characters
	IsOnline    bool     // Whether the engine requires internet
}

// Supports reports whether the engine can produce the given format.
func (i EngineInfo) Supports(f Format) bool {
	for _, v := range i.Formats {
		if v == f {
			return true
		}
	}
	return false
}
