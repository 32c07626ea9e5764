package engines

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgnsrekt/utter/internal/cache"
	"github.com/dgnsrekt/utter/internal/tts"
)

// Options carries everything needed to construct any engine.
type Options struct {
	// OpenAI engine.
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int

	// Piper engine.
	PiperBinary  string
	PiperModel   string
	PiperConfig  string
	PiperSpeaker string

	// Fallback threshold for the auto engine.
	MaxFailures int

	// Shared synthesis cache (optional).
	Cache *cache.Manager
}

// New constructs the named engine. "auto" builds the OpenAI engine with a
// piper fallback when a piper model is configured, otherwise plain OpenAI.
func New(name string, opts Options) (tts.Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai":
		return NewOpenAIEngine(OpenAIConfig{
			APIKey:            opts.APIKey,
			BaseURL:           opts.BaseURL,
			Timeout:           opts.Timeout,
			RequestsPerMinute: opts.RequestsPerMinute,
			Cache:             opts.Cache,
		})
	case "piper":
		return NewPiperEngine(PiperConfig{
			Binary:     opts.PiperBinary,
			ModelPath:  opts.PiperModel,
			ConfigPath: opts.PiperConfig,
			Speaker:    opts.PiperSpeaker,
			Timeout:    opts.Timeout,
			Cache:      opts.Cache,
		})
	case "auto":
		primary, err := NewOpenAIEngine(OpenAIConfig{
			APIKey:            opts.APIKey,
			BaseURL:           opts.BaseURL,
			Timeout:           opts.Timeout,
			RequestsPerMinute: opts.RequestsPerMinute,
			Cache:             opts.Cache,
		})
		if err != nil {
			return nil, err
		}
		if opts.PiperModel == "" {
			return primary, nil
		}
		secondary, err := NewPiperEngine(PiperConfig{
			Binary:     opts.PiperBinary,
			ModelPath:  opts.PiperModel,
			ConfigPath: opts.PiperConfig,
			Speaker:    opts.PiperSpeaker,
			Timeout:    opts.Timeout,
			Cache:      opts.Cache,
		})
		if err != nil {
			return nil, err
		}
		maxFailures := opts.MaxFailures
		if maxFailures == 0 {
			maxFailures = 3
		}
		return NewFallbackEngine(primary, secondary, maxFailures), nil
	default:
		return nil, fmt.Errorf("%w: %q", tts.ErrInvalidEngine, name)
	}
}
