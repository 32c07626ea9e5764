package engines

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/utter/internal/tts"
)

// FallbackEngine wraps a primary engine with a secondary that takes over
// once the primary has failed maxFailures times in a row.
type FallbackEngine struct {
	primary  tts.Engine
	fallback tts.Engine

	maxFailures int

	mu            sync.Mutex
	failures      int
	usingFallback bool
}

// NewFallbackEngine creates an engine with automatic fallback.
// maxFailures of zero means fall back on the first failure.
func NewFallbackEngine(primary, fallback tts.Engine, maxFailures int) *FallbackEngine {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &FallbackEngine{
		primary:     primary,
		fallback:    fallback,
		maxFailures: maxFailures,
	}
}

// Synthesize uses the active engine, switching to the fallback after
// repeated primary failures.
func (f *FallbackEngine) Synthesize(ctx context.Context, req tts.Request) (*tts.Result, error) {
	f.mu.Lock()
	useFallback := f.usingFallback
	f.mu.Unlock()

	if useFallback {
		return f.fallback.Synthesize(ctx, req)
	}

	result, err := f.primary.Synthesize(ctx, req)
	if err == nil {
		f.mu.Lock()
		if f.failures > 0 {
			log.Info("primary engine recovered", "engine", f.primary.Info().Name, "failures", f.failures)
			f.failures = 0
		}
		f.mu.Unlock()
		return result, nil
	}

	// Invalid requests fail on any engine; don't burn the failure budget.
	if verr := tts.ValidateRequest(req); verr != nil {
		return nil, err
	}

	f.mu.Lock()
	f.failures++
	failures := f.failures
	switchOver := failures >= f.maxFailures
	if switchOver {
		f.usingFallback = true
	}
	f.mu.Unlock()

	log.Warn("primary engine failed", "engine", f.primary.Info().Name,
		"attempt", failures, "max", f.maxFailures, "err", err)

	if !switchOver {
		return nil, err
	}

	log.Warn("switching to fallback engine", "engine", f.fallback.Info().Name)
	result, ferr := f.fallback.Synthesize(ctx, req)
	if ferr != nil {
		return nil, fmt.Errorf("both engines failed: primary: %v, fallback: %w", err, ferr)
	}
	return result, nil
}

// Info reports the active engine's capabilities.
func (f *FallbackEngine) Info() tts.EngineInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usingFallback {
		return f.fallback.Info()
	}
	return f.primary.Info()
}

// Validate requires at least one usable engine. If only the fallback
// validates, it becomes active immediately.
func (f *FallbackEngine) Validate() error {
	primaryErr := f.primary.Validate()
	fallbackErr := f.fallback.Validate()

	if primaryErr != nil && fallbackErr != nil {
		return fmt.Errorf("both engines unavailable: primary: %v, fallback: %w", primaryErr, fallbackErr)
	}
	if primaryErr != nil {
		log.Warn("primary engine unavailable, using fallback",
			"engine", f.fallback.Info().Name, "err", primaryErr)
		f.mu.Lock()
		f.usingFallback = true
		f.mu.Unlock()
	}
	return nil
}

// Close closes both engines.
func (f *FallbackEngine) Close() error {
	perr := f.primary.Close()
	ferr := f.fallback.Close()
	if perr != nil {
		return perr
	}
	return ferr
}

// Ensure FallbackEngine implements the Engine interface.
var _ tts.Engine = (*FallbackEngine)(nil)
