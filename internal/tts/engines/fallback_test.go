package engines

import (
	"context"
	"errors"
	"testing"

	"github.com/dgnsrekt/utter/internal/tts"
)

func TestFallbackSwitchesAfterRepeatedFailures(t *testing.T) {
	primary := &MockEngine{Err: errors.New("service down")}
	secondary := &MockEngine{}
	engine := NewFallbackEngine(primary, secondary, 2)

	req := tts.Request{Text: "Hello", Format: tts.FormatWAV}

	// First failure stays on the primary.
	if _, err := engine.Synthesize(context.Background(), req); err == nil {
		t.Fatal("expected first attempt to fail")
	}
	if secondary.Calls() != 0 {
		t.Fatal("fallback engaged too early")
	}

	// Second failure hits the threshold and the fallback answers.
	result, err := engine.Synthesize(context.Background(), req)
	if err != nil {
		t.Fatalf("expected fallback to answer, got %v", err)
	}
	if result.Engine != "mock" {
		t.Errorf("result engine = %q", result.Engine)
	}
	if secondary.Calls() != 1 {
		t.Errorf("fallback calls = %d, want 1", secondary.Calls())
	}

	// Once switched, the primary is not consulted again.
	primaryCalls := primary.Calls()
	if _, err := engine.Synthesize(context.Background(), req); err != nil {
		t.Fatalf("post-switch synthesis failed: %v", err)
	}
	if primary.Calls() != primaryCalls {
		t.Error("primary used after switchover")
	}
}

func TestFallbackRecoveryResetsFailureCount(t *testing.T) {
	primary := &MockEngine{Err: errors.New("flaky")}
	secondary := &MockEngine{}
	engine := NewFallbackEngine(primary, secondary, 3)

	req := tts.Request{Text: "Hello", Format: tts.FormatWAV}

	if _, err := engine.Synthesize(context.Background(), req); err == nil {
		t.Fatal("expected failure")
	}

	// Primary recovers; the streak resets and the fallback stays idle.
	primary.Err = nil
	for i := 0; i < 5; i++ {
		if _, err := engine.Synthesize(context.Background(), req); err != nil {
			t.Fatalf("synthesis %d failed: %v", i, err)
		}
	}
	if secondary.Calls() != 0 {
		t.Error("fallback should not have been used")
	}
}

func TestFallbackInvalidRequestDoesNotBurnBudget(t *testing.T) {
	primary := &MockEngine{}
	secondary := &MockEngine{}
	engine := NewFallbackEngine(primary, secondary, 1)

	// Empty text fails validation on any engine.
	if _, err := engine.Synthesize(context.Background(), tts.Request{Format: tts.FormatWAV}); err == nil {
		t.Fatal("expected validation failure")
	}

	// A valid request afterwards still goes to the primary.
	if _, err := engine.Synthesize(context.Background(), tts.Request{Text: "ok", Format: tts.FormatWAV}); err != nil {
		t.Fatalf("valid request failed: %v", err)
	}
	if secondary.Calls() != 0 {
		t.Error("validation failure triggered fallback switchover")
	}
}

func TestFallbackValidatePrefersUsableEngine(t *testing.T) {
	primary := &MockEngine{}
	secondary := &MockEngine{}
	engine := NewFallbackEngine(primary, secondary, 3)

	if err := engine.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if engine.Info().Name != "mock" {
		t.Errorf("Info().Name = %q", engine.Info().Name)
	}
}
