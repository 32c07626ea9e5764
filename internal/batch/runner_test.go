package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/dgnsrekt/utter/internal/tts"
	"github.com/dgnsrekt/utter/internal/tts/engines"
)

// flakyEngine fails the first failures calls, then succeeds.
type flakyEngine struct {
	failures int32
	calls    atomic.Int32
}

func (e *flakyEngine) Synthesize(_ context.Context, req tts.Request) (*tts.Result, error) {
	req.ApplyDefaults()
	if err := tts.ValidateRequest(req); err != nil {
		return nil, err
	}
	if e.calls.Add(1) <= e.failures {
		return nil, errors.New("transient failure")
	}
	return &tts.Result{Audio: engines.SampleAudio(req.Format), Format: req.Format, Engine: "flaky"}, nil
}

func (e *flakyEngine) Info() tts.EngineInfo { return tts.EngineInfo{Name: "flaky"} }
func (e *flakyEngine) Validate() error      { return nil }
func (e *flakyEngine) Close() error         { return nil }

func testScript(t *testing.T, dir string, texts ...string) *Script {
	t.Helper()
	script := &Script{}
	for i, text := range texts {
		script.Jobs = append(script.Jobs, Job{
			Text:   text,
			Output: filepath.Join(dir, "out"+string(rune('a'+i))),
		})
	}
	if err := script.Validate(); err != nil {
		t.Fatal(err)
	}
	return script
}

func TestRunnerSequentialSuccess(t *testing.T) {
	dir := t.TempDir()
	script := testScript(t, dir, "one", "two", "three")

	runner := NewRunner(&engines.MockEngine{})
	results, err := runner.Run(context.Background(), script)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("job %d failed: %v", res.Index+1, res.Err)
		}
		data, err := os.ReadFile(res.Output)
		if err != nil {
			t.Fatalf("output %q missing: %v", res.Output, err)
		}
		if len(data) == 0 {
			t.Fatalf("output %q is empty", res.Output)
		}
		if got := tts.Sniff(data); got != tts.FormatWAV {
			t.Errorf("output %q sniffs as %v, want wav", res.Output, got)
		}
	}
}

func TestRunnerStopsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	script := testScript(t, dir, "one", "two", "three")
	// Job 2 has empty text after trimming, a permanent validation error.
	script.Jobs[1].Text = " "

	runner := NewRunner(&engines.MockEngine{})
	results, err := runner.Run(context.Background(), script)
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("Run() = %v, want ErrStopped", err)
	}

	if results[0].Err != nil {
		t.Errorf("job 1 should have completed: %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("job 2 should have failed")
	}
	if results[2].Err == nil {
		t.Error("job 3 should have been canceled")
	}
}

func TestRunnerKeepGoing(t *testing.T) {
	dir := t.TempDir()
	script := testScript(t, dir, "one", "two", "three")
	script.Jobs[1].Text = " "

	runner := NewRunner(&engines.MockEngine{})
	runner.KeepGoing = true

	results, err := runner.Run(context.Background(), script)
	if err == nil {
		t.Fatal("Run() should report the failed job")
	}
	if errors.Is(err, ErrStopped) {
		t.Error("keep-going run should not report ErrStopped")
	}

	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("healthy jobs failed: %v, %v", results[0].Err, results[2].Err)
	}
	if _, statErr := os.Stat(results[2].Output); statErr != nil {
		t.Error("job 3 output missing despite keep-going")
	}
}

func TestRunnerRetriesTransientFailures(t *testing.T) {
	dir := t.TempDir()
	script := testScript(t, dir, "only")

	engine := &flakyEngine{failures: 2}
	runner := NewRunner(engine)
	runner.MaxRetries = 3

	results, err := runner.Run(context.Background(), script)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if results[0].Err != nil {
		t.Fatalf("job failed despite retries: %v", results[0].Err)
	}
	if calls := engine.calls.Load(); calls != 3 {
		t.Errorf("engine calls = %d, want 3 (two failures + success)", calls)
	}
}

func TestRunnerDoesNotRetryPermanentErrors(t *testing.T) {
	dir := t.TempDir()
	script := testScript(t, dir, "only")
	script.Jobs[0].Text = " "

	engine := &engines.MockEngine{}
	runner := NewRunner(engine)
	runner.MaxRetries = 5

	_, err := runner.Run(context.Background(), script)
	if err == nil {
		t.Fatal("Run() should fail for invalid text")
	}
	if engine.Calls() != 1 {
		t.Errorf("engine calls = %d, validation errors must not be retried", engine.Calls())
	}
}

func TestRunnerConcurrentWorkers(t *testing.T) {
	dir := t.TempDir()
	script := testScript(t, dir, "one", "two", "three", "four")

	runner := NewRunner(&engines.MockEngine{})
	runner.Workers = 4

	results, err := runner.Run(context.Background(), script)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("job %d failed: %v", res.Index+1, res.Err)
		}
	}
}
