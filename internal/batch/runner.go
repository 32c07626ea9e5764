package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/utter/internal/tts"
)

// ErrStopped is returned when a run halts early on a job failure.
var ErrStopped = errors.New("batch stopped on first failure")

// Runner executes a script's jobs against an engine.
type Runner struct {
	engine tts.Engine

	// Workers is the number of concurrent jobs (default 1: sequential,
	// in script order).
	Workers int

	// KeepGoing continues past failed jobs instead of stopping.
	KeepGoing bool

	// MaxRetries is the per-job retry budget (default 2).
	MaxRetries uint

	// JobTimeout bounds each attempt (default 90s).
	JobTimeout time.Duration
}

// NewRunner creates a runner with default policy.
func NewRunner(engine tts.Engine) *Runner {
	return &Runner{
		engine:     engine,
		Workers:    1,
		MaxRetries: 2,
		JobTimeout: 90 * time.Second,
	}
}

// Run executes every job in the script. Results come back indexed by job.
// With KeepGoing unset, the first failure cancels the remaining jobs and
// the error wraps ErrStopped.
func (r *Runner) Run(ctx context.Context, script *Script) ([]JobResult, error) {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]JobResult, len(script.Jobs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range script.Jobs {
		sem <- struct{}{}
		if ctx.Err() != nil {
			results[i] = JobResult{Index: i, Err: ctx.Err()}
			<-sem
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer func() { <-sem; wg.Done() }()

			results[i] = r.runJob(ctx, script, i)
			if results[i].Err != nil && !r.KeepGoing {
				cancel()
			}
		}(i)
	}
	wg.Wait()

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if failed == 0 {
		return results, nil
	}
	if !r.KeepGoing {
		return results, fmt.Errorf("%w: %d of %d jobs did not run or failed", ErrStopped, failed, len(results))
	}
	return results, fmt.Errorf("%d of %d jobs failed", failed, len(results))
}

func (r *Runner) runJob(ctx context.Context, script *Script, i int) JobResult {
	req, outPath, err := script.Request(i)
	if err != nil {
		return JobResult{Index: i, Err: err}
	}

	start := time.Now()
	var result *tts.Result

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, r.JobTimeout)
		defer cancel()

		var err error
		result, err = r.engine.Synthesize(attemptCtx, req)
		if err != nil {
			// Requests that can never succeed should not be retried.
			if errors.Is(err, tts.ErrEmptyText) ||
				errors.Is(err, tts.ErrTextTooLong) ||
				errors.Is(err, tts.ErrInvalidFormat) ||
				errors.Is(err, tts.ErrInvalidSpeed) {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(r.MaxRetries))
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		log.Error("job failed", "job", i+1, "output", outPath, "err", err)
		return JobResult{Index: i, Output: outPath, Err: err}
	}

	if err := tts.WriteAudioFile(outPath, result); err != nil {
		log.Error("job write failed", "job", i+1, "output", outPath, "err", err)
		return JobResult{Index: i, Output: outPath, Err: err}
	}

	log.Debug("job complete", "job", i+1, "output", outPath,
		"bytes", len(result.Audio), "cached", result.Cached)

	return JobResult{
		Index:   i,
		Output:  outPath,
		Bytes:   len(result.Audio),
		Cached:  result.Cached,
		Elapsed: time.Since(start),
	}
}
