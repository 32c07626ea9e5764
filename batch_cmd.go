package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/utter/internal/batch"
)

var (
	batchJobs      int
	batchKeepGoing bool
	batchRetries   uint
	batchTimeout   time.Duration

	batchCmd = &cobra.Command{
		Use:   "batch <script.yaml>",
		Short: "Run a script of synthesis jobs",
		Long: paragraph(
			fmt.Sprintf("\nRun every job in a %s script: each entry names the text, output path, and format. Jobs run in order and the run stops at the first failure unless --keep-going is set.", keyword("YAML")),
		),
		Example: "  utter batch episodes.yaml\n  utter batch episodes.yaml --jobs 4 --keep-going",
		Args:    cobra.ExactArgs(1),
		RunE:    executeBatch,
	}
)

func executeBatch(_ *cobra.Command, args []string) error {
	script, err := batch.LoadScript(args[0])
	if err != nil {
		return err
	}

	engine, cacheManager, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeQuietly(engine, cacheManager)

	if err := engine.Validate(); err != nil {
		return err
	}

	runner := batch.NewRunner(engine)
	runner.Workers = batchJobs
	runner.KeepGoing = batchKeepGoing
	runner.MaxRetries = batchRetries
	if batchTimeout > 0 {
		runner.JobTimeout = batchTimeout
	}

	results, runErr := runner.Run(context.Background(), script)

	var completed int
	for _, res := range results {
		switch {
		case res.Err != nil && res.Output == "":
			fmt.Printf("%s job %d skipped\n", crossmark(), res.Index+1)
		case res.Err != nil:
			fmt.Printf("%s job %d failed: %v\n", crossmark(), res.Index+1, res.Err)
		default:
			completed++
			detail := humanize.Bytes(uint64(res.Bytes))
			if res.Cached {
				detail += ", cached"
			}
			fmt.Printf("%s Audio saved to %s (%s)\n", checkmark(), keyword(res.Output), detail)
		}
	}
	fmt.Printf("%d of %d jobs completed\n", completed, len(results))

	return runErr
}

func init() {
	batchCmd.Flags().IntVar(&batchJobs, "jobs", 1, "number of jobs to run concurrently")
	batchCmd.Flags().BoolVar(&batchKeepGoing, "keep-going", false, "continue past failed jobs")
	batchCmd.Flags().UintVar(&batchRetries, "retries", 2, "retry budget per job")
	batchCmd.Flags().DurationVar(&batchTimeout, "job-timeout", 0, "timeout per job attempt (default 90s)")
}
