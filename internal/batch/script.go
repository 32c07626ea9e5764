// Package batch runs scripted sequences of synthesis jobs, the way a
// shell loop would invoke the CLI once per line.
package batch

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/utter/internal/tts"
)

// Job is one synthesis invocation in a script.
type Job struct {
	// Text is the prompt to synthesize. Required.
	Text string `yaml:"text"`

	// Output is the destination path; the format extension is appended
	// when missing. Required.
	Output string `yaml:"output"`

	// Format is the audio format name (wav, mp3, flac, opus).
	// Empty falls back to the script default.
	Format string `yaml:"format,omitempty"`

	// Voice, Model, Instructions and Speed override the script defaults
	// for this job only.
	Voice        string  `yaml:"voice,omitempty"`
	Model        string  `yaml:"model,omitempty"`
	Instructions string  `yaml:"instructions,omitempty"`
	Speed        float64 `yaml:"speed,omitempty"`
}

// Defaults are script-wide fallbacks applied to jobs that leave the
// corresponding field empty.
type Defaults struct {
	Format       string  `yaml:"format,omitempty"`
	Voice        string  `yaml:"voice,omitempty"`
	Model        string  `yaml:"model,omitempty"`
	Instructions string  `yaml:"instructions,omitempty"`
	Speed        float64 `yaml:"speed,omitempty"`
}

// Script is a parsed batch file.
type Script struct {
	Defaults Defaults `yaml:"defaults,omitempty"`
	Jobs     []Job    `yaml:"jobs"`
}

// LoadScript reads and validates a YAML batch script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read script: %w", err)
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("unable to parse script: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// Validate checks every job before any synthesis starts, so a bad script
// fails fast instead of partway through.
func (s *Script) Validate() error {
	if len(s.Jobs) == 0 {
		return fmt.Errorf("script contains no jobs")
	}
	if s.Defaults.Format != "" {
		if _, err := tts.ParseFormat(s.Defaults.Format); err != nil {
			return fmt.Errorf("defaults: %w", err)
		}
	}
	seen := make(map[string]int, len(s.Jobs))
	for i, job := range s.Jobs {
		if job.Text == "" {
			return fmt.Errorf("job %d: text is required", i+1)
		}
		if job.Output == "" {
			return fmt.Errorf("job %d: output is required", i+1)
		}
		format := job.Format
		if format == "" {
			format = s.Defaults.Format
		}
		if format != "" {
			if _, err := tts.ParseFormat(format); err != nil {
				return fmt.Errorf("job %d: %w", i+1, err)
			}
		}
		if prev, ok := seen[job.Output]; ok {
			return fmt.Errorf("job %d: output %q already used by job %d", i+1, job.Output, prev)
		}
		seen[job.Output] = i + 1
	}
	return nil
}

// Request resolves job i against the script defaults into a synthesis
// request and output path.
func (s *Script) Request(i int) (tts.Request, string, error) {
	job := s.Jobs[i]

	name := job.Format
	if name == "" {
		name = s.Defaults.Format
	}
	format := tts.FormatWAV
	if name != "" {
		var err error
		format, err = tts.ParseFormat(name)
		if err != nil {
			return tts.Request{}, "", err
		}
	}

	req := tts.Request{
		Text:         job.Text,
		Format:       format,
		Voice:        pick(job.Voice, s.Defaults.Voice),
		Model:        pick(job.Model, s.Defaults.Model),
		Instructions: pick(job.Instructions, s.Defaults.Instructions),
		Speed:        job.Speed,
	}
	if req.Speed == 0 {
		req.Speed = s.Defaults.Speed
	}
	if req.Instructions == "" {
		req.Instructions = tts.DefaultInstructions
	}
	req.ApplyDefaults()

	return req, tts.NormalizeOutputPath(job.Output, format), nil
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// JobResult records the outcome of one job.
type JobResult struct {
	Index   int
	Output  string
	Bytes   int
	Cached  bool
	Elapsed time.Duration
	Err     error
}
