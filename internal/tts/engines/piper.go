package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/utter/internal/cache"
	"github.com/dgnsrekt/utter/internal/tts"
)

// PiperEngine synthesizes speech offline with the piper binary. Piper
// writes WAV; other formats are re-encoded with ffmpeg.
// A fresh process per synthesis with pre-configured stdin avoids the race
// where piper reads stdin before the text is written.
type PiperEngine struct {
	binary     string
	modelPath  string
	configPath string
	speaker    string
	timeout    time.Duration

	cache *cache.Manager
}

// PiperConfig holds configuration for the Piper engine.
type PiperConfig struct {
	// Binary is the piper executable name or path (default "piper").
	Binary string

	// ModelPath is the .onnx voice model file. Required.
	ModelPath string

	// ConfigPath is the model config JSON. Defaults to ModelPath with a
	// .json extension.
	ConfigPath string

	// Speaker selects a speaker in multi-speaker models (optional).
	Speaker string

	// Timeout bounds each synthesis, including re-encoding (default 30s).
	Timeout time.Duration

	// Cache holds synthesized audio across requests (optional).
	Cache *cache.Manager
}

// NewPiperEngine creates the offline Piper engine.
func NewPiperEngine(config PiperConfig) (*PiperEngine, error) {
	if config.ModelPath == "" {
		return nil, errors.New("piper model path is required")
	}
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, fmt.Errorf("piper model file not found: %w", err)
	}
	if config.Binary == "" {
		config.Binary = "piper"
	}
	if config.ConfigPath == "" {
		config.ConfigPath = strings.TrimSuffix(config.ModelPath, filepath.Ext(config.ModelPath)) + ".json"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &PiperEngine{
		binary:     config.Binary,
		modelPath:  config.ModelPath,
		configPath: config.ConfigPath,
		speaker:    config.Speaker,
		timeout:    config.Timeout,
		cache:      config.Cache,
	}, nil
}

// Synthesize converts text to audio using piper, re-encoding when the
// requested format is not WAV.
func (e *PiperEngine) Synthesize(ctx context.Context, req tts.Request) (*tts.Result, error) {
	req.ApplyDefaults()
	if err := tts.ValidateRequest(req); err != nil {
		return nil, err
	}

	var cacheKey string
	if e.cache != nil {
		cacheKey = cache.Key(req.Text, "piper", e.modelPath, req.Voice, req.Speed, req.Format.String())
		if audio, ok := e.cache.Get(cacheKey); ok {
			log.Debug("cache hit", "engine", "piper", "bytes", len(audio))
			return &tts.Result{Audio: audio, Format: req.Format, Engine: "piper", Cached: true}, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()

	tempDir, err := os.MkdirTemp("", "utter-piper-")
	if err != nil {
		return nil, tts.NewEngineError("piper", "temp dir", err)
	}
	defer os.RemoveAll(tempDir)

	wavPath := filepath.Join(tempDir, "out.wav")
	if err := e.runPiper(ctx, req, wavPath); err != nil {
		return nil, err
	}

	audio, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, tts.NewEngineError("piper", "read output", err)
	}

	if req.Format != tts.FormatWAV {
		audio, err = encodeWith(ctx, "ffmpeg", audio, req.Format, tempDir)
		if err != nil {
			return nil, err
		}
	}
	if len(audio) == 0 {
		return nil, tts.NewEngineError("piper", "output", tts.ErrNoAudio)
	}

	elapsed := time.Since(start)
	log.Debug("synthesized", "engine", "piper", "format", req.Format,
		"bytes", len(audio), "elapsed", elapsed)

	if e.cache != nil {
		_ = e.cache.Put(cacheKey, audio)
	}

	return &tts.Result{Audio: audio, Format: req.Format, Engine: "piper", Elapsed: elapsed}, nil
}

func (e *PiperEngine) runPiper(ctx context.Context, req tts.Request, wavPath string) error {
	// Piper's length scale is the inverse of the speed multiplier.
	args := []string{
		"--model", e.modelPath,
		"--config", e.configPath,
		"--output_file", wavPath,
		"--length_scale", fmt.Sprintf("%.2f", 1.0/req.Speed),
	}
	if e.speaker != "" {
		args = append(args, "--speaker", e.speaker)
	}

	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdin = strings.NewReader(req.Text)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return tts.NewEngineError("piper", "synthesis", fmt.Errorf("timeout: %w", ctx.Err()))
		}
		return tts.NewEngineError("piper", "synthesis",
			fmt.Errorf("%w, stderr: %s", err, strings.TrimSpace(stderr.String())))
	}
	return nil
}

// encodeWith re-encodes WAV audio into the requested container using an
// external encoder (ffmpeg).
func encodeWith(ctx context.Context, encoder string, wavData []byte, format tts.Format, tempDir string) ([]byte, error) {
	outPath := filepath.Join(tempDir, "out"+format.Ext())

	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", "pipe:0"}
	switch format {
	case tts.FormatOpus:
		args = append(args, "-c:a", "libopus")
	case tts.FormatFLAC:
		args = append(args, "-c:a", "flac")
	case tts.FormatMP3:
		args = append(args, "-c:a", "libmp3lame", "-q:a", "4")
	}
	args = append(args, outPath)

	cmd := exec.CommandContext(ctx, encoder, args...)
	cmd.Stdin = bytes.NewReader(wavData)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, tts.NewEngineError("piper", "encode "+format.String(),
			fmt.Errorf("%w, stderr: %s", err, strings.TrimSpace(stderr.String())))
	}
	return os.ReadFile(outPath)
}

// Info returns engine capabilities.
func (e *PiperEngine) Info() tts.EngineInfo {
	return tts.EngineInfo{
		Name:        "piper",
		Formats:     []tts.Format{tts.FormatWAV, tts.FormatMP3, tts.FormatFLAC, tts.FormatOpus},
		MaxTextSize: tts.MaxTextSize,
		IsOnline:    false,
	}
}

// Validate checks the piper binary and model are usable.
func (e *PiperEngine) Validate() error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("%w: piper not found in PATH: %v", tts.ErrEngineUnavailable, err)
	}
	if _, err := os.Stat(e.modelPath); err != nil {
		return fmt.Errorf("model file not accessible: %w", err)
	}
	return nil
}

// Close releases engine resources.
func (e *PiperEngine) Close() error {
	return nil
}

// Ensure PiperEngine implements the Engine interface.
var _ tts.Engine = (*PiperEngine)(nil)
