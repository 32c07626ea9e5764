package engines

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/utter/internal/cache"
	"github.com/dgnsrekt/utter/internal/tts"
)

// OpenAIEngine synthesizes speech through an OpenAI-compatible
// /audio/speech endpoint.
type OpenAIEngine struct {
	client  *openai.Client
	baseURL string
	timeout time.Duration

	// Rate limiting so batch runs stay under provider request limits.
	limiter *rate.Limiter

	cache *cache.Manager
}

// OpenAIConfig holds configuration for the OpenAI engine.
type OpenAIConfig struct {
	// APIKey authenticates requests. Falls back to OPENAI_API_KEY.
	APIKey string

	// BaseURL overrides the API endpoint, e.g. for a LiteLLM gateway.
	// Falls back to OPENAI_BASE_URL, then the public API.
	BaseURL string

	// Timeout bounds each synthesis request (default 60s).
	Timeout time.Duration

	// RequestsPerMinute caps the request rate (default 30).
	RequestsPerMinute int

	// Cache holds synthesized audio across requests (optional).
	Cache *cache.Manager
}

// NewOpenAIEngine creates the OpenAI-compatible API engine.
func NewOpenAIEngine(config OpenAIConfig) (*OpenAIEngine, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, tts.ErrMissingAPIKey
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.RequestsPerMinute == 0 {
		config.RequestsPerMinute = 30
	}

	return &OpenAIEngine{
		client:  openai.NewClientWithConfig(clientConfig),
		baseURL: clientConfig.BaseURL,
		timeout: config.Timeout,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
		cache:   config.Cache,
	}, nil
}

// Synthesize requests speech from the API and returns the encoded audio.
func (e *OpenAIEngine) Synthesize(ctx context.Context, req tts.Request) (*tts.Result, error) {
	req.ApplyDefaults()
	if err := tts.ValidateRequest(req); err != nil {
		return nil, err
	}

	var cacheKey string
	if e.cache != nil {
		cacheKey = cache.Key(req.Text, "openai", req.Model, req.Voice, req.Speed, req.Format.String())
		if audio, ok := e.cache.Get(cacheKey); ok {
			log.Debug("cache hit", "engine", "openai", "bytes", len(audio))
			return &tts.Result{Audio: audio, Format: req.Format, Engine: "openai", Cached: true}, nil
		}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, tts.NewEngineError("openai", "rate limit wait", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(req.Model),
		Input:          req.Text,
		Voice:          openai.SpeechVoice(req.Voice),
		Instructions:   req.Instructions,
		ResponseFormat: responseFormat(req.Format),
		Speed:          req.Speed,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, tts.NewEngineError("openai",
				fmt.Sprintf("API error %d", apiErr.HTTPStatusCode),
				errors.New(apiErr.Message))
		}
		if ctx.Err() != nil {
			return nil, tts.NewEngineError("openai", "request", ctx.Err())
		}
		return nil, tts.NewEngineError("openai", "request", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, tts.NewEngineError("openai", "read response", err)
	}
	if len(audio) == 0 {
		return nil, tts.NewEngineError("openai", "response", tts.ErrNoAudio)
	}

	elapsed := time.Since(start)
	log.Debug("synthesized", "engine", "openai", "model", req.Model,
		"voice", req.Voice, "format", req.Format, "bytes", len(audio), "elapsed", elapsed)

	if e.cache != nil {
		// Cache errors are non-fatal; the audio is already in hand.
		_ = e.cache.Put(cacheKey, audio)
	}

	return &tts.Result{Audio: audio, Format: req.Format, Engine: "openai", Elapsed: elapsed}, nil
}

// Info returns engine capabilities.
func (e *OpenAIEngine) Info() tts.EngineInfo {
	return tts.EngineInfo{
		Name:        "openai",
		Formats:     []tts.Format{tts.FormatWAV, tts.FormatMP3, tts.FormatFLAC, tts.FormatOpus},
		MaxTextSize: tts.MaxTextSize,
		IsOnline:    true,
	}
}

// Validate checks that the engine can reach a configured endpoint.
// It does not issue a billable request.
func (e *OpenAIEngine) Validate() error {
	if e.client == nil {
		return tts.ErrEngineUnavailable
	}
	return nil
}

// Close releases engine resources.
func (e *OpenAIEngine) Close() error {
	return nil
}

func responseFormat(f tts.Format) openai.SpeechResponseFormat {
	switch f {
	case tts.FormatMP3:
		return openai.SpeechResponseFormatMp3
	case tts.FormatFLAC:
		return openai.SpeechResponseFormatFlac
	case tts.FormatOpus:
		return openai.SpeechResponseFormatOpus
	default:
		return openai.SpeechResponseFormatWav
	}
}

// Ensure OpenAIEngine implements the Engine interface.
var _ tts.Engine = (*OpenAIEngine)(nil)
