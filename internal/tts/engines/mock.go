package engines

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/dgnsrekt/utter/internal/tts"
)

// MockEngine is a test engine that fabricates minimal but sniffable
// containers without any external service.
type MockEngine struct {
	// Delay simulates synthesis latency.
	Delay time.Duration

	// Err, when set, is returned by every Synthesize call.
	Err error

	mu    sync.Mutex
	calls int
}

// Synthesize returns a tiny valid container for the requested format.
func (e *MockEngine) Synthesize(ctx context.Context, req tts.Request) (*tts.Result, error) {
	req.ApplyDefaults()
	if err := tts.ValidateRequest(req); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if e.Err != nil {
		return nil, e.Err
	}
	if e.Delay > 0 {
		select {
		case <-time.After(e.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return &tts.Result{
		Audio:  SampleAudio(req.Format),
		Format: req.Format,
		Engine: "mock",
	}, nil
}

// Calls reports how many synthesis calls were made.
func (e *MockEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Info returns engine capabilities.
func (e *MockEngine) Info() tts.EngineInfo {
	return tts.EngineInfo{
		Name:        "mock",
		Formats:     tts.Formats,
		MaxTextSize: tts.MaxTextSize,
	}
}

// Validate always succeeds.
func (e *MockEngine) Validate() error { return nil }

// Close releases engine resources.
func (e *MockEngine) Close() error { return nil }

// SampleAudio fabricates the smallest payload that sniffs as the given
// container format.
func SampleAudio(format tts.Format) []byte {
	switch format {
	case tts.FormatWAV:
		return sampleWAV()
	case tts.FormatFLAC:
		return append([]byte("fLaC"), make([]byte, 38)...)
	case tts.FormatOpus:
		// Ogg page header followed by an OpusHead signature.
		page := append([]byte("OggS"), make([]byte, 23)...)
		return append(page, []byte("OpusHead")...)
	case tts.FormatMP3:
		// Bare MPEG-1 layer III frame sync.
		return []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00}
	default:
		return nil
	}
}

// sampleWAV builds a valid RIFF/WAVE file holding a handful of silent
// 16-bit mono samples at 22050 Hz.
func sampleWAV() []byte {
	const (
		sampleRate = 22050
		numSamples = 32
		dataSize   = numSamples * 2
	)

	buf := make([]byte, 0, 44+dataSize)
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, 36+dataSize)
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, 1) // mono
	buf = binary.LittleEndian.AppendUint32(buf, sampleRate)
	buf = binary.LittleEndian.AppendUint32(buf, sampleRate*2)
	buf = binary.LittleEndian.AppendUint16(buf, 2)
	buf = binary.LittleEndian.AppendUint16(buf, 16)
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, dataSize)
	buf = append(buf, make([]byte, dataSize)...)
	return buf
}

// Ensure MockEngine implements the Engine interface.
var _ tts.Engine = (*MockEngine)(nil)
