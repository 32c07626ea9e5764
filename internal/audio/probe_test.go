package audio

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/dgnsrekt/utter/internal/tts"
)

// buildWAV assembles a minimal RIFF/WAVE file holding the given 16-bit
// mono samples.
func buildWAV(sampleRate int, samples []int16) []byte {
	dataSize := len(samples) * 2

	buf := make([]byte, 0, 44+dataSize)
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+dataSize))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, 1) // mono
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate*2))
	buf = binary.LittleEndian.AppendUint16(buf, 2)
	buf = binary.LittleEndian.AppendUint16(buf, 16)
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dataSize))
	for _, s := range samples {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(s))
	}
	return buf
}

func TestDurationWAV(t *testing.T) {
	// 2205 samples at 22050 Hz is exactly 100ms.
	data := buildWAV(22050, make([]int16, 2205))

	d, err := Duration(data, tts.FormatWAV)
	if err != nil {
		t.Fatalf("Duration() error = %v", err)
	}

	want := 100 * time.Millisecond
	if diff := d - want; diff < -time.Millisecond || diff > time.Millisecond {
		t.Errorf("Duration() = %v, want about %v", d, want)
	}
}

func TestDurationUnsupportedFormats(t *testing.T) {
	for _, format := range []tts.Format{tts.FormatFLAC, tts.FormatOpus} {
		_, err := Duration([]byte("whatever"), format)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Duration(%s) error = %v, want ErrUnsupportedFormat", format, err)
		}
	}
}

func TestDurationInvalidWAV(t *testing.T) {
	if _, err := Duration([]byte("not a riff file at all"), tts.FormatWAV); err == nil {
		t.Error("Duration() on garbage WAV data should fail")
	}
}

func TestDurationMP3NoFrames(t *testing.T) {
	if _, err := Duration(make([]byte, 64), tts.FormatMP3); err == nil {
		t.Error("Duration() on frameless MP3 data should fail")
	}
}

func TestPCMFromWAV(t *testing.T) {
	samples := []int16{0, 100, -100, 32767, -32768, 42}
	data := buildWAV(22050, samples)

	pcm, sampleRate, channels, err := pcmFromWAV(data)
	if err != nil {
		t.Fatalf("pcmFromWAV() error = %v", err)
	}
	if sampleRate != 22050 {
		t.Errorf("sample rate = %d, want 22050", sampleRate)
	}
	if channels != 1 {
		t.Errorf("channels = %d, want 1", channels)
	}
	if len(pcm) != len(samples)*2 {
		t.Fatalf("pcm length = %d, want %d", len(pcm), len(samples)*2)
	}
	for i, want := range samples {
		got := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		if got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
}

func TestPCMFromWAVInvalid(t *testing.T) {
	if _, _, _, err := pcmFromWAV([]byte("garbage")); err == nil {
		t.Error("pcmFromWAV() on garbage data should fail")
	}
}
