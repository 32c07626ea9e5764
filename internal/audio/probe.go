package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/wav"
	"github.com/tcolgate/mp3"

	"github.com/dgnsrekt/utter/internal/tts"
)

// ErrUnsupportedFormat is returned when a format cannot be probed or
// played locally.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Duration reports the play time of encoded audio. WAV and MP3 are
// supported; compressed containers without a frame-level parser in the
// dependency set return ErrUnsupportedFormat.
func Duration(data []byte, format tts.Format) (time.Duration, error) {
	switch format {
	case tts.FormatWAV:
		return wavDuration(data)
	case tts.FormatMP3:
		return mp3Duration(data)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func wavDuration(data []byte) (time.Duration, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return 0, errors.New("not a valid WAV file")
	}
	d, err := decoder.Duration()
	if err != nil {
		return 0, fmt.Errorf("unable to compute WAV duration: %w", err)
	}
	return d, nil
}

func mp3Duration(data []byte) (time.Duration, error) {
	decoder := mp3.NewDecoder(bytes.NewReader(data))

	var total time.Duration
	var frame mp3.Frame
	var skipped int
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			if err == io.EOF {
				break
			}
			return 0, fmt.Errorf("unable to parse MP3 frames: %w", err)
		}
		total += frame.Duration()
	}
	if total == 0 {
		return 0, errors.New("no MP3 frames found")
	}
	return total, nil
}

// pcmFromWAV decodes WAV data into interleaved signed 16-bit little-endian
// PCM for the player, along with the sample rate and channel count.
func pcmFromWAV(data []byte) (pcm []byte, sampleRate, channels int, err error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, 0, 0, errors.New("not a valid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("unable to decode WAV: %w", err)
	}

	sampleRate = buf.Format.SampleRate
	channels = buf.Format.NumChannels

	shift := 0
	switch buf.SourceBitDepth {
	case 8:
		shift = -8 // widen to 16 bits
	case 16:
	case 24:
		shift = 8
	case 32:
		shift = 16
	default:
		return nil, 0, 0, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, buf.SourceBitDepth)
	}

	pcm = make([]byte, 0, len(buf.Data)*2)
	for _, sample := range buf.Data {
		v := sample
		if shift > 0 {
			v >>= shift
		} else if shift < 0 {
			v <<= -shift
		}
		pcm = append(pcm, byte(v), byte(v>>8))
	}
	return pcm, sampleRate, channels, nil
}
