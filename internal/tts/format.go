package tts

import (
	"bytes"
	"fmt"
	"strings"
)

// Format identifies an audio container/codec.
type Format int

const (
	// FormatUnknown is the zero value; requests default to WAV.
	FormatUnknown Format = iota

	// FormatWAV is RIFF/WAVE PCM.
	FormatWAV

	// FormatMP3 is MPEG layer III.
	FormatMP3

	// FormatFLAC is the free lossless audio codec.
	FormatFLAC

	// FormatOpus is Opus in an Ogg container.
	FormatOpus
)

// Formats lists every synthesizable format.
var Formats = []Format{FormatWAV, FormatMP3, FormatFLAC, FormatOpus}

// String returns the canonical lowercase name of the format.
func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatMP3:
		return "mp3"
	case FormatFLAC:
		return "flac"
	case FormatOpus:
		return "opus"
	default:
		return "unknown"
	}
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// MIME returns the MIME type for the format.
func (f Format) MIME() string {
	switch f {
	case FormatWAV:
		return "audio/wav"
	case FormatMP3:
		return "audio/mpeg"
	case FormatFLAC:
		return "audio/flac"
	case FormatOpus:
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat parses a format name. Matching is case-insensitive and
// accepts a leading dot so file extensions parse directly.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "wav", "wave":
		return FormatWAV, nil
	case "mp3":
		return FormatMP3, nil
	case "flac":
		return FormatFLAC, nil
	case "opus", "ogg":
		return FormatOpus, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q (supported: wav, mp3, flac, opus)", ErrInvalidFormat, s)
	}
}

// Container magic. Ogg carries Opus here since synthesis never emits Vorbis.
var (
	riffMagic = []byte("RIFF")
	waveMagic = []byte("WAVE")
	flacMagic = []byte("fLaC")
	oggMagic  = []byte("OggS")
	id3Magic  = []byte("ID3")
)

// Sniff inspects the leading bytes of audio data and reports the container
// format, or FormatUnknown if it matches none of the known magics.
func Sniff(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}
	switch {
	case bytes.HasPrefix(data, riffMagic):
		if len(data) >= 12 && bytes.Equal(data[8:12], waveMagic) {
			return FormatWAV
		}
		return FormatUnknown
	case bytes.HasPrefix(data, flacMagic):
		return FormatFLAC
	case bytes.HasPrefix(data, oggMagic):
		return FormatOpus
	case bytes.HasPrefix(data, id3Magic):
		return FormatMP3
	case data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// Bare MPEG frame sync, no ID3 tag.
		return FormatMP3
	default:
		return FormatUnknown
	}
}
