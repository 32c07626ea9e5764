package tts

import (
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "wav", input: "wav", want: FormatWAV},
		{name: "wave alias", input: "wave", want: FormatWAV},
		{name: "mp3", input: "mp3", want: FormatMP3},
		{name: "flac", input: "flac", want: FormatFLAC},
		{name: "opus", input: "opus", want: FormatOpus},
		{name: "ogg alias", input: "ogg", want: FormatOpus},
		{name: "uppercase", input: "FLAC", want: FormatFLAC},
		{name: "extension", input: ".wav", want: FormatWAV},
		{name: "unknown", input: "aiff", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFormat(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatExt(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatWAV, ".wav"},
		{FormatMP3, ".mp3"},
		{FormatFLAC, ".flac"},
		{FormatOpus, ".opus"},
	}

	for _, tt := range tests {
		if got := tt.format.Ext(); got != tt.want {
			t.Errorf("%v.Ext() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormatMIME(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatWAV, "audio/wav"},
		{FormatMP3, "audio/mpeg"},
		{FormatFLAC, "audio/flac"},
		{FormatOpus, "audio/ogg"},
		{FormatUnknown, "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := tt.format.MIME(); got != tt.want {
			t.Errorf("%v.MIME() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{
			name: "wav",
			data: []byte("RIFF\x24\x00\x00\x00WAVEfmt "),
			want: FormatWAV,
		},
		{
			name: "riff without wave",
			data: []byte("RIFF\x24\x00\x00\x00AVI LIST"),
			want: FormatUnknown,
		},
		{
			name: "flac",
			data: []byte("fLaC\x00\x00\x00\x22"),
			want: FormatFLAC,
		},
		{
			name: "ogg opus",
			data: []byte("OggS\x00\x02\x00\x00"),
			want: FormatOpus,
		},
		{
			name: "mp3 with id3 tag",
			data: []byte("ID3\x04\x00\x00\x00"),
			want: FormatMP3,
		},
		{
			name: "mp3 bare frame sync",
			data: []byte{0xFF, 0xFB, 0x90, 0x00},
			want: FormatMP3,
		},
		{
			name: "garbage",
			data: []byte("hello world"),
			want: FormatUnknown,
		},
		{
			name: "too short",
			data: []byte("RI"),
			want: FormatUnknown,
		},
		{
			name: "empty",
			data: nil,
			want: FormatUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.want {
				t.Errorf("Sniff() = %v, want %v", got, tt.want)
			}
		})
	}
}
