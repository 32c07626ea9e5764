package tts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		format Format
		want   string
	}{
		{name: "bare name", path: "speech", format: FormatWAV, want: "speech.wav"},
		{name: "empty defaults", path: "", format: FormatFLAC, want: "speech.flac"},
		{name: "matching extension kept", path: "hello.wav", format: FormatWAV, want: "hello.wav"},
		{name: "matching extension any case", path: "hello.WAV", format: FormatWAV, want: "hello.WAV"},
		{name: "wrong extension appended", path: "hello.txt", format: FormatOpus, want: "hello.txt.opus"},
		{name: "directories preserved", path: "out/clips/a", format: FormatMP3, want: "out/clips/a.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeOutputPath(tt.path, tt.format); got != tt.want {
				t.Errorf("NormalizeOutputPath(%q, %v) = %q, want %q", tt.path, tt.format, got, tt.want)
			}
		})
	}
}

func TestWriteAudioFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.flac")

	result := &Result{
		Audio:  []byte("fLaC\x00\x00\x00\x22payload"),
		Format: FormatFLAC,
		Engine: "test",
	}
	if err := WriteAudioFile(path, result); err != nil {
		t.Fatalf("WriteAudioFile() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("output file is empty")
	}
	if got := Sniff(data); got != FormatFLAC {
		t.Errorf("written container sniffs as %v, want flac", got)
	}

	// No temp file left behind.
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Error("temp file was not cleaned up")
	}
}

func TestWriteAudioFileCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "out.wav")

	result := &Result{Audio: []byte("RIFF\x04\x00\x00\x00WAVE"), Format: FormatWAV}
	if err := WriteAudioFile(path, result); err != nil {
		t.Fatalf("WriteAudioFile() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}

func TestWriteAudioFileEmptyAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	err := WriteAudioFile(path, &Result{Format: FormatWAV})
	if !errors.Is(err, ErrNoAudio) {
		t.Fatalf("WriteAudioFile() = %v, want ErrNoAudio", err)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("no file should be written for empty audio")
	}
}
