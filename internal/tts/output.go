package tts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// NormalizeOutputPath ensures path carries the extension for the requested
// format. A bare name like "speech" becomes "speech.wav"; an existing
// matching extension (any case) is left alone.
func NormalizeOutputPath(path string, format Format) string {
	if path == "" {
		path = "speech"
	}
	if strings.EqualFold(filepath.Ext(path), format.Ext()) {
		return path
	}
	return path + format.Ext()
}

// WriteAudioFile writes encoded audio to path via a temp file and rename,
// so a failed write never leaves a truncated output behind. The container
// is sniffed and a mismatch against the requested format is logged as a
// warning; the service owns encoding, we only verify.
func WriteAudioFile(path string, result *Result) error {
	if len(result.Audio) == 0 {
		return ErrNoAudio
	}

	if got := Sniff(result.Audio); got != FormatUnknown && got != result.Format {
		log.Warn("container does not match requested format",
			"requested", result.Format, "detected", got, "path", path)
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create output directory: %w", err)
		}
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}

	_, werr := f.Write(result.Audio)
	cerr := f.Close()
	if werr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("unable to write audio: %w", werr)
	}
	if cerr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("unable to close output file: %w", cerr)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("unable to move output into place: %w", err)
	}
	return nil
}
