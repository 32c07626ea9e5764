//go:build nocgo
// +build nocgo

package audio

import (
	"errors"

	"github.com/dgnsrekt/utter/internal/tts"
)

// Play is a stub for builds without CGO audio support.
func Play(_ []byte, _ tts.Format) error {
	return errors.New("audio playback not available in nocgo build")
}
