//go:build !nocgo
// +build !nocgo

package audio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/dgnsrekt/utter/internal/tts"
)

// Play decodes and plays synthesized audio on the default output device,
// blocking until playback finishes. Only WAV is decodable with the
// bundled decoders.
func Play(data []byte, format tts.Format) error {
	if format != tts.FormatWAV {
		return fmt.Errorf("%w: playback supports wav only, got %s", ErrUnsupportedFormat, format)
	}

	pcm, sampleRate, channels, err := pcmFromWAV(data)
	if err != nil {
		return err
	}
	if len(pcm) == 0 {
		return fmt.Errorf("no audio samples to play")
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("unable to open audio device: %w", err)
	}
	<-ready

	log.Debug("playing", "samples", len(pcm)/2, "rate", sampleRate, "channels", channels)

	player := otoCtx.NewPlayer(bytes.NewReader(pcm))
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Close()
}
