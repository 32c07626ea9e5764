package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# TTS engine: openai, piper, or auto (openai with piper fallback)
engine: "openai"
# audio format: wav, mp3, flac, or opus
format: "wav"
# voice to synthesize with
voice: "alloy"
# speech model to request
model: "gpt-4o-mini-tts"
# delivery instructions for the voice
# instructions: "Speak in a cheerful and positive tone."
# speech rate multiplier (0.25 to 4.0)
speed: 1.0

# Synthesis cache: identical prompts are served from disk, not the API
cache:
  enabled: true
  # cache directory (default ~/.cache/utter/audio)
  dir: ""
  # maximum disk usage in MB
  max_size: 256

# OpenAI-compatible API configuration
openai:
  # API key; OPENAI_API_KEY takes precedence when set
  # api_key: ""
  # endpoint override for LiteLLM-style gateways; OPENAI_BASE_URL also works
  # base_url: "http://localhost:4000/v1"
  # per-request timeout
  timeout: "60s"
  # request rate cap, mostly relevant for batch runs
  requests_per_minute: 30

# Piper offline engine configuration
piper:
  binary: "piper"
  # model: "/path/to/en_US-lessac-medium.onnx"
  # config: "/path/to/en_US-lessac-medium.onnx.json"
  # speaker: "0"

# Fallback behavior for the auto engine
fallback:
  # primary failures in a row before switching to piper
  max_failures: 3
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the utter config file",
	Long:    paragraph(fmt.Sprintf("\n%s the utter config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("utter config\nutter config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Utter", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
