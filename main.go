// Package main provides the entry point for the utter CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	homedir "github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/utter/internal/audio"
	"github.com/dgnsrekt/utter/internal/cache"
	"github.com/dgnsrekt/utter/internal/tts"
	"github.com/dgnsrekt/utter/internal/tts/engines"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile   string
	outputPath   string
	formatName   string
	voice        string
	model        string
	instructions string
	speed        float64
	engineName   string
	playAfter    bool
	noCache      bool

	// resolved during validation
	outputFormat tts.Format

	rootCmd = &cobra.Command{
		Use:   "utter [TEXT]",
		Short: "Turn text into speech from the command line",
		Long: paragraph(
			fmt.Sprintf("\nSynthesize speech from text, %s. Reads the prompt from the argument or stdin and writes an audio file in the requested format.", keyword("right from your terminal")),
		),
		Example:          "  utter 'Hello world'\n  utter 'Hello world' -o hello -f flac\n  echo 'Hello world' | utter -f opus",
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(_ *cobra.Command) error {
	// grab config values from Viper
	engineName = viper.GetString("engine")
	formatName = viper.GetString("format")
	voice = viper.GetString("voice")
	model = viper.GetString("model")
	instructions = viper.GetString("instructions")
	speed = viper.GetFloat64("speed")

	if engineName == "" {
		engineName = "openai"
	}
	if err := tts.ValidateEngineSelection(engineName); err != nil {
		return err
	}

	var err error
	outputFormat, err = tts.ParseFormat(formatName)
	if err != nil {
		return err
	}

	if speed != 0 && (speed < 0.25 || speed > 4.0) {
		return fmt.Errorf("%w, got %.2f", tts.ErrInvalidSpeed, speed)
	}

	if outputPath != "" {
		outputPath, err = homedir.Expand(outputPath)
		if err != nil {
			return fmt.Errorf("unable to expand output path: %w", err)
		}
	}

	if engineName == "piper" && viper.GetString("piper.model") == "" {
		return errors.New("piper engine requires piper.model to be configured")
	}

	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// textFromInput resolves the prompt from the argument, or stdin when the
// argument is "-" or input is piped in.
func textFromInput(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}

	fromPipe, err := stdinIsPipe()
	if err != nil {
		return "", err
	}
	if (len(args) == 1 && args[0] == "-") || fromPipe {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	return "", errors.New("missing text to synthesize (pass an argument or pipe stdin)")
}

func execute(_ *cobra.Command, args []string) error {
	text, err := textFromInput(args)
	if err != nil {
		return err
	}

	engine, cacheManager, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeQuietly(engine, cacheManager)

	if err := engine.Validate(); err != nil {
		return err
	}

	req := tts.Request{
		Text:         text,
		Format:       outputFormat,
		Voice:        voice,
		Model:        model,
		Instructions: instructions,
		Speed:        speed,
	}
	if req.Instructions == "" {
		req.Instructions = tts.DefaultInstructions
	}
	req.ApplyDefaults()

	if err := tts.ValidateRequest(req); err != nil {
		return err
	}

	result, err := engine.Synthesize(context.Background(), req)
	if err != nil {
		return err
	}

	outPath := tts.NormalizeOutputPath(outputPath, req.Format)
	if err := tts.WriteAudioFile(outPath, result); err != nil {
		return err
	}

	printSaved(outPath, result)

	if playAfter {
		if err := audio.Play(result.Audio, result.Format); err != nil {
			return fmt.Errorf("saved %s, but playback failed: %w", outPath, err)
		}
	}

	return nil
}

func printSaved(path string, result *tts.Result) {
	detail := humanize.Bytes(uint64(len(result.Audio)))
	if d, err := audio.Duration(result.Audio, result.Format); err == nil {
		detail = fmt.Sprintf("%s, %s", detail, d.Round(100*time.Millisecond))
	}
	if result.Cached {
		detail += ", cached"
	}
	fmt.Printf("%s Audio saved to %s (%s)\n", checkmark(), keyword(path), detail)
}

// buildEngine assembles the configured engine and its shared cache.
// The cache may be nil when disabled.
func buildEngine() (tts.Engine, *cache.Manager, error) {
	var cacheManager *cache.Manager
	if viper.GetBool("cache.enabled") && !noCache {
		cfg := cache.DefaultConfig()
		if dir := viper.GetString("cache.dir"); dir != "" {
			expanded, err := homedir.Expand(dir)
			if err != nil {
				return nil, nil, fmt.Errorf("unable to expand cache dir: %w", err)
			}
			cfg.DiskPath = expanded
		}
		if maxMB := viper.GetInt64("cache.max_size"); maxMB > 0 {
			cfg.DiskCapacity = maxMB * 1024 * 1024
		}
		var err error
		cacheManager, err = cache.NewManager(cfg)
		if err != nil {
			// The cache is an optimization; synthesis works without it.
			log.Warn("cache disabled", "err", err)
			cacheManager = nil
		}
	}

	engine, err := engines.New(engineName, engines.Options{
		APIKey:            viper.GetString("openai.api_key"),
		BaseURL:           viper.GetString("openai.base_url"),
		Timeout:           viper.GetDuration("openai.timeout"),
		RequestsPerMinute: viper.GetInt("openai.requests_per_minute"),
		PiperBinary:       viper.GetString("piper.binary"),
		PiperModel:        viper.GetString("piper.model"),
		PiperConfig:       viper.GetString("piper.config"),
		PiperSpeaker:      viper.GetString("piper.speaker"),
		MaxFailures:       viper.GetInt("fallback.max_failures"),
		Cache:             cacheManager,
	})
	if err != nil {
		if cacheManager != nil {
			_ = cacheManager.Close()
		}
		return nil, nil, err
	}
	return engine, cacheManager, nil
}

func closeQuietly(engine tts.Engine, cacheManager *cache.Manager) {
	if err := engine.Close(); err != nil {
		log.Debug("engine close failed", "err", err)
	}
	if cacheManager != nil {
		if err := cacheManager.Close(); err != nil {
			log.Debug("cache close failed", "err", err)
		}
	}
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "speech", "output file name; the format extension is appended when missing")
	rootCmd.Flags().StringVarP(&formatName, "format", "f", "wav", "audio format: wav, mp3, flac, or opus")
	rootCmd.Flags().StringVar(&voice, "voice", "", "voice to synthesize with")
	rootCmd.Flags().StringVar(&model, "model", "", "speech model to request")
	rootCmd.Flags().StringVar(&instructions, "instructions", "", "delivery instructions for the voice")
	rootCmd.Flags().Float64Var(&speed, "speed", 0, "speech rate multiplier (0.25 to 4.0)")
	rootCmd.Flags().StringVar(&engineName, "engine", "", "TTS engine: openai, piper, or auto")
	rootCmd.Flags().BoolVar(&playAfter, "play", false, "play the audio after saving it")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the synthesis cache")

	// Config bindings
	_ = viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("model", rootCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("instructions", rootCmd.Flags().Lookup("instructions"))
	_ = viper.BindPFlag("speed", rootCmd.Flags().Lookup("speed"))
	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))

	viper.SetDefault("engine", "openai")
	viper.SetDefault("format", "wav")
	viper.SetDefault("voice", tts.DefaultVoice)
	viper.SetDefault("model", tts.DefaultModel)
	viper.SetDefault("speed", tts.DefaultSpeed)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.max_size", 256)

	viper.SetDefault("openai.base_url", "")
	viper.SetDefault("openai.timeout", 60*time.Second)
	viper.SetDefault("openai.requests_per_minute", 30)

	viper.SetDefault("piper.binary", "piper")
	viper.SetDefault("piper.model", "")
	viper.SetDefault("piper.config", "")
	viper.SetDefault("piper.speaker", "")

	viper.SetDefault("fallback.max_failures", 3)

	rootCmd.AddCommand(batchCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "utter")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "utter")}, dirs...)
	}

	if c := os.Getenv("UTTER_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("utter")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("utter")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "utter.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
