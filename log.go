package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
)

// debugConfig is read from the environment, not the config file, so debug
// logging can be flipped on without touching configuration.
type debugConfig struct {
	Debug   bool   `env:"UTTER_DEBUG"`
	LogFile string `env:"UTTER_LOGFILE"`
}

// setupLog routes logs to stderr at warn level, or to a debug log file
// when UTTER_DEBUG and UTTER_LOGFILE are set. The returned closer must be
// called before exit.
func setupLog() (func() error, error) {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)

	cfg, err := env.ParseAs[debugConfig]()
	if err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if cfg.Debug && cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		return f.Close, nil
	}

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	return func() error { return nil }, nil
}
