package tts

import (
	"fmt"
	"strings"
)

// EngineNames lists the selectable engines. "auto" picks openai with a
// piper fallback when piper is installed.
var EngineNames = []string{"openai", "piper", "auto"}

// ValidateEngineSelection checks that name identifies a known engine.
// The empty string is rejected; callers should apply their default first.
func ValidateEngineSelection(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, v := range EngineNames {
		if name == v {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (supported: %s)", ErrInvalidEngine, name, strings.Join(EngineNames, ", "))
}

// ValidateRequest checks request fields common to all engines.
func ValidateRequest(req Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return ErrEmptyText
	}
	if len(req.Text) > MaxTextSize {
		return fmt.Errorf("%w: %d characters (max %d)", ErrTextTooLong, len(req.Text), MaxTextSize)
	}
	if req.Format == FormatUnknown {
		return fmt.Errorf("%w: format not set", ErrInvalidFormat)
	}
	if req.Speed != 0 && (req.Speed < 0.25 || req.Speed > 4.0) {
		return fmt.Errorf("%w, got %.2f", ErrInvalidSpeed, req.Speed)
	}
	return nil
}
