package engines

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewPiperEngineRequiresModel(t *testing.T) {
	if _, err := NewPiperEngine(PiperConfig{}); err == nil {
		t.Fatal("expected error for missing model path")
	}

	if _, err := NewPiperEngine(PiperConfig{ModelPath: "/nonexistent/voice.onnx"}); err == nil {
		t.Fatal("expected error for missing model file")
	}
}

func TestNewPiperEngineDefaults(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "voice.onnx")
	if err := os.WriteFile(modelPath, []byte("model"), 0o644); err != nil {
		t.Fatal(err)
	}

	engine, err := NewPiperEngine(PiperConfig{ModelPath: modelPath})
	if err != nil {
		t.Fatalf("NewPiperEngine() error: %v", err)
	}

	if engine.binary != "piper" {
		t.Errorf("binary = %q, want piper", engine.binary)
	}
	if want := filepath.Join(dir, "voice.json"); engine.configPath != want {
		t.Errorf("configPath = %q, want %q", engine.configPath, want)
	}
	if engine.timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", engine.timeout)
	}

	info := engine.Info()
	if info.Name != "piper" || info.IsOnline {
		t.Errorf("Info() = %+v", info)
	}
}

func TestPiperEngineValidateMissingBinary(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "voice.onnx")
	if err := os.WriteFile(modelPath, []byte("model"), 0o644); err != nil {
		t.Fatal(err)
	}

	engine, err := NewPiperEngine(PiperConfig{
		ModelPath: modelPath,
		Binary:    "definitely-not-a-real-binary-name",
	})
	if err != nil {
		t.Fatalf("NewPiperEngine() error: %v", err)
	}
	if err := engine.Validate(); err == nil {
		t.Fatal("Validate() should fail when the binary is not on PATH")
	}
}
