package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"atenea/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Model roots point inside the temp tree but are not created unless
// WithInstalledModels is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ModelsDir = filepath.Join(base, "models")
	cfgVal.Paths.AudioDir = filepath.Join(base, "audio")
	cfgVal.Paths.LogDir = ""
	cfgVal.SadTalker.Root = filepath.Join(base, "models", "sadtalker")
	cfgVal.SadTalker.CheckpointDir = filepath.Join(base, "models", "sadtalker", "checkpoints")
	cfgVal.Hallo2.Root = filepath.Join(base, "models", "hallo2")
	cfgVal.Hallo2.CheckpointDir = filepath.Join(base, "models", "hallo2", "checkpoints")
	cfgVal.Hallo2.ConfigPath = filepath.Join(base, "models", "hallo2", "configs", "inference", "default.yaml")
	cfgVal.TTS.Model = "tts-1"
	cfgVal.TTS.Voice = "nova"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithInstalledModels creates the model roots, entry scripts and a placeholder
// checkpoint for each named model ("sadtalker", "hallo2"). With no names both
// models are installed.
func WithInstalledModels(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"sadtalker", "hallo2"}
		}
		for _, name := range names {
			var root, entry, checkpoints string
			switch name {
			case "sadtalker":
				root, entry, checkpoints = b.cfg.SadTalker.Root, b.cfg.SadTalker.Entry, b.cfg.SadTalker.CheckpointDir
			case "hallo2":
				root, entry, checkpoints = b.cfg.Hallo2.Root, b.cfg.Hallo2.Entry, b.cfg.Hallo2.CheckpointDir
			default:
				b.t.Fatalf("unknown model %q", name)
			}
			WriteFile(b.t, filepath.Join(root, entry), 1)
			WriteFile(b.t, filepath.Join(checkpoints, "weights.safetensors"), 16)
		}
	}
}

// WithPython sets the interpreter used for process dispatch.
func WithPython(binary string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Python.Binary = binary
	}
}

// WithBackend selects the dispatch backend.
func WithBackend(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dispatch.Backend = name
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"python3", "ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ModelsDir)
}
