package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directories owned by the orchestrator itself.
type Paths struct {
	ModelsDir string `toml:"models_dir"`
	AudioDir  string `toml:"audio_dir"`
	LogDir    string `toml:"log_dir"`
}

// Python selects the interpreter used to launch model entry points.
type Python struct {
	Binary string `toml:"binary"`
}

// SadTalker locates the GAN-based model checkout.
type SadTalker struct {
	Root          string `toml:"root"`
	CheckpointDir string `toml:"checkpoint_dir"`
	Entry         string `toml:"entry"`
}

// Hallo2 locates the diffusion-based model checkout.
type Hallo2 struct {
	Root          string `toml:"root"`
	CheckpointDir string `toml:"checkpoint_dir"`
	Entry         string `toml:"entry"`
	// ConfigPath is the inference YAML the model ships with. When the file is
	// missing a default configuration is synthesized.
	ConfigPath string `toml:"config_path"`
}

// Dispatch controls how model entry points are invoked.
type Dispatch struct {
	// Backend is "process" (child interpreter, streamed output) or "inprocess"
	// (a registered Go entry point).
	Backend string `toml:"backend"`
	// OutputTailLines bounds how many trailing output lines are kept for
	// failure diagnostics.
	OutputTailLines int `toml:"output_tail_lines"`
}

// TTS contains configuration for speech synthesis used by the narrate command.
type TTS struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Voice          string `toml:"voice"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Atenea.
//
// Configuration sections by subsystem:
//   - Paths: orchestrator-owned directories (models, synthesized audio, logs)
//   - Python: interpreter used for child-process dispatch
//   - SadTalker / Hallo2: model roots, checkpoints and entry points
//   - Dispatch: backend selection and failure tail size
//   - TTS: speech synthesis for narrate
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Python    Python    `toml:"python"`
	SadTalker SadTalker `toml:"sadtalker"`
	Hallo2    Hallo2    `toml:"hallo2"`
	Dispatch  Dispatch  `toml:"dispatch"`
	TTS       TTS       `toml:"tts"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/atenea/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/atenea/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("atenea.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates directories the orchestrator writes into. Model
// roots are never created here; a missing root means the model is not
// installed.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.AudioDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PythonBinary returns the interpreter used for child-process dispatch.
func (c *Config) PythonBinary() string {
	return c.Python.Binary
}

// FFmpegBinary returns the ffmpeg executable name reported by doctor.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
