package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePython()
	if err := c.normalizeSadTalker(); err != nil {
		return err
	}
	if err := c.normalizeHallo2(); err != nil {
		return err
	}
	c.normalizeDispatch()
	c.normalizeTTS()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ModelsDir) == "" {
		c.Paths.ModelsDir = defaultModelsDir
	}
	if c.Paths.ModelsDir, err = expandPath(c.Paths.ModelsDir); err != nil {
		return fmt.Errorf("paths.models_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.AudioDir) == "" {
		c.Paths.AudioDir = defaultAudioDir
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePython() {
	c.Python.Binary = strings.TrimSpace(c.Python.Binary)
	if value, ok := os.LookupEnv("ATENEA_PYTHON"); ok && strings.TrimSpace(value) != "" {
		c.Python.Binary = strings.TrimSpace(value)
	}
	if c.Python.Binary == "" {
		c.Python.Binary = defaultPythonBinary
	}
}

func (c *Config) normalizeSadTalker() error {
	root, checkpoints, err := normalizeModelDirs(c.Paths.ModelsDir, "sadtalker", c.SadTalker.Root, c.SadTalker.CheckpointDir)
	if err != nil {
		return fmt.Errorf("sadtalker: %w", err)
	}
	c.SadTalker.Root = root
	c.SadTalker.CheckpointDir = checkpoints
	c.SadTalker.Entry = strings.TrimSpace(c.SadTalker.Entry)
	if c.SadTalker.Entry == "" {
		c.SadTalker.Entry = defaultSadTalkerEntry
	}
	return nil
}

func (c *Config) normalizeHallo2() error {
	root, checkpoints, err := normalizeModelDirs(c.Paths.ModelsDir, "hallo2", c.Hallo2.Root, c.Hallo2.CheckpointDir)
	if err != nil {
		return fmt.Errorf("hallo2: %w", err)
	}
	c.Hallo2.Root = root
	c.Hallo2.CheckpointDir = checkpoints
	c.Hallo2.Entry = strings.TrimSpace(c.Hallo2.Entry)
	if c.Hallo2.Entry == "" {
		c.Hallo2.Entry = defaultHallo2Entry
	}
	configPath := strings.TrimSpace(c.Hallo2.ConfigPath)
	if configPath == "" {
		configPath = defaultHallo2Config
	}
	if !filepath.IsAbs(configPath) && !strings.HasPrefix(configPath, "~") {
		configPath = filepath.Join(root, configPath)
	}
	if c.Hallo2.ConfigPath, err = expandPath(configPath); err != nil {
		return fmt.Errorf("hallo2.config_path: %w", err)
	}
	return nil
}

// normalizeModelDirs derives <models_dir>/<name> and <root>/checkpoints when
// the configured values are empty.
func normalizeModelDirs(modelsDir, name, root, checkpoints string) (string, string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = filepath.Join(modelsDir, name)
	}
	root, err := expandPath(root)
	if err != nil {
		return "", "", fmt.Errorf("root: %w", err)
	}
	checkpoints = strings.TrimSpace(checkpoints)
	if checkpoints == "" {
		checkpoints = filepath.Join(root, defaultCheckpointsName)
	}
	if checkpoints, err = expandPath(checkpoints); err != nil {
		return "", "", fmt.Errorf("checkpoint_dir: %w", err)
	}
	return root, checkpoints, nil
}

func (c *Config) normalizeDispatch() {
	c.Dispatch.Backend = strings.ToLower(strings.TrimSpace(c.Dispatch.Backend))
	if c.Dispatch.Backend == "" {
		c.Dispatch.Backend = defaultBackend
	}
	if c.Dispatch.OutputTailLines <= 0 {
		c.Dispatch.OutputTailLines = defaultOutputTailLines
	}
}

func (c *Config) normalizeTTS() {
	c.TTS.APIKey = strings.TrimSpace(c.TTS.APIKey)
	if c.TTS.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.TTS.APIKey = strings.TrimSpace(value)
		}
	}
	c.TTS.BaseURL = strings.TrimRight(strings.TrimSpace(c.TTS.BaseURL), "/")
	if c.TTS.BaseURL == "" {
		c.TTS.BaseURL = defaultTTSBaseURL
	}
	c.TTS.Model = strings.TrimSpace(c.TTS.Model)
	if c.TTS.Model == "" {
		if value, ok := os.LookupEnv("TTS_MODEL"); ok && strings.TrimSpace(value) != "" {
			c.TTS.Model = strings.TrimSpace(value)
		} else {
			c.TTS.Model = defaultTTSModel
		}
	}
	c.TTS.Voice = strings.ToLower(strings.TrimSpace(c.TTS.Voice))
	if c.TTS.Voice == "" {
		if value, ok := os.LookupEnv("TTS_VOICE"); ok && strings.TrimSpace(value) != "" {
			c.TTS.Voice = strings.ToLower(strings.TrimSpace(value))
		} else {
			c.TTS.Voice = defaultTTSVoice
		}
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
