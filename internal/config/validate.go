package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePython(); err != nil {
		return err
	}
	if err := c.validateModels(); err != nil {
		return err
	}
	if err := c.validateDispatch(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePython() error {
	if strings.TrimSpace(c.Python.Binary) == "" {
		return errors.New("python.binary must be set")
	}
	return nil
}

func (c *Config) validateModels() error {
	if strings.TrimSpace(c.SadTalker.Entry) == "" {
		return errors.New("sadtalker.entry must be set")
	}
	if strings.TrimSpace(c.Hallo2.Entry) == "" {
		return errors.New("hallo2.entry must be set")
	}
	if c.SadTalker.Root != "" && c.SadTalker.Root == c.Hallo2.Root {
		return fmt.Errorf("sadtalker.root and hallo2.root must differ (both %s)", c.SadTalker.Root)
	}
	return nil
}

func (c *Config) validateDispatch() error {
	switch c.Dispatch.Backend {
	case BackendProcess, BackendInProcess:
	default:
		return fmt.Errorf("dispatch.backend must be %q or %q, got %q", BackendProcess, BackendInProcess, c.Dispatch.Backend)
	}
	if c.Dispatch.OutputTailLines <= 0 {
		return errors.New("dispatch.output_tail_lines must be positive")
	}
	return nil
}

func (c *Config) validateTTS() error {
	if c.TTS.TimeoutSeconds <= 0 {
		return errors.New("tts.timeout_seconds must be positive")
	}
	if !strings.HasPrefix(c.TTS.BaseURL, "http://") && !strings.HasPrefix(c.TTS.BaseURL, "https://") {
		return fmt.Errorf("tts.base_url must be an http(s) URL, got %q", c.TTS.BaseURL)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
