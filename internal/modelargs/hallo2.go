package modelargs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Hallo2Config is the inference YAML handed to Hallo2. Keys the orchestrator
// does not manage are preserved in Extra.
type Hallo2Config struct {
	SourceImage       string         `yaml:"source_image"`
	DrivingAudio      string         `yaml:"driving_audio"`
	Output            string         `yaml:"output"`
	CheckpointDir     string         `yaml:"checkpoint_dir"`
	Device            string         `yaml:"device"`
	Width             int            `yaml:"width"`
	Height            int            `yaml:"height"`
	FPS               int            `yaml:"fps,omitempty"`
	Seed              int            `yaml:"seed,omitempty"`
	NumInferenceSteps int            `yaml:"num_inference_steps,omitempty"`
	GuidanceScale     float64        `yaml:"guidance_scale,omitempty"`
	Extra             map[string]any `yaml:",inline"`

	// Synthesized is true when no default file existed.
	Synthesized bool `yaml:"-"`
}

// DefaultHallo2Config is used when the model ships no default.yaml.
func DefaultHallo2Config() Hallo2Config {
	return Hallo2Config{
		FPS:               25,
		Seed:              42,
		NumInferenceSteps: 40,
		GuidanceScale:     3.5,
		Synthesized:       true,
	}
}

// LoadHallo2Config reads the default inference config at path, falling back to
// DefaultHallo2Config when the file is absent, and applies the request inputs.
func LoadHallo2Config(path string, in Inputs) (Hallo2Config, error) {
	cfg := DefaultHallo2Config()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Hallo2Config{}, fmt.Errorf("read hallo2 config: %w", err)
	default:
		cfg = Hallo2Config{}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Hallo2Config{}, fmt.Errorf("parse hallo2 config %s: %w", path, err)
		}
	}
	cfg.apply(in)
	return cfg, nil
}

func (c *Hallo2Config) apply(in Inputs) {
	c.SourceImage = in.ImagePath
	c.DrivingAudio = in.AudioPath
	c.Output = in.OutputPath
	c.CheckpointDir = in.CheckpointDir
	c.Device = in.Device
	c.Width = in.Size
	c.Height = in.Size
}

// Marshal renders the config as YAML.
func (c Hallo2Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode hallo2 config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode hallo2 config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile stores the merged config where the child process can read it.
func (c Hallo2Config) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write hallo2 config: %w", err)
	}
	return nil
}

// Hallo2CommandLine returns the entry point arguments for a written config.
func Hallo2CommandLine(configFile string) []string {
	return []string{"--config", configFile}
}
