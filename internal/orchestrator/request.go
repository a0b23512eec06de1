package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"atenea/internal/config"
	"atenea/internal/failure"
	"atenea/internal/modelargs"
)

// Request is one user-initiated generation.
type Request struct {
	ImagePath  string
	AudioPath  string
	OutputPath string
	Model      modelargs.Model

	// Optional overrides; zero values keep configured or probed settings.
	CheckpointDir string
	Device        string
	Size          int
}

// Validate checks the request before anything is probed or dispatched.
func (o *Orchestrator) Validate(req Request) error {
	if _, err := modelargs.ParseModel(string(req.Model)); err != nil {
		return failure.Wrap(failure.ErrInput, "validate", "model", "", err)
	}
	if err := requireFile("image", req.ImagePath); err != nil {
		return err
	}
	if err := requireFile("audio", req.AudioPath); err != nil {
		return err
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return failure.Wrap(failure.ErrInput, "validate", "output", "output path required", nil)
	}
	return nil
}

func requireFile(what, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return failure.Wrap(failure.ErrInput, "validate", what, what+" path required", nil)
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return failure.Wrap(failure.ErrInput, "validate", what, "", err)
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return failure.Missing(failure.ErrInput, what, expanded, "")
	}
	if info.IsDir() {
		return failure.Wrap(failure.ErrInput, "validate", what, fmt.Sprintf("%s is a directory", expanded), nil)
	}
	return nil
}

func absPath(path string) (string, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}
