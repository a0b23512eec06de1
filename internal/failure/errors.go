package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInput         = errors.New("input error")
	ErrCheckpoint    = errors.New("missing model files")
	ErrInstall       = errors.New("model not installed")
	ErrOutOfMemory   = errors.New("accelerator out of memory")
	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// MissingError reports a required file or directory that does not exist.
type MissingError struct {
	Marker error
	What   string
	Path   string
	Remedy string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.What, e.Path)
}

func (e *MissingError) Unwrap() error { return e.Marker }

// Missing returns a MissingError tagged with marker.
func Missing(marker error, what, path, remedy string) error {
	return &MissingError{Marker: marker, What: what, Path: path, Remedy: remedy}
}

// OutputError carries the trailing output lines of a failed model process.
type OutputError struct {
	ExitCode int
	Tail     []string
	Err      error
}

func (e *OutputError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("%v (exit code %d)", e.Err, e.ExitCode)
	}
	return e.Err.Error()
}

func (e *OutputError) Unwrap() error { return e.Err }

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "generation failure"
	}
	return strings.Join(parts, ": ")
}
