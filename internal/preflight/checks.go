package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"atenea/internal/config"
	"atenea/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckModelInstall verifies that a model root exists and contains its entry script.
func CheckModelInstall(name, root, entry, remedy string) Result {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return Result{Name: name, Detail: withRemedy(fmt.Sprintf("%s (not installed)", root), remedy)}
	}
	script := entry
	if !filepath.IsAbs(script) {
		script = filepath.Join(root, entry)
	}
	if _, err := os.Stat(script); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (entry point missing)", script)}
	}
	if err := unix.Access(root, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", root, err)}
	}
	return Result{Name: name, Passed: true, Detail: root}
}

// CheckCheckpoints verifies that a checkpoint directory exists and is not empty.
func CheckCheckpoints(name, dir, remedy string) Result {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{Name: name, Detail: withRemedy(fmt.Sprintf("%s (missing)", dir), remedy)}
	}
	if len(entries) == 0 {
		return Result{Name: name, Detail: withRemedy(fmt.Sprintf("%s (empty)", dir), remedy)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d entries)", dir, len(entries))}
}

// CheckSystemDeps evaluates the binaries dispatch needs for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.ModelRequirements(cfg.PythonBinary(), cfg.FFmpegBinary()))
}

// CheckTTS reports whether narrate can reach a speech endpoint. No request is made.
func CheckTTS(cfg *config.Config) Result {
	const name = "Speech synthesis"
	if strings.TrimSpace(cfg.TTS.APIKey) == "" {
		return Result{Name: name, Detail: "OPENAI_API_KEY not set (narrate unavailable)"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s voice=%s via %s", cfg.TTS.Model, cfg.TTS.Voice, cfg.TTS.BaseURL)}
}

func withRemedy(detail, remedy string) string {
	if remedy == "" {
		return detail
	}
	return detail + "; run: " + remedy
}
