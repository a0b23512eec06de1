package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atenea/internal/config"
	"atenea/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("CUDA_VISIBLE_DEVICES", "")
	t.Setenv("USE_CONSERVATIVE", "")
	t.Setenv("ATENEA_PYTHON", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(homeDir, ".config", "atenea", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
models_dir = %q
audio_dir = %q

[python]
binary = %q

[sadtalker]
root = %q
checkpoint_dir = %q
entry = %q

[hallo2]
root = %q
checkpoint_dir = %q
entry = %q
config_path = %q

[dispatch]
backend = %q

[tts]
api_key = %q

[logging]
level = "error"
`,
		cfg.Paths.ModelsDir,
		cfg.Paths.AudioDir,
		cfg.Python.Binary,
		cfg.SadTalker.Root,
		cfg.SadTalker.CheckpointDir,
		cfg.SadTalker.Entry,
		cfg.Hallo2.Root,
		cfg.Hallo2.CheckpointDir,
		cfg.Hallo2.Entry,
		cfg.Hallo2.ConfigPath,
		cfg.Dispatch.Backend,
		cfg.TTS.APIKey,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
