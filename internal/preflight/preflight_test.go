package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atenea/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckModelInstall(t *testing.T) {
	root := t.TempDir()
	missing := CheckModelInstall("SadTalker install", filepath.Join(root, "absent"), "inference.py", "bash setup.sh")
	if missing.Passed || !strings.Contains(missing.Detail, "run: bash setup.sh") {
		t.Fatalf("expected remedy for missing root, got %+v", missing)
	}

	noEntry := CheckModelInstall("SadTalker install", root, "inference.py", "")
	if noEntry.Passed || !strings.Contains(noEntry.Detail, "entry point missing") {
		t.Fatalf("expected missing entry failure, got %+v", noEntry)
	}

	if err := os.WriteFile(filepath.Join(root, "inference.py"), []byte("print()"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok := CheckModelInstall("SadTalker install", root, "inference.py", ""); !ok.Passed {
		t.Fatalf("expected pass, got %+v", ok)
	}
}

func TestCheckCheckpoints(t *testing.T) {
	dir := t.TempDir()
	if empty := CheckCheckpoints("ckpt", dir, "bash download.sh"); empty.Passed || !strings.Contains(empty.Detail, "empty") {
		t.Fatalf("expected empty failure, got %+v", empty)
	}
	if err := os.WriteFile(filepath.Join(dir, "mapping.pth.tar"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok := CheckCheckpoints("ckpt", dir, ""); !ok.Passed {
		t.Fatalf("expected pass, got %+v", ok)
	}
}

func TestCheckTTS(t *testing.T) {
	cfg := config.Default()
	if res := CheckTTS(&cfg); res.Passed {
		t.Fatal("expected failure without api key")
	}
	cfg.TTS.APIKey = "sk-test"
	if res := CheckTTS(&cfg); !res.Passed {
		t.Fatalf("expected pass with api key, got %+v", res)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReportsEveryModel(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.AudioDir = t.TempDir()
	cfg.SadTalker.Root = filepath.Join(base, "sadtalker")
	cfg.SadTalker.CheckpointDir = filepath.Join(base, "sadtalker", "checkpoints")
	cfg.Hallo2.Root = filepath.Join(base, "hallo2")
	cfg.Hallo2.CheckpointDir = filepath.Join(base, "hallo2", "checkpoints")
	if err := os.MkdirAll(cfg.SadTalker.CheckpointDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.SadTalker.Root, "inference.py"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.SadTalker.CheckpointDir, "SadTalker_V0.0.2_512.safetensors"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := RunAll(&cfg)
	passed := map[string]bool{}
	for _, r := range results {
		passed[r.Name] = r.Passed
	}
	want := map[string]bool{
		"Audio directory":       true,
		"SadTalker install":     true,
		"SadTalker checkpoints": true,
		"Hallo2 install":        false,
		"Hallo2 checkpoints":    false,
	}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d: %+v", len(want), len(results), results)
	}
	for name, ok := range want {
		if passed[name] != ok {
			t.Errorf("check %q passed=%v, want %v", name, passed[name], ok)
		}
	}
}
