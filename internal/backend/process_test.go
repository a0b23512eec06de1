package backend_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atenea/internal/backend"
	"atenea/internal/failure"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
}

func minimalEnv(extra ...string) func() []string {
	return func() []string {
		return append([]string{"PATH=" + os.Getenv("PATH")}, extra...)
	}
}

func TestProcessRunsInWorkDirAndStreams(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "inference.sh", "pwd -P\necho \"torch=$TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD\"\necho \"args=$*\"\necho warn >&2\n")

	var stdout, stderr bytes.Buffer
	p := backend.NewProcess("/bin/sh", backend.WithEnviron(minimalEnv()))
	err := p.Run(context.Background(), backend.Invocation{
		Model:   "sadtalker",
		WorkDir: dir,
		Entry:   "inference.sh",
		Args:    []string{"--size", "384"},
		Env:     []string{"TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1"},
		Stdout:  &stdout,
		Stderr:  &stderr,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("resolve temp dir: %v", err)
	}
	out := stdout.String()
	for _, want := range []string{resolved, "torch=1", "args=--size 384"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in stdout %q", want, out)
		}
	}
	if strings.TrimSpace(stderr.String()) != "warn" {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}

func TestProcessKeepsExistingEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "env.sh", "echo \"alloc=$PYTORCH_CUDA_ALLOC_CONF\"\n")

	var stdout bytes.Buffer
	p := backend.NewProcess("/bin/sh", backend.WithEnviron(minimalEnv("PYTORCH_CUDA_ALLOC_CONF=max_split_size_mb:64")))
	err := p.Run(context.Background(), backend.Invocation{
		WorkDir: dir,
		Entry:   "env.sh",
		Env:     []string{"PYTORCH_CUDA_ALLOC_CONF=expandable_segments:True"},
		Stdout:  &stdout,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(stdout.String(), "alloc=max_split_size_mb:64") {
		t.Fatalf("inherited value should win, got %q", stdout.String())
	}
}

func TestProcessFailureCarriesTail(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "fail.sh", "echo step one >&2\necho 'Traceback (most recent call last):' >&2\necho 'RuntimeError: CUDA out of memory' >&2\nexit 3\n")

	p := backend.NewProcess("/bin/sh", backend.WithEnviron(minimalEnv()), backend.WithTailLines(2))
	err := p.Run(context.Background(), backend.Invocation{Model: "sadtalker", WorkDir: dir, Entry: "fail.sh"})
	if err == nil {
		t.Fatal("expected error")
	}
	var out *failure.OutputError
	if !errors.As(err, &out) {
		t.Fatalf("expected OutputError, got %T: %v", err, err)
	}
	if out.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", out.ExitCode)
	}
	if len(out.Tail) != 2 || out.Tail[1] != "RuntimeError: CUDA out of memory" {
		t.Fatalf("unexpected tail %v", out.Tail)
	}
	if !errors.Is(err, failure.ErrExternalTool) {
		t.Fatalf("expected external tool marker: %v", err)
	}
}

func TestProcessMissingInterpreter(t *testing.T) {
	p := backend.NewProcess(filepath.Join(t.TempDir(), "no-python"), backend.WithEnviron(minimalEnv()))
	err := p.Run(context.Background(), backend.Invocation{Model: "hallo2", WorkDir: t.TempDir(), Entry: "x.py"})
	if !errors.Is(err, failure.ErrInstall) {
		t.Fatalf("expected install marker, got %v", err)
	}
}

func TestProcessCanceled(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "sleep.sh", "sleep 30\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := backend.NewProcess("/bin/sh", backend.WithEnviron(minimalEnv()))
	err := p.Run(ctx, backend.Invocation{WorkDir: dir, Entry: "sleep.sh"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}
}
