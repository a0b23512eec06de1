package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Empty", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected empty command status %#v", results[2])
	}
}

func TestModelRequirements(t *testing.T) {
	reqs := ModelRequirements("/opt/venv/bin/python", "ffmpeg")
	if reqs[0].Command != "/opt/venv/bin/python" {
		t.Fatalf("unexpected python requirement %#v", reqs[0])
	}
	var optional []string
	for _, r := range reqs {
		if r.Optional {
			optional = append(optional, r.Name)
		}
	}
	if len(optional) != 1 || optional[0] != "nvidia-smi" {
		t.Fatalf("expected only nvidia-smi optional, got %v", optional)
	}
}

func TestCheckPythonModules(t *testing.T) {
	run := func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name != "python3" || args[0] != "-c" {
			t.Fatalf("unexpected invocation %s %v", name, args)
		}
		if strings.HasSuffix(args[1], "torch") {
			return nil, nil
		}
		return []byte("Traceback (most recent call last):\nModuleNotFoundError: No module named 'diffusers'\n"), errors.New("exit status 1")
	}

	results := CheckPythonModules(context.Background(), "python3", []string{"torch", "diffusers"}, run)
	if !results[0].Available {
		t.Fatalf("expected torch available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail != "ModuleNotFoundError: No module named 'diffusers'" {
		t.Fatalf("unexpected diffusers status %#v", results[1])
	}
}
