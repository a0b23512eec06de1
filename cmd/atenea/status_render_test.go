package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"atenea/internal/deps"
	"atenea/internal/preflight"
	"atenea/internal/testsupport"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Python", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Python:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Python", statusOK, "/usr/bin/python3", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	lines, missing := dependencyLines([]deps.Status{
		{Name: "Python", Available: true, Command: "/usr/bin/python3"},
		{Name: "FFmpeg", Detail: `binary "ffmpeg" not found`},
		{Name: "nvidia-smi", Optional: true},
	}, false)
	if missing != 1 {
		t.Fatalf("expected 1 missing required dependency, got %d", missing)
	}
	if !strings.Contains(lines[0], "[OK] /usr/bin/python3") {
		t.Fatalf("unexpected ok line %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] binary \"ffmpeg\" not found") {
		t.Fatalf("unexpected error line %q", lines[1])
	}
	if !strings.Contains(lines[2], "[WARN] not available") {
		t.Fatalf("unexpected optional line %q", lines[2])
	}
}

func TestCheckLinesWarnOnly(t *testing.T) {
	results := []preflight.Result{{Name: "Hallo2 install", Detail: "missing"}, {Name: "Audio directory", Passed: true}}
	lines, failed := checkLines(results, true, false)
	if failed != 1 || !strings.Contains(lines[0], "[WARN]") {
		t.Fatalf("expected one warning, got %d %q", failed, lines)
	}
	lines, _ = checkLines(results, false, false)
	if !strings.Contains(lines[0], "[ERROR]") {
		t.Fatalf("expected error when warnOnly is false, got %q", lines[0])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestDoctorReportsSections(t *testing.T) {
	env := setupCLITestEnv(t,
		testsupport.WithInstalledModels("sadtalker"),
		testsupport.WithStubbedBinaries("python3", "ffmpeg"),
	)
	out, _, err := runCLI(t, []string{"doctor", "--skip-python"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	for _, want := range []string{"== Dependencies ==", "== Models ==", "== Device ==", "== Speech ==", "cpu @ 384"} {
		requireContains(t, out, want)
	}
	requireContains(t, out, "SadTalker install:")
	requireContains(t, out, "OPENAI_API_KEY not set")
}

func TestDoctorFailsWithoutPython(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithPython("atenea-missing-python"))
	_, stderr, err := runCLI(t, []string{"doctor", "--skip-python"}, env.configPath)
	if err == nil {
		t.Fatal("expected doctor to fail when the interpreter is missing")
	}
	requireContains(t, stderr, "required dependencies missing")
}
