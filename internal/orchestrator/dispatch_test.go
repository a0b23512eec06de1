package orchestrator_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atenea/internal/backend"
	"atenea/internal/config"
	"atenea/internal/failure"
	"atenea/internal/logging"
	"atenea/internal/modelargs"
	"atenea/internal/orchestrator"
	"atenea/internal/testsupport"
)

const sadTalkerStub = `while [ $# -gt 0 ]; do
  case "$1" in
    --result_dir) dir="$2"; shift ;;
  esac
  shift
done
echo "rendering into $dir"
echo "video" > "$dir/2026_10_15_12.30.00.mp4"
`

func TestGenerateThroughChildProcess(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithInstalledModels("sadtalker"),
		testsupport.WithPython("/bin/sh"),
		testsupport.WithBackend(config.BackendProcess),
	)
	if err := os.WriteFile(filepath.Join(cfg.SadTalker.Root, cfg.SadTalker.Entry), []byte(sadTalkerStub), 0o755); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	image, audio := testsupport.WriteInputs(t, dir)
	output := filepath.Join(dir, "result", "v.mp4")

	before, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	var stdout bytes.Buffer
	o := newOrchestrator(t, cfg, orchestrator.WithOutput(&stdout, &bytes.Buffer{}))
	if o.Backend().Name() != "process" {
		t.Fatalf("expected process backend from config, got %s", o.Backend().Name())
	}

	res := o.Generate(context.Background(), orchestrator.Request{ImagePath: image, AudioPath: audio, OutputPath: output})
	if !res.OK() {
		var buf bytes.Buffer
		res.Diagnosis.Write(&buf)
		t.Fatalf("expected success, got %s", buf.String())
	}
	if !strings.Contains(stdout.String(), "rendering into "+filepath.Dir(output)) {
		t.Fatalf("child output not streamed: %q", stdout.String())
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output at %s: %v", output, err)
	}
	if after, _ := os.Getwd(); after != before {
		t.Fatalf("working directory changed: %q -> %q", before, after)
	}
}

func TestGenerateChildProcessImportFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithInstalledModels("sadtalker"),
		testsupport.WithPython("/bin/sh"),
	)
	script := "echo 'Traceback (most recent call last):' >&2\necho \"ModuleNotFoundError: No module named 'face_alignment'\" >&2\nexit 1\n"
	if err := os.WriteFile(filepath.Join(cfg.SadTalker.Root, cfg.SadTalker.Entry), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	image, audio := testsupport.WriteInputs(t, dir)
	o := newOrchestrator(t, cfg)

	res := o.Generate(context.Background(), orchestrator.Request{ImagePath: image, AudioPath: audio, OutputPath: filepath.Join(dir, "v.mp4")})
	if res.Diagnosis.Kind != failure.KindInstall {
		t.Fatalf("expected install failure, got %+v", res.Diagnosis)
	}
	if !strings.Contains(res.Diagnosis.Summary, "face_alignment") {
		t.Fatalf("summary should name the missing module: %q", res.Diagnosis.Summary)
	}
}

func TestGenerateInProcessRestoresWorkingDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithInstalledModels("sadtalker"),
		testsupport.WithBackend(config.BackendInProcess),
	)
	dir := t.TempDir()
	image, audio := testsupport.WriteInputs(t, dir)

	inproc := backend.NewInProcess(logging.NewNop())
	var ranIn string
	inproc.Register(string(modelargs.SadTalker), func(_ context.Context, inv backend.Invocation) error {
		ranIn, _ = os.Getwd()
		args := inv.Config.(modelargs.SadTalkerArgs)
		return os.WriteFile(filepath.Join(args.ResultDir, "2026_10_15.mp4"), []byte("v"), 0o644)
	})

	before, _ := os.Getwd()
	o := newOrchestrator(t, cfg, orchestrator.WithBackend(inproc))
	res := o.Generate(context.Background(), orchestrator.Request{ImagePath: image, AudioPath: audio, OutputPath: filepath.Join(dir, "v.mp4")})
	if !res.OK() {
		t.Fatalf("expected success, got %+v", res.Diagnosis)
	}
	if res.Plan.Backend != "inprocess" {
		t.Fatalf("expected inprocess backend in plan, got %q", res.Plan.Backend)
	}
	wantRoot, _ := filepath.EvalSymlinks(cfg.SadTalker.Root)
	gotRoot, _ := filepath.EvalSymlinks(ranIn)
	if gotRoot != wantRoot {
		t.Fatalf("entry point ran in %q, want %q", ranIn, cfg.SadTalker.Root)
	}
	if after, _ := os.Getwd(); after != before {
		t.Fatalf("working directory changed: %q -> %q", before, after)
	}
}

func TestGenerateCanceled(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithInstalledModels("sadtalker"),
		testsupport.WithPython("/bin/sh"),
	)
	if err := os.WriteFile(filepath.Join(cfg.SadTalker.Root, cfg.SadTalker.Entry), []byte("sleep 30\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	image, audio := testsupport.WriteInputs(t, dir)
	o := newOrchestrator(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := o.Generate(ctx, orchestrator.Request{ImagePath: image, AudioPath: audio, OutputPath: filepath.Join(dir, "v.mp4")})
	if res.Diagnosis.Kind != failure.KindCanceled || res.ExitCode() != 1 {
		t.Fatalf("expected canceled with exit 1, got %+v", res.Diagnosis)
	}
}
