package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"atenea/internal/backend"
	"atenea/internal/failure"
	"atenea/internal/fileutil"
	"atenea/internal/logging"
	"atenea/internal/modelargs"
)

// mtimeSlack absorbs coarse filesystem timestamps when matching outputs to a run.
const mtimeSlack = 2 * time.Second

// Result is the outcome of one Generate call.
type Result struct {
	Plan       Plan
	OutputPath string
	Elapsed    time.Duration
	Diagnosis  failure.Diagnosis
}

// OK reports whether the run produced its output video.
func (r Result) OK() bool { return r.Diagnosis.OK() }

// ExitCode is 0 on success and 1 on any failure.
func (r Result) ExitCode() int { return r.Diagnosis.ExitCode }

// Generate runs validate → probe → plan → build → dispatch → collect for req.
// Every stage is terminal on failure; the failure is classified into the
// returned Result rather than returned as an error.
func (o *Orchestrator) Generate(ctx context.Context, req Request) Result {
	start := o.now()
	runID := o.newRunID()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)

	res := Result{Plan: Plan{RunID: runID, Model: req.Model}}
	fail := func(stage string, err error) Result {
		scope := failure.Scope{Model: string(res.Plan.Model), Conservative: res.Plan.Conservative()}
		res.Diagnosis = failure.Classify(err, scope)
		if res.Diagnosis.Kind == failure.KindOutOfMemory {
			res.Diagnosis.VRAM = o.vramSummary(ctx)
		}
		res.Elapsed = o.now().Sub(start)
		logger.Error("generation failed",
			slog.String(logging.FieldStage, stage),
			slog.String("kind", res.Diagnosis.Kind.String()),
			logging.Error(err),
		)
		return res
	}

	if err := o.Validate(req); err != nil {
		return fail("validate", err)
	}
	plan, err := o.Resolve(ctx, req)
	if err != nil {
		return fail("plan", err)
	}
	plan.RunID = runID
	res.Plan = plan

	if err := os.MkdirAll(filepath.Dir(plan.Inputs.OutputPath), 0o755); err != nil {
		return fail("validate", failure.Wrap(failure.ErrInput, "validate", "output dir", "", err))
	}
	if err := o.checkInstall(plan); err != nil {
		return fail("install", err)
	}

	inv, cleanup, err := o.buildInvocation(plan)
	if err != nil {
		return fail("build", err)
	}
	defer cleanup()

	logger.Info("dispatching model",
		slog.String(logging.FieldStage, "dispatch"),
		slog.String(logging.FieldModel, string(plan.Model)),
		slog.String("variant", string(plan.Variant)),
		slog.String("backend", plan.Backend),
		slog.String("workdir", plan.WorkDir),
	)
	dispatchStart := o.now()
	if err := o.backend.Run(ctx, inv); err != nil {
		return fail("dispatch", err)
	}

	output, err := collectOutput(plan.Inputs.OutputPath, dispatchStart.Add(-mtimeSlack))
	if err != nil {
		return fail("collect", err)
	}
	res.OutputPath = output
	res.Elapsed = o.now().Sub(start)
	logger.Info("generation complete",
		slog.String(logging.FieldStage, "collect"),
		slog.String("output", output),
		slog.Duration("elapsed", res.Elapsed),
	)
	return res
}

func (o *Orchestrator) checkInstall(plan Plan) error {
	if info, err := os.Stat(plan.WorkDir); err != nil || !info.IsDir() {
		return failure.Missing(failure.ErrInstall, plan.Model.DisplayName()+" installation", plan.WorkDir, plan.Model.InstallRemedy())
	}
	if info, err := os.Stat(plan.CheckpointDir); err != nil || !info.IsDir() {
		return failure.Missing(failure.ErrCheckpoint, plan.Model.DisplayName()+" checkpoints", plan.CheckpointDir, plan.Model.CheckpointRemedy())
	}
	if plan.Backend == "process" {
		entry := plan.Entry
		if !filepath.IsAbs(entry) {
			entry = filepath.Join(plan.WorkDir, entry)
		}
		if _, err := os.Stat(entry); err != nil {
			return failure.Missing(failure.ErrInstall, plan.Model.DisplayName()+" entry point", entry, plan.Model.InstallRemedy())
		}
	}
	return nil
}

func (o *Orchestrator) buildInvocation(plan Plan) (backend.Invocation, func(), error) {
	inv := backend.Invocation{
		Model:   string(plan.Model),
		Variant: string(plan.Variant),
		WorkDir: plan.WorkDir,
		Entry:   plan.Entry,
		Env:     []string{"TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1"},
		Stdout:  o.stdout,
		Stderr:  o.stderr,
	}
	noop := func() {}

	switch plan.Model {
	case modelargs.Hallo2:
		cfg, err := modelargs.LoadHallo2Config(plan.ConfigPath, plan.Inputs)
		if err != nil {
			return inv, noop, failure.Wrap(failure.ErrConfiguration, "build", "hallo2 config", "", err)
		}
		if cfg.Synthesized {
			o.logger.Warn("hallo2 default config not found; using built-in defaults", slog.String("path", plan.ConfigPath))
		}
		dir, err := os.MkdirTemp("", "atenea-hallo2-")
		if err != nil {
			return inv, noop, failure.Wrap(failure.ErrConfiguration, "build", "hallo2 config", "create temp dir", err)
		}
		cleanup := func() { _ = os.RemoveAll(dir) }
		path := filepath.Join(dir, "inference.yaml")
		if err := cfg.WriteFile(path); err != nil {
			cleanup()
			return inv, noop, failure.Wrap(failure.ErrConfiguration, "build", "hallo2 config", "", err)
		}
		inv.Args = modelargs.Hallo2CommandLine(path)
		inv.Config = cfg
		return inv, cleanup, nil
	default:
		args := modelargs.NewSadTalkerArgs(plan.Inputs, plan.Variant)
		if plan.Conservative() {
			inv.Env = append(inv.Env, "PYTORCH_CUDA_ALLOC_CONF=expandable_segments:True")
		}
		inv.Args = args.CommandLine()
		inv.Config = args
		return inv, noop, nil
	}
}

// collectOutput returns output when the model wrote it during this run;
// otherwise it moves the newest video written next to it (SadTalker names its
// result by timestamp) into place.
func collectOutput(output string, since time.Time) (string, error) {
	if info, err := os.Stat(output); err == nil && !info.ModTime().Before(since) {
		return output, nil
	}
	ext := filepath.Ext(output)
	if ext == "" {
		ext = ".mp4"
	}
	entry, ok, err := fileutil.NewestWithExt(filepath.Dir(output), ext, since)
	if err != nil {
		return "", failure.Wrap(failure.ErrExternalTool, "collect", "scan results", "", err)
	}
	if !ok || entry.Path == output {
		return "", failure.Wrap(failure.ErrExternalTool, "collect", "", fmt.Sprintf("model finished without writing a video to %s", filepath.Dir(output)), nil)
	}
	if err := fileutil.MoveFile(entry.Path, output); err != nil {
		return "", failure.Wrap(failure.ErrExternalTool, "collect", "move result", "", err)
	}
	return output, nil
}

func (o *Orchestrator) vramSummary(ctx context.Context) string {
	if o.snapshot == nil {
		return ""
	}
	vram, err := o.snapshot(context.WithoutCancel(ctx))
	if err != nil {
		o.logger.Debug("vram snapshot unavailable", logging.Error(err))
		return ""
	}
	return vram.String()
}
