package orchestrator

import (
	"context"
	"log/slog"

	"atenea/internal/device"
	"atenea/internal/failure"
	"atenea/internal/logging"
	"atenea/internal/modelargs"
)

// Plan is the fully resolved description of one invocation. It is derived
// from the request, the probed device, configuration and USE_CONSERVATIVE,
// and is not modified after Resolve returns.
type Plan struct {
	RunID         string
	Model         modelargs.Model
	Variant       modelargs.Variant
	Device        string
	Size          int
	Accelerator   string
	DeviceReason  string
	WorkDir       string
	Entry         string
	CheckpointDir string
	ConfigPath    string
	Backend       string
	Inputs        modelargs.Inputs
}

// Conservative reports whether the memory-conservative wrapper was selected.
func (p Plan) Conservative() bool {
	return p.Variant == modelargs.Conservative
}

// Resolve probes the device and derives the Plan for req. It does not check
// that inputs exist; call Validate first.
func (o *Orchestrator) Resolve(ctx context.Context, req Request) (Plan, error) {
	model, err := modelargs.ParseModel(string(req.Model))
	if err != nil {
		return Plan{}, failure.Wrap(failure.ErrInput, "plan", "model", "", err)
	}

	sel := o.prober.Probe(ctx)
	sel, err = device.ApplyOverrides(sel, req.Device, req.Size)
	if err != nil {
		return Plan{}, failure.Wrap(failure.ErrInput, "plan", "device", "", err)
	}

	plan := Plan{
		Model:        model,
		Variant:      modelargs.SelectVariant(model, o.getenv),
		Device:       sel.Device,
		Size:         sel.Size,
		Accelerator:  sel.Accelerator,
		DeviceReason: sel.Reason,
		Backend:      o.backend.Name(),
	}
	switch model {
	case modelargs.Hallo2:
		plan.WorkDir = o.cfg.Hallo2.Root
		plan.Entry = o.cfg.Hallo2.Entry
		plan.CheckpointDir = o.cfg.Hallo2.CheckpointDir
		plan.ConfigPath = o.cfg.Hallo2.ConfigPath
	default:
		plan.WorkDir = o.cfg.SadTalker.Root
		plan.Entry = o.cfg.SadTalker.Entry
		plan.CheckpointDir = o.cfg.SadTalker.CheckpointDir
	}
	if req.CheckpointDir != "" {
		if plan.CheckpointDir, err = absPath(req.CheckpointDir); err != nil {
			return Plan{}, failure.Wrap(failure.ErrInput, "plan", "checkpoint dir", "", err)
		}
	}

	inputs := modelargs.Inputs{
		CheckpointDir: plan.CheckpointDir,
		Device:        plan.Device,
		Size:          plan.Size,
	}
	// The model runs with its root as working directory, so every path it
	// receives must be absolute.
	for _, p := range []struct {
		dst *string
		src string
	}{
		{&inputs.ImagePath, req.ImagePath},
		{&inputs.AudioPath, req.AudioPath},
		{&inputs.OutputPath, req.OutputPath},
	} {
		if *p.dst, err = absPath(p.src); err != nil {
			return Plan{}, failure.Wrap(failure.ErrInput, "plan", "paths", "", err)
		}
	}
	plan.Inputs = inputs

	logging.WithContext(ctx, o.logger).Info("plan resolved",
		slog.String(logging.FieldStage, "plan"),
		slog.String(logging.FieldModel, string(plan.Model)),
		slog.String("variant", string(plan.Variant)),
		slog.String("device", plan.Device),
		slog.Int("size", plan.Size),
		slog.String("reason", plan.DeviceReason),
		slog.String("backend", plan.Backend),
	)
	return plan, nil
}

// Preview validates req and resolves its plan without dispatching.
func (o *Orchestrator) Preview(ctx context.Context, req Request) (Plan, error) {
	if err := o.Validate(req); err != nil {
		return Plan{}, err
	}
	return o.Resolve(ctx, req)
}
