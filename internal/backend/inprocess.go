package backend

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"

	"atenea/internal/failure"
	"atenea/internal/logging"
)

// EntryPoint is a model inference function linked into the binary.
type EntryPoint func(ctx context.Context, inv Invocation) error

// InProcess dispatches to registered entry points inside the orchestrator's
// own process. The working directory is switched to the model root for the
// duration of the call.
type InProcess struct {
	entries map[string]EntryPoint
	logger  *slog.Logger
}

// NewInProcess constructs an in-process backend.
func NewInProcess(logger *slog.Logger) *InProcess {
	return &InProcess{
		entries: make(map[string]EntryPoint),
		logger:  logging.NewComponentLogger(logger, "dispatch"),
	}
}

// Register binds an entry point to a model name, optionally narrowed to a
// variant with "model/variant".
func (b *InProcess) Register(key string, fn EntryPoint) {
	b.entries[strings.ToLower(strings.TrimSpace(key))] = fn
}

// Registered lists the registered keys.
func (b *InProcess) Registered() []string {
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Name implements Backend.
func (b *InProcess) Name() string { return "inprocess" }

// Run implements Backend.
func (b *InProcess) Run(ctx context.Context, inv Invocation) error {
	fn, ok := b.lookup(inv.Model, inv.Variant)
	if !ok {
		return failure.Wrap(failure.ErrInstall, "dispatch", inv.Model, "no in-process entry point registered", nil)
	}

	// Release what the previous run left behind before loading another model.
	runtime.GC()
	debug.FreeOSMemory()

	logging.WithContext(ctx, b.logger).Debug("calling in-process entry point",
		slog.String(logging.FieldModel, inv.Model),
		slog.String("variant", inv.Variant),
		slog.String("workdir", inv.WorkDir),
	)
	err := WithinDir(inv.WorkDir, func() error {
		return callGuarded(ctx, fn, inv)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return failure.Wrap(failure.ErrExternalTool, "dispatch", inv.Model, "interrupted", ctxErr)
		}
		return failure.Wrap(failure.ErrExternalTool, "dispatch", inv.Model, "entry point failed", err)
	}
	return nil
}

func (b *InProcess) lookup(model, variant string) (EntryPoint, bool) {
	model = strings.ToLower(model)
	if variant != "" {
		if fn, ok := b.entries[model+"/"+strings.ToLower(variant)]; ok {
			return fn, true
		}
	}
	fn, ok := b.entries[model]
	return fn, ok
}

func callGuarded(ctx context.Context, fn EntryPoint, inv Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("entry point panicked: %v", r)
		}
	}()
	return fn(ctx, inv)
}
