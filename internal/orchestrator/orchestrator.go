package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"atenea/internal/backend"
	"atenea/internal/config"
	"atenea/internal/device"
	"atenea/internal/logging"
)

// Orchestrator runs the generation pipeline for one request at a time.
type Orchestrator struct {
	cfg      *config.Config
	prober   *device.Prober
	snapshot func(context.Context) (device.VRAM, error)
	backend  backend.Backend
	getenv   func(string) string
	newRunID func() string
	now      func() time.Time
	stdout   io.Writer
	stderr   io.Writer
	logger   *slog.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithBackend overrides the dispatch backend chosen from configuration.
func WithBackend(b backend.Backend) Option {
	return func(o *Orchestrator) {
		if b != nil {
			o.backend = b
		}
	}
}

// WithInspector replaces the host accelerator inspector.
func WithInspector(inspector device.Inspector) Option {
	return func(o *Orchestrator) {
		if inspector != nil {
			o.prober = device.NewProber(inspector, o.logger)
		}
	}
}

// WithVRAMSnapshot overrides how GPU memory is read for out-of-memory diagnostics.
func WithVRAMSnapshot(fn func(context.Context) (device.VRAM, error)) Option {
	return func(o *Orchestrator) {
		o.snapshot = fn
	}
}

// WithGetenv overrides environment lookups (USE_CONSERVATIVE).
func WithGetenv(getenv func(string) string) Option {
	return func(o *Orchestrator) {
		if getenv != nil {
			o.getenv = getenv
		}
	}
}

// WithRunIDGenerator overrides run identifier generation.
func WithRunIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newRunID = fn
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithOutput sets where the model's stdout and stderr are streamed.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *Orchestrator) {
		if stdout != nil {
			o.stdout = stdout
		}
		if stderr != nil {
			o.stderr = stderr
		}
	}
}

// New constructs an orchestrator from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("orchestrator: config required")
	}
	logger = logging.NewComponentLogger(logger, "orchestrator")
	inspector := device.NewSystemInspector()
	o := &Orchestrator{
		cfg:      cfg,
		prober:   device.NewProber(inspector, logger),
		snapshot: inspector.Snapshot,
		getenv:   os.Getenv,
		newRunID: uuid.NewString,
		now:      time.Now,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.backend == nil {
		b, err := newBackend(cfg, logger)
		if err != nil {
			return nil, err
		}
		o.backend = b
	}
	return o, nil
}

// Backend returns the dispatch backend in use.
func (o *Orchestrator) Backend() backend.Backend {
	return o.backend
}

func newBackend(cfg *config.Config, logger *slog.Logger) (backend.Backend, error) {
	switch cfg.Dispatch.Backend {
	case config.BackendProcess, "":
		return backend.NewProcess(cfg.PythonBinary(),
			backend.WithTailLines(cfg.Dispatch.OutputTailLines),
			backend.WithProcessLogger(logger),
		), nil
	case config.BackendInProcess:
		return backend.NewInProcess(logger), nil
	default:
		return nil, fmt.Errorf("orchestrator: unsupported backend %q", cfg.Dispatch.Backend)
	}
}
