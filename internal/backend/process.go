package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"atenea/internal/failure"
	"atenea/internal/logging"
)

const processWaitDelay = 5 * time.Second

// Process runs the model's entry script under a Python interpreter as a child
// process rooted at the model directory.
type Process struct {
	interpreter string
	tailLines   int
	environ     func() []string
	logger      *slog.Logger
}

// ProcessOption configures a Process backend.
type ProcessOption func(*Process)

// WithTailLines sets how many trailing output lines are kept for diagnostics.
func WithTailLines(n int) ProcessOption {
	return func(p *Process) {
		if n > 0 {
			p.tailLines = n
		}
	}
}

// WithEnviron overrides the inherited environment (primarily for tests).
func WithEnviron(environ func() []string) ProcessOption {
	return func(p *Process) {
		if environ != nil {
			p.environ = environ
		}
	}
}

// WithProcessLogger attaches a logger.
func WithProcessLogger(logger *slog.Logger) ProcessOption {
	return func(p *Process) {
		p.logger = logging.NewComponentLogger(logger, "dispatch")
	}
}

// NewProcess constructs a child-process backend.
func NewProcess(interpreter string, opts ...ProcessOption) *Process {
	p := &Process{
		interpreter: strings.TrimSpace(interpreter),
		tailLines:   40,
		environ:     os.Environ,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Backend.
func (p *Process) Name() string { return "process" }

// Run starts the interpreter, streams its output as it arrives and waits for it
// to exit. A non-zero exit returns a *failure.OutputError carrying the tail.
func (p *Process) Run(ctx context.Context, inv Invocation) error {
	if p.interpreter == "" {
		return failure.Wrap(failure.ErrConfiguration, "dispatch", inv.Model, "python interpreter not configured", nil)
	}
	if inv.Entry == "" {
		return failure.Wrap(failure.ErrConfiguration, "dispatch", inv.Model, "entry point not configured", nil)
	}

	args := append([]string{inv.Entry}, inv.Args...)
	cmd := exec.CommandContext(ctx, p.interpreter, args...) //nolint:gosec
	cmd.Dir = inv.WorkDir
	cmd.Env = mergeEnv(p.environ(), inv.Env)
	cmd.WaitDelay = processWaitDelay

	tail := newTailBuffer(p.tailLines)
	cmd.Stdout = io.MultiWriter(inv.stdout(), tail)
	cmd.Stderr = io.MultiWriter(inv.stderr(), tail)

	logger := logging.WithContext(ctx, p.logger)
	logger.Debug("starting model process",
		slog.String("interpreter", p.interpreter),
		slog.String("workdir", inv.WorkDir),
		slog.String("args", strings.Join(args, " ")),
	)

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return failure.Wrap(failure.ErrInstall, "dispatch", inv.Model, fmt.Sprintf("python interpreter %q not found", p.interpreter), err)
		}
		return failure.Wrap(failure.ErrExternalTool, "dispatch", inv.Model, "start process", err)
	}
	start := time.Now()
	err := cmd.Wait()
	logger.Debug("model process finished", slog.Duration("elapsed", time.Since(start)))
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return failure.Wrap(failure.ErrExternalTool, "dispatch", inv.Model, "interrupted", ctxErr)
	}
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return &failure.OutputError{
		ExitCode: exitCode,
		Tail:     tail.Lines(),
		Err:      failure.Wrap(failure.ErrExternalTool, "dispatch", inv.Model, "model process failed", err),
	}
}

// mergeEnv appends each KEY=VALUE default whose key is not already set in base.
func mergeEnv(base, defaults []string) []string {
	env := append([]string(nil), base...)
	present := make(map[string]struct{}, len(env))
	for _, kv := range env {
		if key, _, ok := strings.Cut(kv, "="); ok {
			present[key] = struct{}{}
		}
	}
	for _, kv := range defaults {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, exists := present[key]; exists {
			continue
		}
		present[key] = struct{}{}
		env = append(env, kv)
	}
	return env
}
