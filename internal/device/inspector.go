package device

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// NvidiaSMICommand is the binary queried for CUDA inventory.
const NvidiaSMICommand = "nvidia-smi"

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// SystemInspector queries nvidia-smi and the host platform.
type SystemInspector struct {
	binary    string
	run       Runner
	lookupEnv func(string) (string, bool)
	goos      string
	goarch    string
}

// InspectorOption configures a SystemInspector.
type InspectorOption func(*SystemInspector)

// WithRunner injects a custom command runner (primarily for tests).
func WithRunner(run Runner) InspectorOption {
	return func(s *SystemInspector) {
		if run != nil {
			s.run = run
		}
	}
}

// WithLookupEnv overrides environment lookups.
func WithLookupEnv(lookup func(string) (string, bool)) InspectorOption {
	return func(s *SystemInspector) {
		if lookup != nil {
			s.lookupEnv = lookup
		}
	}
}

// WithPlatform overrides the detected GOOS/GOARCH.
func WithPlatform(goos, goarch string) InspectorOption {
	return func(s *SystemInspector) {
		s.goos = goos
		s.goarch = goarch
	}
}

// NewSystemInspector constructs an inspector for the current host.
func NewSystemInspector(opts ...InspectorOption) *SystemInspector {
	s := &SystemInspector{
		binary:    NvidiaSMICommand,
		run:       runCommand,
		lookupEnv: os.LookupEnv,
		goos:      runtime.GOOS,
		goarch:    runtime.GOARCH,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Inspect lists CUDA GPUs and reports Apple MPS availability.
func (s *SystemInspector) Inspect(ctx context.Context) (Inventory, error) {
	inv := Inventory{MPS: s.goos == "darwin" && s.goarch == "arm64"}
	if cudaHidden(s.lookupEnv) {
		return inv, nil
	}
	out, err := s.run(ctx, s.binary, "--query-gpu=name,memory.total", "--format=csv,noheader,nounits")
	if err != nil {
		return inv, fmt.Errorf("query gpus: %w", err)
	}
	gpus, err := parseGPUList(string(out))
	if err != nil {
		return inv, err
	}
	inv.CUDA = gpus
	return inv, nil
}

// Snapshot reports memory usage of the first GPU.
func (s *SystemInspector) Snapshot(ctx context.Context) (VRAM, error) {
	out, err := s.run(ctx, s.binary, "--query-gpu=memory.used,memory.total", "--format=csv,noheader,nounits")
	if err != nil {
		return VRAM{}, fmt.Errorf("query memory: %w", err)
	}
	return parseVRAM(string(out))
}

func cudaHidden(lookup func(string) (string, bool)) bool {
	value, ok := lookup("CUDA_VISIBLE_DEVICES")
	if !ok {
		return false
	}
	value = strings.TrimSpace(value)
	return value == "" || value == "-1"
}

func parseGPUList(out string) ([]Accelerator, error) {
	var gpus []Accelerator
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			return nil, fmt.Errorf("unexpected nvidia-smi line %q", line)
		}
		mem, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("parse gpu memory %q: %w", fields[1], err)
		}
		gpus = append(gpus, Accelerator{
			Kind:      CUDA,
			Name:      strings.TrimSpace(fields[0]),
			MemoryMiB: mem,
		})
	}
	return gpus, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, err
	}
	out, err := exec.CommandContext(ctx, path, args...).Output() //nolint:gosec
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
