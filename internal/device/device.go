package device

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"atenea/internal/logging"
)

// Compute device identifiers understood by both models.
const (
	CPU  = "cpu"
	CUDA = "cuda"
	MPS  = "mps"
	Auto = "auto"
)

// Default output resolutions per device class.
const (
	GPUSize = 512
	CPUSize = 384
)

// Accelerator describes one detected GPU.
type Accelerator struct {
	Kind      string
	Name      string
	MemoryMiB int
}

// Inventory is the raw result of inspecting the host.
type Inventory struct {
	CUDA []Accelerator
	MPS  bool
}

// Inspector reports the accelerators available to child processes.
type Inspector interface {
	Inspect(ctx context.Context) (Inventory, error)
}

// Selection is the (device, resolution) pair used for one run.
type Selection struct {
	Device      string
	Size        int
	Accelerator string
	Reason      string
}

// Prober turns an inventory into a Selection.
type Prober struct {
	inspector Inspector
	logger    *slog.Logger
}

// NewProber constructs a prober. A nil inspector uses the host's nvidia-smi.
func NewProber(inspector Inspector, logger *slog.Logger) *Prober {
	if inspector == nil {
		inspector = NewSystemInspector()
	}
	return &Prober{
		inspector: inspector,
		logger:    logging.NewComponentLogger(logger, "device"),
	}
}

// Probe never fails; any inspection error is treated as "no accelerator".
func (p *Prober) Probe(ctx context.Context) Selection {
	inv, err := p.inspector.Inspect(ctx)
	if err != nil {
		p.logger.Debug("accelerator inspection failed", logging.Error(err))
		inv = Inventory{}
	}
	if len(inv.CUDA) > 0 {
		gpu := inv.CUDA[0]
		return Selection{
			Device:      CUDA,
			Size:        GPUSize,
			Accelerator: gpu.Name,
			Reason:      "CUDA GPU detected",
		}
	}
	if inv.MPS {
		p.logger.Warn("Apple MPS detected but not used; models run on CPU for compatibility")
		return Selection{Device: CPU, Size: CPUSize, Reason: "MPS skipped for compatibility"}
	}
	return Selection{Device: CPU, Size: CPUSize, Reason: "no GPU detected"}
}

// ApplyOverrides replaces the probed device and size with explicit choices.
// device "auto" (or empty) and size 0 keep the probed values.
func ApplyOverrides(sel Selection, device string, size int) (Selection, error) {
	device = strings.ToLower(strings.TrimSpace(device))
	switch device {
	case "", Auto:
	case CPU, CUDA:
		if device != sel.Device {
			sel.Device = device
			sel.Reason = "requested"
			if device == CPU {
				sel.Accelerator = ""
			}
		}
	default:
		return sel, fmt.Errorf("unsupported device %q (expected auto, cpu or cuda)", device)
	}
	if size < 0 {
		return sel, fmt.Errorf("size must be positive, got %d", size)
	}
	if size > 0 {
		sel.Size = size
	}
	return sel, nil
}
