package device_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"atenea/internal/device"
	"atenea/internal/logging"
)

type fakeInspector struct {
	inv device.Inventory
	err error
}

func (f fakeInspector) Inspect(context.Context) (device.Inventory, error) {
	return f.inv, f.err
}

func TestProbeSelectsCUDA(t *testing.T) {
	prober := device.NewProber(fakeInspector{inv: device.Inventory{
		CUDA: []device.Accelerator{{Kind: device.CUDA, Name: "RTX 4090", MemoryMiB: 24564}},
	}}, logging.NewNop())

	sel := prober.Probe(context.Background())
	if sel.Device != device.CUDA || sel.Size != device.GPUSize {
		t.Fatalf("expected cuda/512, got %+v", sel)
	}
	if sel.Accelerator != "RTX 4090" {
		t.Fatalf("expected accelerator name, got %q", sel.Accelerator)
	}
}

func TestProbeSkipsMPS(t *testing.T) {
	prober := device.NewProber(fakeInspector{inv: device.Inventory{MPS: true}}, logging.NewNop())
	sel := prober.Probe(context.Background())
	if sel.Device != device.CPU || sel.Size != device.CPUSize {
		t.Fatalf("expected cpu/384 when only MPS is present, got %+v", sel)
	}
	if !strings.Contains(sel.Reason, "MPS") {
		t.Fatalf("expected reason to mention MPS, got %q", sel.Reason)
	}
}

func TestProbeFallsBackToCPUOnError(t *testing.T) {
	prober := device.NewProber(fakeInspector{err: errors.New("nvidia-smi missing")}, logging.NewNop())
	sel := prober.Probe(context.Background())
	if sel.Device != device.CPU || sel.Size != device.CPUSize {
		t.Fatalf("expected cpu/384, got %+v", sel)
	}
}

func TestProbeIsDeterministic(t *testing.T) {
	prober := device.NewProber(fakeInspector{}, logging.NewNop())
	first := prober.Probe(context.Background())
	for i := 0; i < 3; i++ {
		if got := prober.Probe(context.Background()); got != first {
			t.Fatalf("probe %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestApplyOverrides(t *testing.T) {
	probed := device.Selection{Device: device.CUDA, Size: device.GPUSize, Accelerator: "A100", Reason: "CUDA GPU detected"}

	sel, err := device.ApplyOverrides(probed, "auto", 0)
	if err != nil || sel != probed {
		t.Fatalf("auto/0 should keep probe, got %+v err=%v", sel, err)
	}

	sel, err = device.ApplyOverrides(probed, "CPU", 256)
	if err != nil {
		t.Fatalf("ApplyOverrides returned error: %v", err)
	}
	if sel.Device != device.CPU || sel.Size != 256 || sel.Accelerator != "" {
		t.Fatalf("unexpected override result %+v", sel)
	}

	if _, err := device.ApplyOverrides(probed, "mps", 0); err == nil {
		t.Fatal("expected error for mps override")
	}
	if _, err := device.ApplyOverrides(probed, "", -1); err == nil {
		t.Fatal("expected error for negative size")
	}
}
