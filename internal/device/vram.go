package device

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// VRAM is a point-in-time memory reading for one GPU.
type VRAM struct {
	UsedMiB  int
	TotalMiB int
}

func (v VRAM) String() string {
	return fmt.Sprintf("%.2f GiB used of %.2f GiB", float64(v.UsedMiB)/1024, float64(v.TotalMiB)/1024)
}

func parseVRAM(out string) (VRAM, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			return VRAM{}, fmt.Errorf("unexpected nvidia-smi line %q", line)
		}
		used, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return VRAM{}, fmt.Errorf("parse used memory: %w", err)
		}
		total, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return VRAM{}, fmt.Errorf("parse total memory: %w", err)
		}
		return VRAM{UsedMiB: used, TotalMiB: total}, nil
	}
	return VRAM{}, errors.New("no gpu reported")
}
