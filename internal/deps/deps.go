package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency Atenea relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch path, err := exec.LookPath(cmd); {
		case cmd == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		default:
			status.Available = true
			status.Command = path
		}
		results = append(results, status)
	}
	return results
}

// ModelRequirements lists the binaries model dispatch depends on.
func ModelRequirements(python, ffmpeg string) []Requirement {
	return []Requirement{
		{
			Name:        "Python",
			Command:     python,
			Description: "Runs the model inference entry points",
		},
		{
			Name:        "FFmpeg",
			Command:     ffmpeg,
			Description: "Used by the models to mux audio into the rendered video",
		},
		{
			Name:        "nvidia-smi",
			Command:     "nvidia-smi",
			Description: "Reports CUDA GPUs; CPU is used without it",
			Optional:    true,
		},
	}
}
