package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ModuleRunner executes a command and returns its combined output.
type ModuleRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// CheckPythonModules reports whether each module imports cleanly under the
// given interpreter. A nil runner executes the interpreter directly.
func CheckPythonModules(ctx context.Context, python string, modules []string, run ModuleRunner) []Status {
	if run == nil {
		run = combinedOutput
	}
	results := make([]Status, 0, len(modules))
	for _, module := range modules {
		status := Status{
			Name:        "python: " + module,
			Command:     python,
			Description: fmt.Sprintf("import %s", module),
		}
		out, err := run(ctx, python, "-c", "import "+module)
		if err != nil {
			status.Detail = lastLine(string(out))
			if status.Detail == "" {
				status.Detail = err.Error()
			}
		} else {
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
