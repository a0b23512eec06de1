package failure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind groups failures by the remedy offered to the user.
type Kind int

const (
	KindNone Kind = iota
	KindInput
	KindCheckpoint
	KindInstall
	KindOutOfMemory
	KindRuntime
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInput:
		return "input"
	case KindCheckpoint:
		return "checkpoint"
	case KindInstall:
		return "install"
	case KindOutOfMemory:
		return "out_of_memory"
	case KindRuntime:
		return "runtime"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Scope describes the run a failure came from so hints can name the right model.
type Scope struct {
	Model        string
	Conservative bool
}

// Diagnosis is the user-facing rendering of a failed run.
type Diagnosis struct {
	Kind     Kind
	Summary  string
	Hints    []string
	Detail   []string
	VRAM     string
	ExitCode int
}

// OK reports whether the diagnosis describes a successful run.
func (d Diagnosis) OK() bool { return d.Kind == KindNone }

// Classify maps err onto a Diagnosis. A nil error yields KindNone and exit code 0;
// every failure exits with 1.
func Classify(err error, scope Scope) Diagnosis {
	if err == nil {
		return Diagnosis{Kind: KindNone}
	}
	d := Diagnosis{Kind: KindRuntime, Summary: err.Error(), ExitCode: 1}

	var tail []string
	var output *OutputError
	if errors.As(err, &output) {
		tail = output.Tail
	}

	var missing *MissingError
	switch {
	case errors.Is(err, context.Canceled):
		d.Kind = KindCanceled
		d.Summary = "generation interrupted"
		return d
	case errors.As(err, &missing):
		d.Kind = kindForMarker(missing.Marker)
		d.Summary = missing.Error()
		if missing.Remedy != "" {
			d.Hints = append(d.Hints, "Run: "+missing.Remedy)
		}
		return d
	case errors.Is(err, ErrInput):
		d.Kind = KindInput
		return d
	case errors.Is(err, ErrCheckpoint):
		d.Kind = KindCheckpoint
		return d
	}

	texts := append([]string{err.Error()}, tail...)
	switch {
	case errors.Is(err, ErrOutOfMemory) || anyLine(texts, isOutOfMemory):
		d.Kind = KindOutOfMemory
		d.Summary = "accelerator ran out of memory"
		d.Hints = outOfMemoryHints(scope)
	case errors.Is(err, ErrInstall) || anyLine(texts, isImportFailure):
		d.Kind = KindInstall
		d.Summary = fmt.Sprintf("%s dependencies are not importable: %s", modelLabel(scope.Model), firstMatch(texts, isImportFailure, err.Error()))
		d.Hints = installHints(scope)
	default:
		d.Summary = "error during inference: " + err.Error()
	}
	d.Detail = tail
	return d
}

// Write renders the diagnosis for a terminal.
func (d Diagnosis) Write(w io.Writer) {
	if d.OK() {
		return
	}
	fmt.Fprintf(w, "Error: %s\n", d.Summary)
	if d.VRAM != "" {
		fmt.Fprintf(w, "VRAM: %s\n", d.VRAM)
	}
	if len(d.Hints) > 0 {
		fmt.Fprintln(w, "Suggestions:")
		for i, hint := range d.Hints {
			fmt.Fprintf(w, "  %d. %s\n", i+1, hint)
		}
	}
	if len(d.Detail) > 0 {
		fmt.Fprintln(w, "Last output:")
		for _, line := range d.Detail {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func kindForMarker(marker error) Kind {
	switch {
	case errors.Is(marker, ErrInput):
		return KindInput
	case errors.Is(marker, ErrCheckpoint):
		return KindCheckpoint
	case errors.Is(marker, ErrInstall):
		return KindInstall
	default:
		return KindRuntime
	}
}

func isOutOfMemory(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "out of memory") || strings.Contains(lower, "outofmemoryerror") {
		return true
	}
	return strings.Contains(lower, "runtimeerror") && strings.Contains(lower, "cuda")
}

func isImportFailure(line string) bool {
	return strings.Contains(line, "ModuleNotFoundError") ||
		strings.Contains(line, "ImportError") ||
		strings.Contains(line, "No module named")
}

func anyLine(lines []string, match func(string) bool) bool {
	for _, line := range lines {
		if match(line) {
			return true
		}
	}
	return false
}

func firstMatch(lines []string, match func(string) bool, fallback string) string {
	for _, line := range lines {
		if match(line) {
			return strings.TrimSpace(line)
		}
	}
	return fallback
}

func outOfMemoryHints(scope Scope) []string {
	var hints []string
	if scope.Model == "hallo2" {
		hints = append(hints, "Reduce video size: use --size 512 instead of 1024")
	} else {
		hints = append(hints, "Reduce video size: --size 256")
		if !scope.Conservative {
			hints = append(hints, "Retry with USE_CONSERVATIVE=1")
		}
	}
	return append(hints,
		"Use shorter audio clips",
		"Check GPU memory usage with nvidia-smi",
	)
}

func installHints(scope Scope) []string {
	if scope.Model == "hallo2" {
		return []string{"Run: bash setup_hallo2.sh"}
	}
	return []string{
		"Install SadTalker requirements into the configured interpreter: pip install -r requirements.txt",
		"Point python.binary or ATENEA_PYTHON at the environment that has them",
	}
}

func modelLabel(model string) string {
	switch model {
	case "hallo2":
		return "Hallo2"
	case "":
		return "model"
	default:
		return "SadTalker"
	}
}
