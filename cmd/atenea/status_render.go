package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"atenea/internal/deps"
	"atenea/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 24
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	status := "[" + statusKindLabel(kind) + "]"
	if message != "" {
		status += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status)
	if colorize {
		return statusKindColor(kind) + line + ansiReset
	}
	return line
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		return []string{ansiBlue + line + ansiReset, ansiBlue + rule + ansiReset}
	}
	return []string{line, rule}
}

// dependencyLines renders binary and module checks. Missing optional entries
// are warnings; missing required entries are errors. The returned count is
// the number of required dependencies that are unavailable.
func dependencyLines(statuses []deps.Status, colorize bool) ([]string, int) {
	lines := make([]string, 0, len(statuses))
	missing := 0
	for _, s := range statuses {
		switch {
		case s.Available:
			lines = append(lines, renderStatusLine(s.Name, statusOK, s.Command, colorize))
		case s.Optional:
			lines = append(lines, renderStatusLine(s.Name, statusWarn, orDefault(s.Detail, "not available"), colorize))
		default:
			missing++
			lines = append(lines, renderStatusLine(s.Name, statusError, orDefault(s.Detail, "not available"), colorize))
		}
	}
	return lines, missing
}

// checkLines renders filesystem checks. Failures are reported as warnings
// when warnOnly is set, so one uninstalled model does not fail the report.
func checkLines(results []preflight.Result, warnOnly bool, colorize bool) ([]string, int) {
	lines := make([]string, 0, len(results))
	failed := 0
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			failed++
			kind = statusError
			if warnOnly {
				kind = statusWarn
			}
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines, failed
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
