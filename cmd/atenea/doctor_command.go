package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"atenea/internal/deps"
	"atenea/internal/device"
	"atenea/internal/preflight"
)

var doctorPythonModules = []string{"torch"}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var skipPython bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check binaries, model installs, checkpoints and device selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var lines []string
			section := func(title string, body []string) {
				if len(lines) > 0 {
					lines = append(lines, "")
				}
				lines = append(lines, renderSectionHeader(title, colorize)...)
				lines = append(lines, body...)
			}

			statuses := preflight.CheckSystemDeps(cfg)
			if !skipPython {
				statuses = append(statuses, deps.CheckPythonModules(cmd.Context(), cfg.PythonBinary(), doctorPythonModules, nil)...)
			}
			depLines, missing := dependencyLines(statuses, colorize)
			section("Dependencies", depLines)

			modelLines, _ := checkLines(preflight.RunAll(cfg), true, colorize)
			section("Models", modelLines)

			sel := device.NewProber(nil, logger).Probe(cmd.Context())
			section("Device", []string{
				renderStatusLine("Selected", statusInfo, describeSelection(sel), colorize),
				renderStatusLine("Reason", statusInfo, sel.Reason, colorize),
			})

			ttsLines, _ := checkLines([]preflight.Result{preflight.CheckTTS(cfg)}, true, colorize)
			section("Speech", ttsLines)

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if missing > 0 {
				summary := fmt.Sprintf("%d required dependencies missing", missing)
				fmt.Fprintln(cmd.ErrOrStderr(), "Error: "+summary)
				return &reportedError{summary: summary}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipPython, "skip-python", false, "Do not import Python modules")
	return cmd
}

func describeSelection(sel device.Selection) string {
	desc := sel.Device + " @ " + strconv.Itoa(sel.Size)
	if sel.Accelerator != "" {
		desc += " (" + sel.Accelerator + ")"
	}
	return desc
}
