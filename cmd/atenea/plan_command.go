package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"atenea/internal/orchestrator"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var image, audio, output string
	var flags generationFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show how a generation would run without starting the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(image, audio, output)
			if err != nil {
				return err
			}
			_, orch, err := ctx.newOrchestrator(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			plan, err := orch.Preview(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPlan(plan))
			return nil
		},
	}

	cmd.Flags().StringVarP(&image, "image", "i", "", "Portrait image")
	cmd.Flags().StringVarP(&audio, "audio", "a", "", "Driving audio clip")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output video path")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("audio")
	_ = cmd.MarkFlagRequired("output")
	flags.bind(cmd)
	return cmd
}

func renderPlan(plan orchestrator.Plan) string {
	device := plan.Device
	if plan.Accelerator != "" {
		device = fmt.Sprintf("%s (%s)", plan.Device, plan.Accelerator)
	}
	rows := [][]string{
		{"Model", plan.Model.DisplayName()},
		{"Variant", string(plan.Variant)},
		{"Device", device},
		{"Device reason", plan.DeviceReason},
		{"Size", strconv.Itoa(plan.Size)},
		{"Backend", plan.Backend},
		{"Working dir", plan.WorkDir},
		{"Entry", plan.Entry},
		{"Checkpoints", plan.CheckpointDir},
		{"Image", plan.Inputs.ImagePath},
		{"Audio", plan.Inputs.AudioPath},
		{"Output", plan.Inputs.OutputPath},
	}
	if plan.ConfigPath != "" {
		rows = append(rows, []string{"Config", plan.ConfigPath})
	}
	return strings.TrimRight(renderTable([]string{"Setting", "Value"}, rows, nil), "\n")
}
