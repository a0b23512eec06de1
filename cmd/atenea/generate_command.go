package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"atenea/internal/modelargs"
	"atenea/internal/orchestrator"
)

// generationFlags are shared by generate, narrate and plan.
type generationFlags struct {
	model         string
	checkpointDir string
	device        string
	size          int
}

func (f *generationFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.model, "model", "m", string(modelargs.DefaultModel), "Model to use (sadtalker, hallo2)")
	cmd.Flags().StringVar(&f.checkpointDir, "checkpoint-dir", "", "Override the model checkpoint directory")
	cmd.Flags().StringVar(&f.device, "device", "auto", "Compute device (auto, cpu, cuda)")
	cmd.Flags().IntVar(&f.size, "size", 0, "Output resolution; 0 uses the device default (512 GPU, 384 CPU)")
}

func (f *generationFlags) request(image, audio, output string) (orchestrator.Request, error) {
	model, err := modelargs.ParseModel(f.model)
	if err != nil {
		return orchestrator.Request{}, err
	}
	return orchestrator.Request{
		ImagePath:     image,
		AudioPath:     audio,
		OutputPath:    output,
		Model:         model,
		CheckpointDir: f.checkpointDir,
		Device:        f.device,
		Size:          f.size,
	}, nil
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var image, audio, output string
	var flags generationFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a talking-head video from a portrait and an audio clip",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(image, audio, output)
			if err != nil {
				return err
			}
			_, orch, err := ctx.newOrchestrator(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			printBanner(cmd.OutOrStdout(), req)
			res := orch.Generate(cmd.Context(), req)
			return reportResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
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

func printBanner(out io.Writer, req orchestrator.Request) {
	fmt.Fprintf(out, "%s talking-head generation\n", req.Model.DisplayName())
	fmt.Fprintf(out, "  Image:  %s\n", req.ImagePath)
	fmt.Fprintf(out, "  Audio:  %s\n", req.AudioPath)
	fmt.Fprintf(out, "  Output: %s\n", req.OutputPath)
}

func reportResult(stdout, stderr io.Writer, res orchestrator.Result) error {
	if !res.OK() {
		res.Diagnosis.Write(stderr)
		return &reportedError{summary: res.Diagnosis.Summary}
	}
	fmt.Fprintf(stdout, "Video saved: %s (%s on %s, %s)\n",
		res.OutputPath,
		res.Plan.Model.DisplayName(),
		res.Plan.Device,
		res.Elapsed.Round(time.Second),
	)
	return nil
}
