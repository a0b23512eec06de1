package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"atenea/internal/config"
	"atenea/internal/tts"
)

func newNarrateCommand(ctx *commandContext) *cobra.Command {
	var input, avatar, output, voice string
	var flags generationFlags

	cmd := &cobra.Command{
		Use:   "narrate",
		Short: "Synthesize speech from a text file and animate the avatar with it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, orch, err := ctx.newOrchestrator(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			textPath, err := config.ExpandPath(input)
			if err != nil {
				return err
			}
			text, err := os.ReadFile(textPath)
			if err != nil {
				return fmt.Errorf("read narration text: %w", err)
			}
			if strings.TrimSpace(string(text)) == "" {
				return fmt.Errorf("narration text %s is empty", textPath)
			}

			client := tts.NewClient(tts.Config{
				APIKey:         cfg.TTS.APIKey,
				BaseURL:        cfg.TTS.BaseURL,
				Model:          cfg.TTS.Model,
				Voice:          cfg.TTS.Voice,
				TimeoutSeconds: cfg.TTS.TimeoutSeconds,
			})
			audioPath := filepath.Join(cfg.Paths.AudioDir, "narration-"+time.Now().Format("20060102-150405")+".mp3")
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Synthesizing speech from %s\n", textPath)
			if _, err := client.Synthesize(cmd.Context(), tts.Request{Text: string(text), Voice: voice, OutputPath: audioPath}); err != nil {
				return err
			}
			fmt.Fprintf(out, "Audio saved: %s\n", audioPath)

			req, err := flags.request(avatar, audioPath, output)
			if err != nil {
				return err
			}
			printBanner(out, req)
			res := orch.Generate(cmd.Context(), req)
			return reportResult(out, cmd.ErrOrStderr(), res)
		},
	}

	cmd.Flags().StringVar(&input, "input", "input.txt", "Text file to narrate")
	cmd.Flags().StringVar(&avatar, "avatar", "data/images/avatar.png", "Avatar portrait image")
	cmd.Flags().StringVarP(&output, "output", "o", "output.mp4", "Output video path")
	cmd.Flags().StringVar(&voice, "voice", "", "Speech voice (alloy, echo, fable, onyx, nova, shimmer); defaults to tts.voice")
	flags.bind(cmd)
	return cmd
}
