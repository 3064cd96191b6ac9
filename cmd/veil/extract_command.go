package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veil/internal/stego"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var (
		password     string
		outputFormat string
		outputPath   string
	)

	cmd := &cobra.Command{
		Use:   "extract <stego-file>",
		Short: "Recover a hidden payload from a stego file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stegoFile, err := openCarrier(args[0])
			if err != nil {
				return err
			}
			defer stegoFile.Close()

			tr, err := ctx.newTracker()
			if err != nil {
				return err
			}

			op, err := tr.Extract(cmd.Context(), stego.ExtractRequest{
				Stego:        stegoFile.asFile(),
				Password:     password,
				OutputFormat: outputFormat,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted extract operation %s\n", op.ID)

			outcome, err := ctx.track(cmd, tr, op, "Extracting")
			if err != nil {
				return err
			}

			written := ""
			if outcome.Succeeded() {
				if outcome.Result != nil && outcome.Result.ExtractedText != "" {
					fmt.Fprintln(cmd.OutOrStdout(), outcome.Result.ExtractedText)
				} else {
					written, err = ctx.fetchArtifact(cmd.Context(), tr, op, outcome, outputPath)
					if err != nil {
						ctx.recordHistory(cmd.Context(), op, outcome, "")
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", written)
				}
			}
			ctx.recordHistory(cmd.Context(), op, outcome, written)
			return reportOutcome(cmd, op, outcome)
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password protecting the payload")
	cmd.Flags().StringVar(&outputFormat, "format", "auto", "Output format for the recovered payload")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the payload to this exact path")

	return cmd
}
