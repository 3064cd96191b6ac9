package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veil/internal/stego"
)

func newEmbedCommand(ctx *commandContext) *cobra.Command {
	var (
		text           string
		contentPath    string
		password       string
		encryptionType string
		projectName    string
		projectDesc    string
		outputPath     string
	)

	cmd := &cobra.Command{
		Use:   "embed <carrier>",
		Short: "Hide a payload inside a carrier file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			carrier, err := openCarrier(args[0])
			if err != nil {
				return err
			}
			defer carrier.Close()

			if err := ctx.preValidateCarriers(cmd.Context(), []*carrierUpload{carrier}); err != nil {
				return err
			}

			req := stego.EmbedRequest{
				Carriers:           []stego.File{carrier.asFile()},
				Password:           password,
				EncryptionType:     encryptionType,
				ProjectName:        projectName,
				ProjectDescription: projectDesc,
			}
			var content *carrierUpload
			if contentPath != "" {
				content, err = openCarrier(contentPath)
				if err != nil {
					return err
				}
				defer content.Close()
				file := content.asFile()
				req.ContentType = "file"
				req.ContentFile = &file
			} else {
				req.ContentType = "text"
				req.Text = text
			}

			tr, err := ctx.newTracker()
			if err != nil {
				return err
			}

			op, err := tr.Embed(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted embed operation %s\n", op.ID)

			outcome, err := ctx.track(cmd, tr, op, "Embedding")
			if err != nil {
				return err
			}

			written := ""
			if outcome.Succeeded() {
				written, err = ctx.fetchArtifact(cmd.Context(), tr, op, outcome, outputPath)
				if err != nil {
					ctx.recordHistory(cmd.Context(), op, outcome, "")
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", written)
			}
			ctx.recordHistory(cmd.Context(), op, outcome, written)
			return reportOutcome(cmd, op, outcome)
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Text payload to hide")
	cmd.Flags().StringVar(&contentPath, "content-file", "", "File payload to hide instead of text")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password protecting the payload")
	cmd.Flags().StringVar(&encryptionType, "encryption", "aes256", "Encryption algorithm (none to disable)")
	cmd.Flags().StringVar(&projectName, "project", "", "Project name recorded with the job")
	cmd.Flags().StringVar(&projectDesc, "project-description", "", "Project description recorded with the job")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the artifact to this exact path")

	return cmd
}
