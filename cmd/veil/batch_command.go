package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veil/internal/progress"
	"veil/internal/stego"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		text           string
		contentPath    string
		password       string
		encryptionType string
	)

	cmd := &cobra.Command{
		Use:   "batch <carrier>...",
		Short: "Hide one payload inside multiple carrier files",
		Long: `Submits all carriers in one request producing a single operation id.
The service reports one per-carrier entry in the completed result;
individual failed items are listed but never retried on their own.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads := make([]*carrierUpload, 0, len(args))
			defer func() {
				for _, upload := range uploads {
					upload.Close()
				}
			}()
			for _, arg := range args {
				upload, err := openCarrier(arg)
				if err != nil {
					return err
				}
				uploads = append(uploads, upload)
			}

			if err := ctx.preValidateCarriers(cmd.Context(), uploads); err != nil {
				return err
			}

			req := stego.EmbedRequest{
				Password:       password,
				EncryptionType: encryptionType,
			}
			for _, upload := range uploads {
				req.Carriers = append(req.Carriers, upload.asFile())
			}
			if contentPath != "" {
				content, err := openCarrier(contentPath)
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

			renderer := newProgressRenderer(cmd.OutOrStdout(), "Embedding batch")
			state := progress.NewState(renderer.Update)
			report, err := tr.RunBatch(cmd.Context(), req, state)
			renderer.Finish()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Batch operation %s finished\n", report.Operation.ID)

			if len(report.Items) > 0 {
				rows := make([][]string, 0, len(report.Items))
				for _, item := range report.Items {
					status := "ok"
					detail := item.OutputFilename
					if !item.Success {
						status = "failed"
						detail = item.Error
					}
					rows = append(rows, []string{item.Filename, status, detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Carrier", "Status", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
			}

			ctx.recordHistory(cmd.Context(), report.Operation, report.Outcome, "")
			return reportOutcome(cmd, report.Operation, report.Outcome)
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Text payload to hide")
	cmd.Flags().StringVar(&contentPath, "content-file", "", "File payload to hide instead of text")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password protecting the payload")
	cmd.Flags().StringVar(&encryptionType, "encryption", "aes256", "Encryption algorithm (none to disable)")

	return cmd
}
