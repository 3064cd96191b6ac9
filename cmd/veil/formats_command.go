package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "Show carrier formats the service accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient()
			if err != nil {
				return err
			}
			formats, err := client.SupportedFormats(cmd.Context())
			if err != nil {
				return err
			}
			if len(formats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "The service did not report any supported formats.")
				return nil
			}

			rows := make([][]string, 0, len(formats))
			for _, category := range formats.Categories() {
				spec := formats[category]
				rows = append(rows, []string{
					category,
					strings.Join(spec.CarrierFormats, ", "),
					strings.Join(spec.ContentFormats, ", "),
					fmt.Sprintf("%d MB", spec.MaxSizeMB),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Category", "Carrier Formats", "Content Formats", "Max Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}
