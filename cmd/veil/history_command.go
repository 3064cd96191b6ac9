package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"veil/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded operations",
	}
	cmd.AddCommand(newHistoryListCommand(ctx))
	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryStatsCommand(ctx))
	return cmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent operations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No operations recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				detail := record.OutputFile
				if record.Outcome == "failure" {
					detail = record.UserMessage
				}
				rows = append(rows, []string{
					record.OperationID,
					record.Kind,
					record.Mode,
					record.Outcome,
					record.CreatedAt.Format("2006-01-02 15:04:05"),
					detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Operation", "Kind", "Mode", "Outcome", "Recorded", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of records to show")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <operation-id>",
		Short: "Show one recorded operation in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			record, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, history.ErrNotFound) {
					return fmt.Errorf("no record for operation %s", args[0])
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Operation:  %s\n", record.OperationID)
			fmt.Fprintf(out, "Kind:       %s (%s)\n", record.Kind, record.Mode)
			fmt.Fprintf(out, "Outcome:    %s\n", record.Outcome)
			fmt.Fprintf(out, "Recorded:   %s\n", record.CreatedAt.Format("2006-01-02 15:04:05"))
			if record.OutputFile != "" {
				fmt.Fprintf(out, "Output:     %s\n", record.OutputFile)
			}
			if record.Category != "" {
				fmt.Fprintf(out, "Category:   %s\n", record.Category)
				fmt.Fprintf(out, "Message:    %s\n", record.UserMessage)
			}
			if record.RawError != "" {
				fmt.Fprintf(out, "Raw error:  %s\n", record.RawError)
			}
			if record.ResultJSON != "" {
				fmt.Fprintf(out, "Result:     %s\n", record.ResultJSON)
			}
			return nil
		},
	}
}

func newHistoryStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize recorded outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if len(stats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No operations recorded yet.")
				return nil
			}

			outcomes := make([]string, 0, len(stats))
			for outcome := range stats {
				outcomes = append(outcomes, outcome)
			}
			sort.Strings(outcomes)

			rows := make([][]string, 0, len(outcomes))
			for _, outcome := range outcomes {
				rows = append(rows, []string{outcome, strconv.Itoa(stats[outcome])})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Outcome", "Count"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}
