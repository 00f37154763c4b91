package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ascend-ai/ascend/core"
)

var (
	historyLimit  int
	historyOffset int
	historyKind   string
)

var historyCmd = &cobra.Command{
	Use:   "history <student_id>",
	Short: "List stored history records for a student",
	Long: `List a student's persisted operation records, newest first. Only the
sqlite history backend survives between invocations; configure it with
history_backend: sqlite or ASCEND_HISTORY_BACKEND=sqlite.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := buildHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		records, err := store.List(cmd.Context(), args[0],
			core.WithLimit(historyLimit),
			core.WithOffset(historyOffset),
			core.WithKind(core.RecordKind(historyKind)),
		)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No records found.")
			return nil
		}
		for _, rec := range records {
			status := "ok"
			if !rec.Success {
				status = "failed: " + rec.Error
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s  %-20s  %s\n",
				rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Kind, rec.TaskType, status)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "maximum records to list (default 50)")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "records to skip from the newest")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "filter by record kind (query, schedule, material, guidance, assessment)")
	rootCmd.AddCommand(historyCmd)
}
