package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/indico-client/constants"
	"github.com/joseph-ayodele/indico-client/internal/export"
	"github.com/joseph-ayodele/indico-client/internal/journal"
	"github.com/joseph-ayodele/indico-client/internal/services/submit"
	"github.com/joseph-ayodele/indico-client/mutation"
	"github.com/joseph-ayodele/indico-client/query"
)

func newJournalCmd(a *app) *cobra.Command {
	var (
		workflowID int
		status     string
		since      time.Duration
	)
	filter := func() journal.Filter {
		f := journal.Filter{WorkflowID: workflowID, Status: constants.JournalStatus(status)}
		if since > 0 {
			t := time.Now().Add(-since)
			f.Since = &t
		}
		return f
	}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the local record of submissions",
	}
	pf := cmd.PersistentFlags()
	pf.IntVarP(&workflowID, "workflow", "w", 0, "only this workflow")
	pf.StringVar(&status, "status", "", "only entries with this status")
	pf.DurationVar(&since, "since", 0, "only entries created within this window, e.g. 72h")

	list := &cobra.Command{
		Use:   "list",
		Short: "List journaled submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.Entries(cmd.Context(), filter())
			if err != nil {
				return err
			}
			type row struct {
				SubmissionID int       `json:"submission_id"`
				BatchID      string    `json:"batch_id"`
				WorkflowID   int       `json:"workflow_id"`
				InputKind    string    `json:"input_kind"`
				Status       string    `json:"status"`
				CreatedAt    time.Time `json:"created_at"`
				UpdatedAt    time.Time `json:"updated_at"`
			}
			rows := make([]row, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, row{
					SubmissionID: e.SubmissionID,
					BatchID:      e.BatchID.String(),
					WorkflowID:   e.WorkflowID,
					InputKind:    e.InputKind,
					Status:       string(e.Status),
					CreatedAt:    e.CreatedAt,
					UpdatedAt:    e.UpdatedAt,
				})
			}
			return a.printJSON(rows)
		},
	}

	var workers int
	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the current status of unfinished submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			store, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			svc := submit.NewService(
				mutation.NewWorkflowSubmission(a.client),
				query.NewSubmissionQuery(a.client, a.logger),
				nil,
				store,
				a.logger,
			)
			stats, err := svc.Refresh(cmd.Context(), filter(), workers)
			if err != nil {
				return err
			}
			return a.printJSON(map[string]int{"checked": stats.Checked, "failed": stats.Failed})
		},
	}
	refresh.Flags().IntVar(&workers, "workers", 4, "concurrent status reads")

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the journal to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			data, err := export.NewService(store, a.logger).ExportJournalXLSX(cmd.Context(), filter())
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = a.out.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			a.logger.Info("journal.export.ok", "path", out, "bytes", len(data))
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "indico-journal.xlsx", "output path, - for stdout")

	cmd.AddCommand(list, refresh, exportCmd)
	return cmd
}
