package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/indico-client/client"
	"github.com/joseph-ayodele/indico-client/internal/ingest"
	"github.com/joseph-ayodele/indico-client/internal/journal"
	"github.com/joseph-ayodele/indico-client/internal/services/submit"
	"github.com/joseph-ayodele/indico-client/mutation"
	"github.com/joseph-ayodele/indico-client/query"
)

func newSubmitCmd(a *app) *cobra.Command {
	var (
		workflowID    int
		files         []string
		dir           string
		urls          []string
		exts          []string
		skipSubmitted bool
		noJournal     bool
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit local files or URLs to a workflow",
		Example: `  indico submit --workflow 42 --file a.pdf --file b.pdf
  indico submit --workflow 42 --dir ./invoices --skip-submitted
  indico submit --workflow 42 --url https://example.com/doc.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hasFiles := len(files) > 0 || dir != ""
			switch {
			case !hasFiles && len(urls) == 0:
				return client.InvalidArgumentf("submit", "one of --file/--dir or --url must be specified")
			case hasFiles && len(urls) > 0:
				return client.InvalidArgumentf("submit", "only one of --file/--dir or --url must be specified")
			}
			if err := a.requireAuth(); err != nil {
				return err
			}

			ctx := cmd.Context()
			var store journal.Store
			if !noJournal {
				s, err := a.openJournal(ctx)
				if err != nil {
					return err
				}
				defer func() { _ = s.Close() }()
				store = s
			}

			svc := submit.NewService(
				mutation.NewWorkflowSubmission(a.client),
				query.NewSubmissionQuery(a.client, a.logger),
				ingest.NewCollector(ingest.ExtSet(exts), true, a.logger),
				store,
				a.logger,
			)

			var (
				res submit.Result
				err error
			)
			if hasFiles {
				res, err = svc.SubmitFiles(ctx, submit.FilesRequest{
					WorkflowID:    workflowID,
					Paths:         files,
					Dir:           dir,
					SkipSubmitted: skipSubmitted,
				})
			} else {
				res, err = svc.SubmitURLs(ctx, workflowID, urls)
			}
			if len(res.SubmissionIDs) > 0 || len(res.Skipped) > 0 {
				if perr := a.printJSON(submitOutput(res)); perr != nil && err == nil {
					err = perr
				}
			}
			return err
		},
	}
	f := cmd.Flags()
	f.IntVarP(&workflowID, "workflow", "w", 0, "workflow id (required)")
	f.StringArrayVarP(&files, "file", "f", nil, "local file to submit (repeatable)")
	f.StringVar(&dir, "dir", "", "submit every document found under this directory")
	f.StringArrayVarP(&urls, "url", "u", nil, "remote document URL to submit (repeatable)")
	f.StringSliceVar(&exts, "ext", nil, "extensions picked up by --dir (default: common document types)")
	f.BoolVar(&skipSubmitted, "skip-submitted", false, "skip files whose content was already submitted to this workflow")
	f.BoolVar(&noJournal, "no-journal", false, "do not record the submission in the journal")
	cobra.CheckErr(cmd.MarkFlagRequired("workflow"))
	return cmd
}

type submitResult struct {
	BatchID       string   `json:"batch_id,omitempty"`
	SubmissionIDs []int    `json:"submission_ids"`
	Submitted     []string `json:"submitted,omitempty"`
	Skipped       []string `json:"skipped,omitempty"`
}

func submitOutput(res submit.Result) submitResult {
	out := submitResult{
		SubmissionIDs: res.SubmissionIDs,
		Submitted:     res.Submitted,
		Skipped:       res.Skipped,
	}
	if out.SubmissionIDs == nil {
		out.SubmissionIDs = []int{}
	}
	if len(res.SubmissionIDs) > 0 {
		out.BatchID = res.BatchID.String()
	}
	return out
}
