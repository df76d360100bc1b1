package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/indico-client/entity"
	"github.com/joseph-ayodele/indico-client/mutation"
	"github.com/joseph-ayodele/indico-client/query"
	"github.com/joseph-ayodele/indico-client/storage"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		files    []string
		wait     bool
		fetch    bool
		interval time.Duration
		opts     = entity.NewExtractionOptions()
		flags    struct {
			singleColumn, text, rawText, tables, metadata, forceRender, detailed bool
		}
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run document extraction on local files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			ctx := cmd.Context()
			options := opts.
				SingleColumn(flags.singleColumn).
				Text(flags.text).
				RawText(flags.rawText).
				Tables(flags.tables).
				Metadata(flags.metadata).
				ForceRender(flags.forceRender).
				Detailed(flags.detailed).
				Build()

			jobIDs, err := mutation.NewDocumentExtraction(a.client).Files(files...).Options(options).Execute(ctx)
			if err != nil {
				return err
			}
			if !wait && !fetch {
				return a.printJSON(map[string]any{"job_ids": jobIDs})
			}

			jq := query.NewJobQuery(a.client, a.logger)
			retriever := storage.NewRetriever(a.client)
			results := make([]extractResult, 0, len(jobIDs))
			for _, id := range jobIDs {
				job, err := jq.Wait(ctx, id, interval)
				if err != nil {
					return err
				}
				r := extractResult{JobID: id, Status: job.Status, Result: job.Result}
				if fetch && job.Status == entity.JobSuccess {
					doc, err := fetchJobResult(cmd, retriever, job)
					if err != nil {
						return err
					}
					r.Document = doc
				}
				results = append(results, r)
			}
			return a.printJSON(results)
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&files, "file", "f", nil, "local file to extract (repeatable)")
	f.BoolVar(&wait, "wait", false, "wait for the extraction jobs to finish")
	f.BoolVar(&fetch, "fetch", false, "wait and download the extraction results")
	f.DurationVar(&interval, "interval", time.Second, "job polling interval")
	f.BoolVar(&flags.singleColumn, "single-column", false, "assume the input is a single column of text")
	f.BoolVar(&flags.text, "text", false, "return body text for each page")
	f.BoolVar(&flags.rawText, "raw-text", false, "return all body text in a single block")
	f.BoolVar(&flags.tables, "tables", false, "return table contents separately from body text")
	f.BoolVar(&flags.metadata, "metadata", false, "return document metadata")
	f.BoolVar(&flags.forceRender, "force-render", false, "render pages to PNG instead of using native PDF text")
	f.BoolVar(&flags.detailed, "detailed", false, "include detailed positional information")
	cobra.CheckErr(cmd.MarkFlagRequired("file"))
	return cmd
}

type extractResult struct {
	JobID    string           `json:"job_id"`
	Status   entity.JobStatus `json:"status"`
	Result   json.RawMessage  `json:"result,omitempty"`
	Document json.RawMessage  `json:"document,omitempty"`
}

// fetchJobResult follows the storage url a finished extraction job points at.
func fetchJobResult(cmd *cobra.Command, r *storage.Retriever, job entity.Job) (json.RawMessage, error) {
	var ref struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(job.Result, &ref); err != nil || ref.URL == "" {
		return nil, fmt.Errorf("job %s: result has no storage url", job.ID)
	}
	raw, err := r.Retrieve(cmd.Context(), ref.URL)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		b, _ := json.Marshal(string(raw))
		return b, nil
	}
	return raw, nil
}
