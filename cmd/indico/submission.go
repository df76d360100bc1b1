package main

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/indico-client/client"
	"github.com/joseph-ayodele/indico-client/query"
	"github.com/joseph-ayodele/indico-client/storage"
)

func newSubmissionCmd(a *app) *cobra.Command {
	var withResult bool
	cmd := &cobra.Command{
		Use:   "submission <id>",
		Short: "Show a workflow submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return client.InvalidArgumentf("submission", "submission id must be an integer: %q", args[0])
			}
			sub, err := query.NewSubmissionQuery(a.client, a.logger).Execute(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !withResult || sub.ResultFile == "" {
				return a.printJSON(sub)
			}
			var result json.RawMessage
			if err := storage.NewRetriever(a.client).RetrieveJSON(cmd.Context(), sub.ResultFile, &result); err != nil {
				return err
			}
			return a.printJSON(map[string]any{"submission": sub, "result": result})
		},
	}
	cmd.Flags().BoolVar(&withResult, "result", false, "download the submission result file")
	return cmd
}
