package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/indico-client/query"
)

func newJobCmd(a *app) *cobra.Command {
	var (
		wait     bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "job <id>",
		Short: "Show the status of an asynchronous job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			jq := query.NewJobQuery(a.client, a.logger)
			if wait {
				job, err := jq.Wait(cmd.Context(), args[0], interval)
				if err != nil {
					return err
				}
				return a.printJSON(job)
			}
			job, err := jq.Execute(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(job)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the job finishes")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "polling interval")
	return cmd
}
