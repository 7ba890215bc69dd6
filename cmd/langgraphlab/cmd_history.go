package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var clearRun bool
	cmd := &cobra.Command{
		Use:   "history <run-id>",
		Short: "List the checkpoints saved for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.checkpoints == nil {
				return errors.New("no checkpoint store, set --checkpoint")
			}
			ctx := cmd.Context()
			runID := args[0]
			cps, err := a.checkpoints.List(ctx, runID)
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			p.Title("Run " + runID)
			if len(cps) == 0 {
				p.Note("no checkpoints")
				return nil
			}
			for _, cp := range cps {
				p.Field(fmt.Sprintf("v%d %s", cp.Version, cp.NodeName), cp.Timestamp.Format(time.RFC3339))
			}
			if clearRun {
				if err := a.checkpoints.Clear(ctx, runID); err != nil {
					return err
				}
				p.Note(fmt.Sprintf("cleared %d checkpoints", len(cps)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearRun, "clear", false, "delete the checkpoints after listing them")
	return cmd
}
