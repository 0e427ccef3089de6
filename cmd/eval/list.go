package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FlanaganSe/agent-eval-kit/internal/config"
	"github.com/FlanaganSe/agent-eval-kit/internal/store"
)

type listOptions struct {
	limit int
}

func newListCmd(st *cliState) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed runs, most recent first",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return fmt.Errorf("%w: %v", errConfig, err)
			}
			st.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, st, &opts)
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", 50, "max runs to list")
	return cmd
}

func runList(cmd *cobra.Command, st *cliState, opts *listOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("list: missing config (internal error)")
	}

	index, err := store.OpenRunIndex(st.cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}
	defer index.Close()

	entries, err := index.ListRuns(cmd.Context(), opts.limit)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN_ID\tSUITE\tMODE\tTIMESTAMP\tPASS_RATE\tCOST\tGATE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%.4f\t%s\n",
			e.ID, e.SuiteID, e.Mode, e.Timestamp, e.PassRate, e.TotalCost, coloredStatus(e.GatePass))
	}
	return tw.Flush()
}
