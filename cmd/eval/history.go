package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FlanaganSe/agent-eval-kit/internal/config"
	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
	"github.com/FlanaganSe/agent-eval-kit/internal/store"
)

type historyOptions struct {
	output string
}

func newHistoryCmd(st *cliState) *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history <run-id>",
		Short: "Show full trial-level detail for a persisted run",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return fmt.Errorf("%w: %v", errConfig, err)
			}
			st.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd, st, &opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.output, "output", "", "output format: table|json (overrides config)")
	return cmd
}

func runHistoryShow(cmd *cobra.Command, st *cliState, opts *historyOptions, runID string) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("history: missing config (internal error)")
	}

	runID = strings.TrimSpace(runID)
	if runID == "" {
		return fmt.Errorf("history: missing run id")
	}

	output, err := resolveOutputFormat(opts.output, st.cfg.Evaluation.OutputFormat)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	artifacts, err := store.NewRunArtifactStore(st.cfg.Evaluation.ArtifactsDir)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	run, err := artifacts.Load(runID)
	if err != nil {
		return fmt.Errorf("history: run %q: %w", runID, err)
	}

	switch output {
	case FormatTable:
		fmt.Fprint(cmd.OutOrStdout(), formatRunTable(run))
	case FormatJSON:
		data, err := eval.SerializeRun(run)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}
	return nil
}
