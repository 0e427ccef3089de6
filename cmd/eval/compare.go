package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FlanaganSe/agent-eval-kit/internal/config"
	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
	"github.com/FlanaganSe/agent-eval-kit/internal/store"
)

var errRegression = errors.New("ai-eval: regression detected")

type compareOptions struct {
	base    string
	compare string
	output  string
}

func newCompareCmd(st *cliState) *cobra.Command {
	var opts compareOptions

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two persisted runs",
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
			return runCompare(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.base, "base", "", "base run id (required)")
	cmd.Flags().StringVar(&opts.compare, "compare", "", "compare run id (required)")
	cmd.Flags().StringVar(&opts.output, "output", "", "output format: table|json (overrides config)")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("compare")

	return cmd
}

func runCompare(cmd *cobra.Command, st *cliState, opts *compareOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("compare: missing config (internal error)")
	}

	output, err := resolveOutputFormat(opts.output, st.cfg.Evaluation.OutputFormat)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	artifacts, err := store.NewRunArtifactStore(st.cfg.Evaluation.ArtifactsDir)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	baseRun, err := artifacts.Load(opts.base)
	if err != nil {
		return fmt.Errorf("compare: load base %q: %w", opts.base, err)
	}
	compareRun, err := artifacts.Load(opts.compare)
	if err != nil {
		return fmt.Errorf("compare: load compare %q: %w", opts.compare, err)
	}

	cmpResult := eval.CompareRuns(baseRun, compareRun, eval.CompareOptions{})

	switch output {
	case FormatTable:
		fmt.Fprint(cmd.OutOrStdout(), formatComparisonTable(cmpResult))
	case FormatJSON:
		data, err := json.Marshal(cmpResult)
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}

	if cmpResult.Summary.Regressions > 0 {
		return errRegression
	}
	return nil
}
