package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FlanaganSe/agent-eval-kit/internal/config"
	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
	"github.com/FlanaganSe/agent-eval-kit/internal/llm"
	"github.com/FlanaganSe/agent-eval-kit/internal/store"
)

type judgeOptions struct {
	runID     string
	suitePath string
	output    string
}

func newJudgeCmd(st *cliState) *cobra.Command {
	var opts judgeOptions

	cmd := &cobra.Command{
		Use:   "judge",
		Short: "Re-grade a persisted run without re-invoking the target",
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
			return runJudgeOnly(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.runID, "run", "", "persisted run id to re-grade (required)")
	cmd.Flags().StringVar(&opts.suitePath, "suite", "", "path to the .jsonl/.yaml/.yml case source used for the run (required)")
	cmd.Flags().StringVar(&opts.output, "output", "", "output format: table|json (overrides config)")
	_ = cmd.MarkFlagRequired("run")
	_ = cmd.MarkFlagRequired("suite")

	return cmd
}

func runJudgeOnly(cmd *cobra.Command, st *cliState, opts *judgeOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("judge: missing config (internal error)")
	}

	output, err := resolveOutputFormat(opts.output, st.cfg.Evaluation.OutputFormat)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	suite, err := loadSuite(opts.suitePath)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	provider, err := llm.DefaultProviderFromConfig(st.cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}
	judge := llm.JudgeFromProvider(provider)

	artifacts, err := store.NewRunArtifactStore(st.cfg.Evaluation.ArtifactsDir)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	previous, err := artifacts.Load(opts.runID)
	if err != nil {
		return fmt.Errorf("judge: load run %q: %w", opts.runID, err)
	}

	run, err := eval.RunJudgeOnly(cmd.Context(), previous, suite, eval.RunOptions{
		Judge: judge,
		NewID: store.NewRunID,
	})
	if err != nil {
		return fmt.Errorf("judge: %w", err)
	}

	if err := artifacts.Save(run); err != nil {
		return fmt.Errorf("judge: %w", err)
	}

	index, err := store.OpenRunIndex(st.cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("judge: %w", err)
	}
	defer index.Close()
	if err := index.IndexRun(cmd.Context(), run); err != nil {
		return fmt.Errorf("judge: %w", err)
	}

	switch output {
	case FormatTable:
		fmt.Fprint(cmd.OutOrStdout(), formatRunTable(run))
	case FormatJSON:
		data, err := eval.SerializeRun(run)
		if err != nil {
			return fmt.Errorf("judge: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}

	if !run.Summary.GateResult.Pass {
		return errTestsFailed
	}
	return nil
}
