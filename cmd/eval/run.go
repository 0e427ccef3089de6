package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FlanaganSe/agent-eval-kit/internal/config"
	"github.com/FlanaganSe/agent-eval-kit/internal/eval"
	"github.com/FlanaganSe/agent-eval-kit/internal/llm"
	"github.com/FlanaganSe/agent-eval-kit/internal/store"
	"github.com/FlanaganSe/agent-eval-kit/internal/testcase"
)

var errTestsFailed = errors.New("ai-eval: gate failed")

type runOptions struct {
	suitePath string
	output    string
	timeoutMs int64
}

func newRunCmd(st *cliState) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an evaluation suite",
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
			return runSuiteCmd(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.suitePath, "suite", "", "path to a .jsonl/.yaml/.yml case source (required)")
	cmd.Flags().StringVar(&opts.output, "output", "", "output format: table|json (overrides config)")
	cmd.Flags().Int64Var(&opts.timeoutMs, "timeout-ms", 0, "per-case timeout in milliseconds (overrides config)")
	_ = cmd.MarkFlagRequired("suite")

	return cmd
}

func runSuiteCmd(cmd *cobra.Command, st *cliState, opts *runOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("run: missing config (internal error)")
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
	target := llm.TargetFromProvider(provider, nil, 5)
	judge := llm.JudgeFromProvider(provider)

	artifacts, err := store.NewRunArtifactStore(st.cfg.Evaluation.ArtifactsDir)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	index, err := store.OpenRunIndex(st.cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer index.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runOpts := eval.RunOptions{
		TimeoutMs: resolveTimeoutMs(opts.timeoutMs, st.cfg),
		Judge:     judge,
		NewID:     store.NewRunID,
	}

	run, err := eval.RunSuite(ctx, suite, target, runOpts)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return errUserAbort
		}
		return fmt.Errorf("run: %w", err)
	}

	if err := artifacts.Save(run); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if err := index.IndexRun(ctx, run); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	switch output {
	case FormatTable:
		fmt.Fprint(cmd.OutOrStdout(), formatRunTable(run))
	case FormatJSON:
		data, err := eval.SerializeRun(run)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}

	if !run.Summary.GateResult.Pass {
		return errTestsFailed
	}
	return nil
}

func loadSuite(path string) (eval.Suite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return eval.Suite{}, fmt.Errorf("missing --suite")
	}
	if strings.HasSuffix(strings.ToLower(path), ".yaml") || strings.HasSuffix(strings.ToLower(path), ".yml") {
		ts, err := testcase.LoadFromFile(path)
		if err != nil {
			return eval.Suite{}, err
		}
		return testcase.ToSuite(ts)
	}

	cases, err := testcase.LoadCases(path)
	if err != nil {
		return eval.Suite{}, err
	}
	return eval.Suite{ID: suiteIDFromPath(path), Cases: cases}, nil
}

func suiteIDFromPath(path string) string {
	base := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}
	return strings.TrimSuffix(base, ".jsonl")
}

func resolveTimeoutMs(flagValue int64, cfg *config.Config) int64 {
	if flagValue > 0 {
		return flagValue
	}
	if cfg.Evaluation.Timeout > 0 {
		return cfg.Evaluation.Timeout.Milliseconds()
	}
	return 0
}
