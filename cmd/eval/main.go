package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/FlanaganSe/agent-eval-kit/internal/config"
)

type cliState struct {
	configPath string
	cfg        *config.Config
}

var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr
)

var (
	errUserAbort = errors.New("ai-eval: aborted by user")
	errConfig    = errors.New("ai-eval: config error")
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		switch {
		case errors.Is(err, errUserAbort):
			osExit(130)
		case errors.Is(err, errTestsFailed), errors.Is(err, errRegression):
			osExit(1)
		case errors.Is(err, errConfig):
			fmt.Fprintln(stderrWriter, err)
			osExit(2)
		default:
			fmt.Fprintln(stderrWriter, err)
			osExit(3)
		}
		return
	}
}

func newRootCmd() *cobra.Command {
	st := &cliState{configPath: config.DefaultPath}

	root := &cobra.Command{
		Use:           "ai-eval",
		Short:         "Run and inspect agent-evals evaluation suites",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", st.configPath, "path to config file")

	root.AddCommand(newRunCmd(st))
	root.AddCommand(newJudgeCmd(st))
	root.AddCommand(newCompareCmd(st))
	root.AddCommand(newListCmd(st))
	root.AddCommand(newHistoryCmd(st))
	root.AddCommand(newServeCmd(st))
	return root
}
