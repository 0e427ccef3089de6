package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FlanaganSe/agent-eval-kit/internal/config"
	"github.com/FlanaganSe/agent-eval-kit/internal/store"

	"github.com/FlanaganSe/agent-eval-kit/api"
)

type serveOptions struct {
	addr string
}

func newServeCmd(st *cliState) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only run reporting API",
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
			artifacts, err := store.NewRunArtifactStore(st.cfg.Evaluation.ArtifactsDir)
			if err != nil {
				return fmt.Errorf("%w: %v", errConfig, err)
			}
			srv, err := api.NewServer(artifacts)
			if err != nil {
				return fmt.Errorf("%w: %v", errConfig, err)
			}
			if err := srv.Run(opts.addr); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "address to listen on")
	return cmd
}
