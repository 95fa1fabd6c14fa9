package main

import (
	"bpxgen/internal/app"
	"bpxgen/internal/logger"

	"github.com/spf13/cobra"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the derive API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := root.session()
			if err != nil {
				return err
			}
			defer cleanup()
			return a.Serve(cmd.Context())
		},
	}
}

func newWatchCmd(root *rootFlags) *cobra.Command {
	out := &outputFlags{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Derive again whenever the config or BPX documents change",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := root.session()
			if err != nil {
				return err
			}
			defer cleanup()
			cfg := a.Config()
			format, path, err := out.resolve(cfg.Output.Format, cfg.Resolve(cfg.Output.Path))
			if err != nil {
				return err
			}
			return a.Watch(cmd.Context(), app.WatchOptions{ConfigPath: root.configPath}, func(evt app.WatchEvent) {
				if evt.Err != nil {
					logger.Errorf("derivation failed: %v", evt.Err)
					return
				}
				if err := writeResult(evt.Result, format, path, out.summary); err != nil {
					logger.Errorf("writing result failed: %v", err)
				}
			})
		},
	}
	out.register(cmd)
	return cmd
}
