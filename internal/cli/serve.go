package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/pathfinder/internal/app"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the socket.io streaming endpoint",
		Long: `Run the HTTP API and the socket.io streaming endpoint until interrupted.

Examples:
  pathfinder serve --config pathfinder.hcl
  pathfinder serve --db graphs.db --addr :9000 --log-format text`,
		Args: noArgs,
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overriding server.address.")

	cmd.RunE = flags.runE(func(cmd *cobra.Command, _ []string) error {
		cfg := flags.appConfig()
		cfg.Address = addr
		_, settings, err := flags.settings(cmd, cfg)
		if err != nil {
			return err
		}

		a, err := app.NewApp(cmd.OutOrStdout(), settings)
		if err != nil {
			return fmt.Errorf("failed to start: %w", err)
		}
		return a.Run(cmd.Context())
	})
	return cmd
}

func noArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError("unexpected arguments: %v", args)
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError("accepts %d arg(s), received %d", n, len(args))
		}
		return nil
	}
}
