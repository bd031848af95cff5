package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/pathfinder/internal/stream"
	"github.com/specialistvlad/pathfinder/internal/visit"
	"github.com/specialistvlad/pathfinder/internal/watch"
)

func newWatchCommand(flags *globalFlags) *cobra.Command {
	rf := &routeFlags{}
	var (
		url      string
		insecure bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream a search from a running server",
		Long: `Run a search on a pathfinder server over socket.io and print every node
visit as a JSON line as it happens, followed by the result. Interrupting the
command cancels the search on the server.

Example:
  pathfinder watch --url http://localhost:8080 --graph montreal --from 1 --to 42`,
		Args: noArgs,
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&url, "url", "http://localhost:8080", "Server base URL.")
	cmd.Flags().BoolVar(&insecure, "insecure-skip-verify", false, "Skip TLS certificate verification.")

	cmd.RunE = flags.runE(func(cmd *cobra.Command, _ []string) error {
		ctx, _, err := flags.settings(cmd, flags.appConfig())
		if err != nil {
			return err
		}

		client, err := watch.Dial(ctx, watch.Options{URL: url, InsecureSkipVerify: insecure})
		if err != nil {
			return err
		}
		defer client.Close()

		from, to := rf.from, rf.to
		req := stream.FindPathRequest{
			PlaceName:      rf.graph,
			StartNode:      &from,
			EndNode:        &to,
			Algorithm:      rf.algorithm,
			AstarHeuristic: rf.heuristic,
		}
		if rf.timeout > 0 {
			req.Timeout = rf.timeout.String()
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		res, err := client.FindPath(ctx, req, func(ev visit.Event) {
			_ = enc.Encode(ev)
		})
		if err != nil {
			if errors.Is(err, watch.ErrRejected) {
				return &ExitError{Code: ExitUsage, Message: err.Error()}
			}
			return fmt.Errorf("watch failed: %w", err)
		}
		if err := outputJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		return outcomeError(res.Summary)
	})
	return cmd
}
