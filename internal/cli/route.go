package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/pathfinder/internal/app"
	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/search"
	"github.com/specialistvlad/pathfinder/internal/session"
)

type routeFlags struct {
	graph     string
	from      int64
	to        int64
	algorithm string
	heuristic string
	timeout   time.Duration
	events    bool
}

func (r *routeFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&r.graph, "graph", "g", "", "Graph id in the store (a graph file for route).")
	f.Int64Var(&r.from, "from", 0, "Start node id.")
	f.Int64Var(&r.to, "to", 0, "End node id.")
	f.StringVarP(&r.algorithm, "algorithm", "a", "", "Search algorithm: uniform-cost (dijkstra) or heuristic-guided (astar).")
	f.StringVar(&r.heuristic, "heuristic", "", "Heuristic for heuristic-guided search: zero, haversine, manhattan or euclidean.")
	f.DurationVar(&r.timeout, "timeout", 0, "Search deadline; zero uses the configured default.")
	_ = cmd.MarkFlagRequired("graph")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
}

func newRouteCommand(flags *globalFlags) *cobra.Command {
	rf := &routeFlags{}

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Compute one shortest path without a server",
		Long: `Compute one shortest path and print the result as JSON.

--graph is a graph file (.json, .yaml, .yml, .gob) or the id of a graph in
the configured store. With --events every expanded node is printed as a JSON
line before the result.

Examples:
  pathfinder route --graph montreal.json --from 1 --to 42
  pathfinder route --db graphs.db --graph montreal --from 1 --to 42 -a dijkstra --events`,
		Args: noArgs,
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&rf.events, "events", false, "Print node visits as JSON lines.")

	cmd.RunE = flags.runE(func(cmd *cobra.Command, _ []string) error {
		if rf.timeout < 0 {
			return usageError("--timeout must not be negative")
		}
		ctx, settings, err := flags.settings(cmd, flags.appConfig())
		if err != nil {
			return err
		}

		var events io.Writer
		if rf.events {
			events = cmd.OutOrStdout()
		}
		res, err := app.Route(ctx, settings, app.RouteOptions{
			Graph:     rf.graph,
			Start:     graph.NodeID(rf.from),
			End:       graph.NodeID(rf.to),
			Algorithm: rf.algorithm,
			Heuristic: rf.heuristic,
			Timeout:   rf.timeout,
			Events:    events,
		})
		if err != nil {
			return requestError(err)
		}
		if err := outputJSON(cmd.OutOrStdout(), res.Summary()); err != nil {
			return err
		}
		return outcomeError(res.Summary())
	})
	return cmd
}

// outcomeError maps non-found outcomes to exit codes.
func outcomeError(s session.Summary) error {
	switch s.Outcome {
	case search.OutcomeUnreachable:
		return &ExitError{Code: ExitNoPath, Message: fmt.Sprintf("no path found in graph %q", s.PlaceName)}
	case search.OutcomeCancelled:
		return &ExitError{Code: ExitCancelled, Message: fmt.Sprintf("search cancelled: %s", s.Cause)}
	default:
		return nil
	}
}
