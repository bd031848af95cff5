package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/pathfinder/internal/app"
)

func newGraphsCommand(flags *globalFlags) *cobra.Command {
	var human bool

	cmd := &cobra.Command{
		Use:   "graphs",
		Short: "List the graphs in the graph store",
		Args:  noArgs,
	}
	cmd.Flags().BoolVar(&human, "human", false, "Print a table instead of JSON.")

	cmd.RunE = flags.runE(func(cmd *cobra.Command, _ []string) error {
		ctx, settings, err := flags.settings(cmd, flags.appConfig())
		if err != nil {
			return err
		}

		infos, err := app.ListGraphs(ctx, settings)
		if err != nil {
			return err
		}
		if !human {
			return outputJSON(cmd.OutOrStdout(), infos)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNODES\tEDGES\tCREATED")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", info.ID, info.NodeCount, info.EdgeCount, info.CreatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	})
	return cmd
}
