package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/pathfinder/internal/app"
	"github.com/specialistvlad/pathfinder/internal/graph"
)

func newImportCommand(flags *globalFlags) *cobra.Command {
	var place string

	cmd := &cobra.Command{
		Use:   "import <file|dir>",
		Short: "Import graph files into the graph store",
		Long: `Import graph files into the configured graph store.

A single file is stored under --place, or its file name without extension.
A directory is searched recursively and every graph file is stored under its
file name.

Examples:
  pathfinder import --db graphs.db --place montreal montreal_drive.json
  pathfinder import --graphs-dir graphs ./exports`,
		Args: exactArgs(1),
	}
	cmd.Flags().StringVarP(&place, "place", "p", "", "Place name (graph id) for a single file.")

	cmd.RunE = flags.runE(func(cmd *cobra.Command, args []string) error {
		ctx, settings, err := flags.settings(cmd, flags.appConfig())
		if err != nil {
			return err
		}

		infos, err := app.Import(ctx, settings, place, args[0])
		if err != nil {
			if errors.Is(err, graph.ErrInvalidGraph) {
				return &ExitError{Code: ExitUsage, Message: err.Error()}
			}
			return fmt.Errorf("import failed after %d graph(s): %w", len(infos), err)
		}
		return outputJSON(cmd.OutOrStdout(), infos)
	})
	return cmd
}
