package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/pathfinder/internal/app"
	"github.com/specialistvlad/pathfinder/internal/config"
	"github.com/specialistvlad/pathfinder/internal/ctxlog"
)

// Process exit codes.
const (
	ExitRuntime   = 1 // unexpected runtime failure
	ExitUsage     = 2 // invalid flags, arguments or configuration
	ExitNoPath    = 3 // the destination is unreachable
	ExitCancelled = 4 // the search was cancelled or timed out
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	dbPath     string
	graphsDir  string

	started bool
}

func (g *globalFlags) appConfig() app.Config {
	return app.Config{
		ConfigPath: g.configPath,
		LogLevel:   g.logLevel,
		LogFormat:  g.logFormat,
		DBPath:     g.dbPath,
		GraphsDir:  g.graphsDir,
	}
}

// settings resolves the configuration and returns a context carrying a
// logger that writes to the command's stderr.
func (g *globalFlags) settings(cmd *cobra.Command, cfg app.Config) (context.Context, *config.Settings, error) {
	settings, err := app.LoadSettings(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	logger := app.NewLogger(settings, cmd.ErrOrStderr())
	return ctxlog.WithLogger(cmd.Context(), logger), settings, nil
}

// NewRootCommand builds the command tree. Output goes to stdout, logs and
// errors to stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root, _ := newRoot(stdout, stderr)
	return root
}

func newRoot(stdout, stderr io.Writer) (*cobra.Command, *globalFlags) {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "pathfinder",
		Short: "Shortest paths over road networks, with live search streaming",
		Long: `pathfinder computes shortest paths over road-network graphs (osmnx/networkx
dumps in JSON, YAML or gob) with uniform-cost or heuristic-guided search.

It serves an HTTP API and a socket.io endpoint that streams every node the
search expands, and offers offline commands to route, import and list graphs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%s", err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to an HCL configuration file.")
	pf.StringVar(&flags.logLevel, "log-level", "", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log output format: 'text' or 'json'.")
	pf.StringVar(&flags.dbPath, "db", "", "Use the SQLite graph database at this path.")
	pf.StringVar(&flags.graphsDir, "graphs-dir", "", "Use the directory of graph files at this path.")

	root.AddCommand(
		newServeCommand(flags),
		newRouteCommand(flags),
		newImportCommand(flags),
		newGraphsCommand(flags),
		newWatchCommand(flags),
	)
	return root, flags
}

// Execute runs the command line args. Failures that happen before a
// command starts running (unknown commands or flags, missing required
// flags, wrong argument counts) are returned as *ExitError with ExitUsage.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root, flags := newRoot(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) || flags.started {
		return err
	}
	return usageError("%s", err)
}

// runE marks the command as started so Execute can tell usage errors apart
// from runtime ones.
func (g *globalFlags) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		g.started = true
		return fn(cmd, args)
	}
}
