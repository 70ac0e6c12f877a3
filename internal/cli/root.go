// Package cli implements the rrtplanner command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rrt-planner/internal/logging"
)

var version = "dev"

// SetVersion sets the version reported by the version command and --version.
func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

// app holds state shared by every command of one invocation.
type app struct {
	logLevel string
	dev      bool
	logger   *zap.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:     "rrtplanner",
		Version: version,
		Short:   "2D rapidly-exploring random tree planner",
		Long: `rrtplanner grows a rapidly-exploring random tree from a start position
toward a goal, avoiding circle, rectangle and polygon obstacles.

Scenarios come from defaults, a YAML or JSON file, RRT_* environment
variables and flags, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New("rrt", a.logLevel, a.dev)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.dev, "dev", false, "development logging with colored levels")

	root.AddCommand(
		newPlanCmd(a),
		newPlotCmd(a),
		newServeCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print the rrtplanner version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return root
}

// Execute runs the command line until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}
