package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rrt-planner/internal/rrt"
	"rrt-planner/internal/viz"
)

func newPlotCmd(a *app) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a saved run to a PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := rrt.LoadRun(in, a.logger)
			if err != nil {
				return err
			}
			if err := viz.SavePlot(out, snapshot.Config, snapshot.Nodes, snapshot.Path); err != nil {
				return err
			}
			a.logger.Info("plot saved", zap.String("file", out), zap.String("run_id", snapshot.ID))
			printSuccess(cmd.OutOrStdout(), "Plot written to "+out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "run snapshot written by plan --out")
	cmd.Flags().StringVarP(&out, "out", "o", "rrt.png", "output PNG")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
