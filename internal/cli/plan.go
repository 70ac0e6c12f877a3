package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rrt-planner/internal/config"
	"rrt-planner/internal/rrt"
	"rrt-planner/internal/viz"
)

type planOptions struct {
	configFile  string
	outFile     string
	plotFile    string
	geojsonFile string
	markersFile string
}

func newPlanCmd(a *app) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run the planner once",
		Long: `Run the planner once and print the path from goal to start.

The run exits with an error when the node limit is used up before the goal
is reached. Every requested output is still written in that case.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := config.NewViper()
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v, opts.configFile, a.logger)
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			res, err := rrt.Run(cmd.Context(), cfg, rrt.WithLogger(a.logger.With(zap.String("run_id", runID))))
			if err != nil && !errors.Is(err, rrt.ErrNodeLimitExhausted) {
				return err
			}

			snapshot, err := rrt.NewSnapshot(runID, cfg, res)
			if err != nil {
				return err
			}
			if err := writeOutputs(opts, snapshot, cfg, res, a.logger); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !res.Succeeded() {
				printWarning(out, "Path not found")
				printLabelValue(out, "run", runID)
				printLabelValue(out, "nodes", res.Tree.Len())
				printLabelValue(out, "iterations", res.Stats.Iterations)
				return rrt.ErrNodeLimitExhausted
			}

			printSuccess(out, "Path found")
			printLabelValue(out, "run", runID)
			printLabelValue(out, "nodes", res.Tree.Len())
			printLabelValue(out, "iterations", res.Stats.Iterations)
			printLabelValue(out, "length", snapshot.Length)
			for i, p := range snapshot.Path {
				printLabelValue(out, fmt.Sprintf("waypoint %d", i), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "scenario file (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.outFile, "out", "o", "", "write the run snapshot as JSON")
	cmd.Flags().StringVar(&opts.plotFile, "plot", "", "render the tree and path to a PNG")
	cmd.Flags().StringVar(&opts.geojsonFile, "geojson", "", "export obstacles, tree and path as GeoJSON")
	cmd.Flags().StringVar(&opts.markersFile, "markers", "", "write node and obstacle markers as JSON")
	config.AddFlags(cmd.Flags())
	return cmd
}

func writeOutputs(opts *planOptions, snapshot *rrt.Snapshot, cfg rrt.Config, res *rrt.Result, logger *zap.Logger) error {
	if opts.outFile != "" {
		if err := rrt.SaveRun(snapshot, opts.outFile, logger); err != nil {
			return err
		}
	}

	if opts.plotFile != "" {
		if err := viz.SavePlot(opts.plotFile, cfg, res.Tree, snapshot.Path); err != nil {
			return err
		}
		logger.Info("plot saved", zap.String("file", opts.plotFile))
	}

	if opts.geojsonFile != "" {
		data, err := viz.FeatureCollection(cfg, res.Tree, snapshot.Path).MarshalJSON()
		if err != nil {
			return errors.Wrap(err, "failed to encode geojson")
		}
		if err := os.WriteFile(opts.geojsonFile, data, 0o644); err != nil {
			return errors.Wrap(err, "failed to write geojson")
		}
		logger.Info("geojson saved", zap.String("file", opts.geojsonFile))
	}

	if opts.markersFile != "" {
		data, err := json.MarshalIndent(viz.Markers(res.Tree.Nodes(), cfg.Obstacles), "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to encode markers")
		}
		if err := os.WriteFile(opts.markersFile, data, 0o644); err != nil {
			return errors.Wrap(err, "failed to write markers")
		}
		logger.Info("markers saved", zap.String("file", opts.markersFile))
	}
	return nil
}
