package cli

import (
	"time"

	"github.com/spf13/cobra"

	"rrt-planner/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr        string
		maxNodes    int
		planTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve planning requests over HTTP",
		Long: `Serve planning requests over HTTP until interrupted.

  POST /plan       run a scenario and return the tree, path and markers
  POST /plan/plot  run a scenario and return a PNG of the tree
  POST /map        store an occupancy grid
  GET  /health     liveness and map status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(a.logger, nil, nil,
				server.WithMaxNodeLimit(maxNodes),
				server.WithPlanTimeout(planTimeout),
			)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&maxNodes, "max-node-limit", server.DefaultMaxNodeLimit, "largest node_limit a request may ask for")
	cmd.Flags().DurationVar(&planTimeout, "plan-timeout", server.DefaultPlanTimeout, "time allowed for one plan request")
	return cmd
}
