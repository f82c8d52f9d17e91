package main

import (
	"fmt"
	"log/slog"

	"github.com/spboyer/hetsird/internal/webapi"
	"github.com/spboyer/hetsird/internal/webserver"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var (
		host        string
		port        int
		origins     []string
		allowRemote bool
		history     int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start an HTTP server exposing the simulator as a JSON API.

Endpoints:
  GET  /api/health        Liveness check
  GET  /api/methods       Supported integration methods
  POST /api/rates         Effective rates of a base rate set and subgroups
  POST /api/simulate      Simulate a scenario (JSON body)
  GET  /api/runs          Recent runs, ?sort=peak|deaths|duration&order=asc
  GET  /api/runs/{id}     One recent run

The server binds to loopback unless --allow-remote is set. Port and allowed
CORS origins default to the project config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProjectConfig()
			if err != nil {
				return err
			}
			if port == 0 {
				port = cfg.Server.Port
			}
			if len(origins) == 0 {
				origins = cfg.Server.AllowedOrigins
			}

			logger := slog.Default()
			srv, err := webserver.New(webserver.Config{
				Host:           resolveHost(host, allowRemote, logger),
				Port:           port,
				AllowedOrigins: origins,
				Simulator:      webapi.ScenarioSimulator{Defaults: cfg.SimulationDefaults()},
				StoreCapacity:  history,
				Logger:         logger,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "hetsird API listening on http://%s\n", srv.Addr()) //nolint:errcheck
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Interface to bind")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from project config)")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "Allowed CORS origin (can be repeated)")
	cmd.Flags().BoolVar(&allowRemote, "allow-remote", false,
		"Allow binding to non-loopback addresses (WARNING: exposes the server to the network with no authentication)")
	cmd.Flags().IntVar(&history, "history", 100, "Number of recent runs kept in memory")

	return cmd
}

// resolveHost keeps the server on loopback unless --allow-remote is set.
func resolveHost(host string, allowRemote bool, logger *slog.Logger) string {
	if allowRemote {
		logger.Warn("HTTP server binding to a non-loopback address, no authentication is provided",
			"host", host)
		return host
	}
	switch host {
	case "127.0.0.1", "::1", "localhost":
		return host
	}
	logger.Info("binding to loopback, use --allow-remote to listen on other interfaces", "requested", host)
	return "127.0.0.1"
}
