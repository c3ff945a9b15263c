package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/axin/component"
	"github.com/kbukum/axin/devserver"
	"github.com/kbukum/axin/logger"
	"github.com/kbukum/axin/observability"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local dev backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig.Server
		if serveHost != "" {
			cfg.Host = serveHost
		}
		if servePort != 0 {
			cfg.Port = servePort
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		registry, err := buildRegistry(cfg)
		if err != nil {
			return err
		}
		if err := registry.StartAll(ctx); err != nil {
			return err
		}
		printSummary(registry)

		<-ctx.Done()
		logger.Info("Shutting down")
		return registry.StopAll(context.Background())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
}

// buildRegistry wires telemetry and the dev server. Telemetry is registered
// first so that its providers exist before the server records anything.
func buildRegistry(cfg devserver.Config) (*component.Registry, error) {
	registry := component.NewRegistry()
	if err := registry.Register(observability.NewTelemetry(appConfig.Tracing)); err != nil {
		return nil, err
	}

	metrics, err := observability.NewMetrics(observability.Meter("github.com/kbukum/axin/devserver"))
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	server, err := devserver.New(cfg, logger.GetGlobalLogger(),
		devserver.WithMetrics(metrics),
		devserver.WithHealthChecker(registry.HealthAll),
	)
	if err != nil {
		return nil, err
	}
	if err := registry.Register(devserver.NewComponent(server)); err != nil {
		return nil, err
	}
	return registry, nil
}

func printSummary(registry *component.Registry) {
	descriptions, routes := registry.Summary()
	for _, d := range descriptions {
		logger.Info("Component ready", logger.Fields(
			"name", d.Name,
			"type", d.Type,
			"details", d.Details,
		))
	}
	for _, r := range routes {
		logger.Debug("Route", logger.Fields(
			"method", r.Method,
			"path", r.Path,
			"handler", r.Handler,
		))
	}
}
