package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/telemetry"
	"github.com/specialistvlad/neurogrid/internal/uibridge"
	"golang.org/x/sync/errgroup"
)

// Version is reported as the service version in telemetry.
var Version = "dev"

// Run installs telemetry, then serves the health check server and the UI
// bridge until ctx ends or one of them fails.
func (a *App) Run(ctx context.Context) error {
	ctx = a.Context(ctx)
	a.logger.Debug("App.Run method started.")

	providers, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "neurogrid",
		ServiceVersion: Version,
		TraceExporter:  a.config.TraceExporter,
		MetricExporter: a.config.MetricExporter,
		OTLPEndpoint:   a.config.OTLPEndpoint,
		OTLPInsecure:   true,
		Writer:         a.outW,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.WithoutCancel(ctx)); err != nil {
			a.logger.Error("Telemetry shutdown failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if a.config.HealthcheckPort > 0 {
		a.httpServer = a.newHealthcheckServer(a.config.HealthcheckPort, providers.MetricsHandler())
		g.Go(func() error { return a.serveHealthcheck(gctx) })
	} else {
		a.logger.Warn("Health check server not started: disabled")
	}

	if a.config.UIURL != "" {
		d := uibridge.NewDispatcher(a.editor)
		bridge, err := uibridge.Connect(gctx, uibridge.Config{URL: a.config.UIURL, Namespace: a.config.UINamespace}, d)
		if err != nil {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("failed to connect UI bridge: %w", err)
		}
		g.Go(func() error { return bridge.Run(gctx) })
	} else {
		a.logger.Warn("UI bridge not started: no UI URL configured")
	}

	g.Go(func() error {
		<-gctx.Done()
		ctxlog.FromContext(gctx).Info("🏁 Shutting down.")
		return nil
	})

	err = g.Wait()
	a.logger.Debug("App.Run method finished.")
	return err
}
