// Command dispatcherd runs the elevator dispatcher as a standalone service:
// a discrete-step core driven by a fixed-interval ticker, exposed over a
// JSON HTTP API and a websocket status feed.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elevatorsvc/dispatcher/internal/constants"
	"github.com/elevatorsvc/dispatcher/internal/dispatcher"
	"github.com/elevatorsvc/dispatcher/internal/domain"
	"github.com/elevatorsvc/dispatcher/internal/httpapi"
	"github.com/elevatorsvc/dispatcher/internal/infra/config"
	"github.com/elevatorsvc/dispatcher/internal/infra/logging"
	"github.com/elevatorsvc/dispatcher/internal/infra/observability"
	"github.com/elevatorsvc/dispatcher/internal/resilience"
	"github.com/elevatorsvc/dispatcher/internal/service"
)

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		slog.Error("failed to initialize configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.InfoContext(ctx, "dispatcher starting up",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.Int("websocket_port", cfg.WebSocketPort),
		slog.Int("default_elevator_count", cfg.DefaultElevatorCount),
		slog.Duration("tick_interval", cfg.TickInterval))

	d := dispatcher.New(cfg.DefaultElevatorCount)
	d.SetFloorLimits(domain.NewFloorLimits(cfg.DefaultMinFloor, cfg.DefaultMaxFloor), cfg.FloorLimitsEnabled)
	d.SetSoleElevatorMode(cfg.SoleElevatorMode)
	svc := service.New(d)

	var telemetry *observability.TelemetryProvider
	if obsCfg, obsErr := observability.LoadObservabilityConfig(); obsErr != nil {
		slog.WarnContext(ctx, "observability config invalid, continuing without telemetry",
			slog.String("error", obsErr.Error()))
	} else {
		tp, tpErr := observability.NewTelemetryProvider(obsCfg, slog.With(slog.String("component", "observability")))
		if tpErr != nil {
			slog.WarnContext(ctx, "failed to start telemetry provider", slog.String("error", tpErr.Error()))
		} else {
			telemetry = tp
		}
	}

	httpServer := httpapi.NewServer(cfg, cfg.Port, svc, telemetry)
	wsServer := httpapi.NewWebSocketServer(cfg.WebSocketPort, svc, slog.With(slog.String("component", "websocket-server")))

	driverDone := make(chan struct{})
	go runTickDriver(ctx, cfg, svc, driverDone)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 2)
	go func() {
		slog.InfoContext(ctx, "starting http server", slog.Int("port", cfg.Port))
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("http server failed: %w", err)
		}
	}()
	go func() {
		slog.InfoContext(ctx, "starting websocket server", slog.Int("port", cfg.WebSocketPort))
		if err := wsServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("websocket server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErrCh:
		slog.ErrorContext(ctx, "server startup failed", slog.String("error", err.Error()))
		cancel()
		shutdownServers(httpServer, wsServer, telemetry, cfg)
		os.Exit(1)
	case sig := <-quit:
		slog.InfoContext(ctx, "received shutdown signal", slog.String("signal", sig.String()))
	}

	cancel()
	<-driverDone
	shutdownServers(httpServer, wsServer, telemetry, cfg)

	select {
	case <-time.After(cfg.ShutdownGrace):
		slog.InfoContext(ctx, "graceful shutdown completed", slog.Duration("grace_period", cfg.ShutdownGrace))
	}
}

// runTickDriver advances svc on a fixed interval until ctx is cancelled,
// running each Step through a circuit breaker when one is enabled. The
// wrapped call always returns nil, so the breaker records only successes
// and does not trip on its own.
func runTickDriver(ctx context.Context, cfg *config.Config, svc *service.Service, done chan<- struct{}) {
	defer close(done)

	logger := slog.With(slog.String("component", constants.ComponentDriver))

	var breaker *resilience.CircuitBreaker
	if cfg.CircuitBreakerEnabled {
		breaker = resilience.NewCircuitBreaker(
			cfg.CircuitBreakerMaxFailures,
			cfg.CircuitBreakerResetTimeout,
			cfg.CircuitBreakerHalfOpenLimit,
		)
	}

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("tick driver stopping")
			return
		case <-ticker.C:
			step := func() error {
				svc.Step()
				return nil
			}
			if breaker != nil {
				if err := breaker.Execute(ctx, step); err != nil {
					logger.WarnContext(ctx, "tick skipped by circuit breaker", slog.String("error", err.Error()))
				}
				continue
			}
			_ = step()
		}
	}
}

func shutdownServers(httpServer *httpapi.Server, wsServer *httpapi.WebSocketServer, telemetry *observability.TelemetryProvider, cfg *config.Config) {
	slog.Info("shutting down servers gracefully")

	if err := httpServer.Shutdown(); err != nil {
		slog.Error("http server shutdown failed", slog.String("error", err.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("websocket server shutdown failed", slog.String("error", err.Error()))
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}
}
