package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elevatorsvc/dispatcher/internal/constants"
	"github.com/elevatorsvc/dispatcher/internal/infra/config"
	"github.com/elevatorsvc/dispatcher/internal/infra/health"
	"github.com/elevatorsvc/dispatcher/internal/infra/observability"
	"github.com/elevatorsvc/dispatcher/internal/service"
)

// Server is the dispatcher's HTTP API server: versioned JSON endpoints,
// health probes and Prometheus metrics behind a shared middleware chain.
type Server struct {
	svc           *service.Service
	httpServer    *http.Server
	cfg           *config.Config
	logger        *slog.Logger
	healthService *health.HealthService
}

// NewServer wires routes, middleware and health checks around svc.
func NewServer(cfg *config.Config, port int, svc *service.Service, telemetry *observability.TelemetryProvider) *Server {
	s := &Server{
		svc:           svc,
		cfg:           cfg,
		logger:        slog.With(slog.String("component", constants.ComponentHTTPServer)),
		healthService: health.NewHealthService(30 * time.Second),
	}

	s.setupHealthChecks()

	v1Handlers := NewV1Handlers(svc, cfg, s.logger)
	rateLimiter := NewRateLimitMiddleware(cfg.RateLimitRPM, s.logger)

	chain := []Middleware{
		RequestIDMiddleware(),
		LoggingMiddleware(s.logger),
		RecoveryMiddleware(s.logger),
		CORSMiddleware(corsOrigins(cfg.CORSAllowedOrigins)),
		SecurityHeadersMiddleware(),
		rateLimiter.Handler(),
	}
	if telemetry != nil {
		chain = append([]Middleware{telemetry.TelemetryMiddleware()}, chain...)
	}
	middlewareChain := ChainMiddleware(chain...)

	mux := http.NewServeMux()

	mux.HandleFunc("/v1", v1Handlers.APIInfoHandler)
	mux.HandleFunc("/v1/pickups", v1Handlers.PickupHandler)
	mux.HandleFunc("/v1/cabins/select-floor", v1Handlers.SelectFloorHandler)
	mux.HandleFunc("/v1/cabins/reset", v1Handlers.SetElevatorHandler)
	mux.HandleFunc("/v1/cabins/count", v1Handlers.SetElevatorCountHandler)
	mux.HandleFunc("/v1/floor-limits", v1Handlers.SetFloorLimitsHandler)
	mux.HandleFunc("/v1/sole-mode", v1Handlers.SetSoleModeHandler)
	mux.HandleFunc("/v1/step", v1Handlers.StepHandler)
	mux.HandleFunc("/v1/status", v1Handlers.StatusHandler)
	mux.HandleFunc("/v1/tasks", v1Handlers.TasksHandler)

	mux.HandleFunc("/health/live", s.livenessHandler)
	mux.HandleFunc("/health/ready", s.readinessHandler)
	mux.HandleFunc("/health", s.detailedHealthHandler)

	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      middlewareChain(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// corsOrigins turns the configured comma-separated origin list into a slice,
// treating a bare "*" as the wildcard.
func corsOrigins(raw string) []string {
	if raw == "" || raw == "*" {
		return []string{"*"}
	}
	var origins []string
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			if o := trimSpace(raw[start:i]); o != "" {
				origins = append(origins, o)
			}
			start = i + 1
		}
	}
	return origins
}

func trimSpace(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}

func (s *Server) setupHealthChecks() {
	s.healthService.Register(health.NewSystemResourceChecker(85.0, 1000))
	s.healthService.Register(health.NewLivenessChecker())

	dispatcherChecker := health.NewComponentHealthChecker("dispatcher", func(ctx context.Context) (bool, string, map[string]interface{}) {
		cabins := s.svc.Status()
		if len(cabins) == 0 {
			return false, "no cabins provisioned", map[string]interface{}{"cabin_count": 0}
		}

		lastStep := s.svc.LastStepAt()
		if lastStep.IsZero() {
			return false, "tick driver has not completed a step yet", map[string]interface{}{"cabin_count": len(cabins)}
		}

		staleAfter := 2 * s.cfg.TickInterval
		age := time.Since(lastStep)
		details := map[string]interface{}{"cabin_count": len(cabins), "last_step_age_ms": age.Milliseconds()}
		if age > staleAfter {
			return false, "tick driver stale", details
		}
		return true, "dispatcher serving cabins", details
	})
	s.healthService.Register(dispatcherChecker)
	s.healthService.Register(health.NewReadinessChecker(dispatcherChecker))

	s.logger.Info("health checks initialized", slog.Int("registered_checkers", 4))
}

func (s *Server) livenessHandler(w http.ResponseWriter, r *http.Request) {
	s.writeHealthCheck(w, r, "liveness")
}

func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	s.writeHealthCheck(w, r, "readiness")
}

func (s *Server) writeHealthCheck(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodGet {
		http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
		return
	}

	result, err := s.healthService.Check(r.Context(), name)
	if err != nil {
		http.Error(w, name+" check failed", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Status == health.StatusHealthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to encode health response", slog.String("error", err.Error()))
	}
}

func (s *Server) detailedHealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "invalid request method", http.StatusMethodNotAllowed)
		return
	}

	overallStatus, results := s.healthService.GetOverallStatus(r.Context())
	response := map[string]interface{}{
		"status":    string(overallStatus),
		"timestamp": time.Now(),
		"checks":    results,
	}

	w.Header().Set("Content-Type", "application/json")
	statusCode := http.StatusOK
	if overallStatus == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to encode health response", slog.String("error", err.Error()))
	}
}

// GetHandler returns the HTTP handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting http server", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
