package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/elevatorsvc/dispatcher/internal/constants"
	"github.com/elevatorsvc/dispatcher/internal/domain"
	"github.com/elevatorsvc/dispatcher/internal/infra/config"
	"github.com/elevatorsvc/dispatcher/internal/infra/logging"
	"github.com/elevatorsvc/dispatcher/internal/service"
)

// V1Handlers implements the dispatcher's versioned JSON API.
type V1Handlers struct {
	svc    *service.Service
	cfg    *config.Config
	logger *slog.Logger
}

// NewV1Handlers builds the v1 handler set over svc.
func NewV1Handlers(svc *service.Service, cfg *config.Config, logger *slog.Logger) *V1Handlers {
	return &V1Handlers{svc: svc, cfg: cfg, logger: logger}
}

// PickupRequestBody is the JSON body for POST /v1/pickups.
type PickupRequestBody struct {
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
}

// SelectFloorRequestBody is the JSON body for POST /v1/cabins/select-floor.
type SelectFloorRequestBody struct {
	CabinID int `json:"cabin_id"`
	Floor   int `json:"floor"`
}

// SetElevatorRequestBody is the JSON body for POST /v1/cabins/reset.
type SetElevatorRequestBody struct {
	CabinID int `json:"cabin_id"`
	Floor   int `json:"floor"`
}

// SetElevatorCountRequestBody is the JSON body for POST /v1/cabins/count.
type SetElevatorCountRequestBody struct {
	Count int `json:"count"`
}

// SetFloorLimitsRequestBody is the JSON body for POST /v1/floor-limits.
type SetFloorLimitsRequestBody struct {
	Enabled bool `json:"enabled"`
	Bottom  int  `json:"bottom"`
	Top     int  `json:"top"`
}

// SetSoleModeRequestBody is the JSON body for POST /v1/sole-mode.
type SetSoleModeRequestBody struct {
	Enabled bool `json:"enabled"`
}

// StatusResponse is the response body for GET /v1/status.
type StatusResponse struct {
	Cabins    []domain.CabinSnapshot `json:"cabins"`
	Timestamp time.Time              `json:"timestamp"`
}

// TasksResponse is the response body for GET /v1/tasks.
type TasksResponse struct {
	Tasks     []domain.TaskSnapshot `json:"tasks"`
	Timestamp time.Time             `json:"timestamp"`
}

// APIInfoResponse describes the API surface (GET /v1).
type APIInfoResponse struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}

func parseDirection(s string) (domain.Direction, bool) {
	switch s {
	case "up", "Up", "UP":
		return domain.DirectionUp, true
	case "down", "Down", "DOWN":
		return domain.DirectionDown, true
	default:
		return domain.DirectionUnassigned, false
	}
}

// PickupHandler handles POST /v1/pickups — registering a hall call.
func (h *V1Handlers) PickupHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodPost {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "Method not allowed", "Only POST is supported")
		return
	}

	var body PickupRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rw.WriteError(http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid JSON", "Request body contains invalid JSON")
		return
	}

	direction, ok := parseDirection(body.Direction)
	if !ok {
		rw.WriteError(http.StatusBadRequest, ErrorCodeValidation, "Invalid direction", "direction must be \"up\" or \"down\"")
		return
	}

	if err := h.svc.Pickup(body.Floor, direction); err != nil {
		h.logger.ErrorContext(r.Context(), "pickup rejected",
			slog.Int("floor", body.Floor), slog.String("error", err.Error()),
			slog.String("request_id", requestID), slog.String("component", constants.ComponentHTTPHandler))
		rw.WriteDomainError(err)
		return
	}

	h.logger.InfoContext(r.Context(), "pickup registered",
		slog.Int("floor", body.Floor), slog.String("direction", body.Direction),
		slog.String("request_id", requestID), slog.String("component", constants.ComponentHTTPHandler))

	rw.WriteJSON(http.StatusOK, map[string]any{"floor": body.Floor, "direction": body.Direction, "message": "pickup registered"})
}

// SelectFloorHandler handles POST /v1/cabins/select-floor — an in-cabin
// floor selection.
func (h *V1Handlers) SelectFloorHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodPost {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "Method not allowed", "Only POST is supported")
		return
	}

	var body SelectFloorRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rw.WriteError(http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid JSON", "Request body contains invalid JSON")
		return
	}

	if err := h.svc.SelectFloor(body.CabinID, body.Floor); err != nil {
		rw.WriteDomainError(err)
		return
	}

	rw.WriteJSON(http.StatusOK, map[string]any{"cabin_id": body.CabinID, "floor": body.Floor, "message": "floor selection recorded"})
}

// SetElevatorHandler handles POST /v1/cabins/reset — replacing a cabin in
// place at a given floor.
func (h *V1Handlers) SetElevatorHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodPost {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "Method not allowed", "Only POST is supported")
		return
	}

	var body SetElevatorRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rw.WriteError(http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid JSON", "Request body contains invalid JSON")
		return
	}

	if err := h.svc.SetElevator(body.CabinID, body.Floor); err != nil {
		rw.WriteDomainError(err)
		return
	}

	rw.WriteJSON(http.StatusOK, map[string]any{"cabin_id": body.CabinID, "floor": body.Floor, "message": "cabin reset"})
}

// SetElevatorCountHandler handles POST /v1/cabins/count — resizing the fleet.
func (h *V1Handlers) SetElevatorCountHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodPost {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "Method not allowed", "Only POST is supported")
		return
	}

	var body SetElevatorCountRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rw.WriteError(http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid JSON", "Request body contains invalid JSON")
		return
	}

	if body.Count < 0 || body.Count > h.cfg.MaxElevators {
		rw.WriteError(http.StatusBadRequest, ErrorCodeValidation, "Invalid cabin count", "count must be between 0 and the configured maximum")
		return
	}

	h.svc.SetElevatorCount(body.Count)
	rw.WriteJSON(http.StatusOK, map[string]any{"count": body.Count, "message": "fleet resized"})
}

// SetFloorLimitsHandler handles POST /v1/floor-limits.
func (h *V1Handlers) SetFloorLimitsHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodPost {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "Method not allowed", "Only POST is supported")
		return
	}

	var body SetFloorLimitsRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rw.WriteError(http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid JSON", "Request body contains invalid JSON")
		return
	}

	limits := domain.NewFloorLimits(body.Bottom, body.Top)
	if body.Enabled && !limits.Valid() {
		rw.WriteError(http.StatusBadRequest, ErrorCodeValidation, "Invalid floor limits", "bottom must not exceed top")
		return
	}

	h.svc.SetFloorLimits(limits, body.Enabled)
	rw.WriteJSON(http.StatusOK, map[string]any{"enabled": body.Enabled, "bottom": body.Bottom, "top": body.Top, "message": "floor limits updated"})
}

// SetSoleModeHandler handles POST /v1/sole-mode.
func (h *V1Handlers) SetSoleModeHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodPost {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "Method not allowed", "Only POST is supported")
		return
	}

	var body SetSoleModeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rw.WriteError(http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid JSON", "Request body contains invalid JSON")
		return
	}

	h.svc.SetSoleElevatorMode(body.Enabled)
	rw.WriteJSON(http.StatusOK, map[string]any{"enabled": body.Enabled, "message": "sole elevator mode updated"})
}

// StepHandler handles POST /v1/step — advancing the dispatcher by one
// tick on demand, outside the tick driver's own interval.
func (h *V1Handlers) StepHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodPost {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "Method not allowed", "Only POST is supported")
		return
	}

	h.svc.Step()

	h.logger.InfoContext(r.Context(), "step triggered via API",
		slog.String("request_id", requestID), slog.String("component", constants.ComponentHTTPHandler))

	rw.WriteJSON(http.StatusOK, StatusResponse{Cabins: h.svc.Status(), Timestamp: time.Now()})
}

// StatusHandler handles GET /v1/status — a snapshot of every cabin.
func (h *V1Handlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodGet {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "Method not allowed", "Only GET is supported")
		return
	}

	rw.WriteJSON(http.StatusOK, StatusResponse{Cabins: h.svc.Status(), Timestamp: time.Now()})
}

// TasksHandler handles GET /v1/tasks — a snapshot of every outstanding pickup.
func (h *V1Handlers) TasksHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodGet {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "Method not allowed", "Only GET is supported")
		return
	}

	rw.WriteJSON(http.StatusOK, TasksResponse{Tasks: h.svc.Tasks(), Timestamp: time.Now()})
}

// APIInfoHandler handles GET /v1.
func (h *V1Handlers) APIInfoHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodGet {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "Method not allowed", "Only GET is supported")
		return
	}

	rw.WriteJSON(http.StatusOK, APIInfoResponse{
		Name:        "Dispatcher API",
		Version:     "v1",
		Description: "RESTful API for a discrete-step elevator dispatcher",
		Endpoints: map[string]string{
			"POST /v1/pickups":             "Register a hall call (floor + direction)",
			"POST /v1/cabins/select-floor": "Record an in-cabin floor selection",
			"POST /v1/cabins/reset":        "Reset a cabin to a floor, requeuing any in-flight pickup",
			"POST /v1/cabins/count":        "Resize the fleet",
			"POST /v1/floor-limits":        "Set or clear the building's floor range",
			"POST /v1/sole-mode":           "Toggle sole-elevator mode",
			"POST /v1/step":                "Advance the dispatcher by one tick on demand",
			"GET /v1/status":               "Snapshot of every cabin",
			"GET /v1/tasks":                "Snapshot of every outstanding pickup",
			"GET /health":                  "Health check",
			"GET /v1":                      "API information",
			"GET /metrics":                 "Prometheus metrics endpoint",
			"WebSocket /ws/status":         "Real-time cabin status feed",
		},
	})
}
