package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/elevatorsvc/dispatcher/internal/constants"
	"github.com/elevatorsvc/dispatcher/internal/domain"
	"github.com/elevatorsvc/dispatcher/internal/service"
)

// FleetSnapshot is the payload streamed over the websocket feed: every
// cabin's status plus every outstanding pickup, as of one instant.
type FleetSnapshot struct {
	Cabins    []domain.CabinSnapshot `json:"cabins"`
	Tasks     []domain.TaskSnapshot  `json:"tasks"`
	Timestamp time.Time              `json:"timestamp"`
}

func (ws *WebSocketServer) snapshot() FleetSnapshot {
	return FleetSnapshot{
		Cabins:    ws.svc.Status(),
		Tasks:     ws.svc.Tasks(),
		Timestamp: time.Now(),
	}
}

// WebSocketServer is a dedicated server that streams fleet status to
// connected clients at a fixed interval.
type WebSocketServer struct {
	svc         *service.Service
	server      *http.Server
	logger      *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	connections map[*websocket.Conn]context.CancelFunc
	connMutex   sync.Mutex
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// NewWebSocketServer builds a websocket-only server publishing svc's status.
func NewWebSocketServer(port int, svc *service.Service, logger *slog.Logger) *WebSocketServer {
	ctx, cancel := context.WithCancel(context.Background())
	mux := http.NewServeMux()

	ws := &WebSocketServer{
		svc:         svc,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		connections: make(map[*websocket.Conn]context.CancelFunc),
	}

	mux.HandleFunc("/ws/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")
		w.Header().Set("Access-Control-Allow-Headers", "Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version")
		ws.statusHandler(w, r)
	})

	ws.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	return ws
}

func (ws *WebSocketServer) addConnection(conn *websocket.Conn, cancel context.CancelFunc) {
	ws.connMutex.Lock()
	defer ws.connMutex.Unlock()
	ws.connections[conn] = cancel
}

func (ws *WebSocketServer) removeConnection(conn *websocket.Conn) {
	ws.connMutex.Lock()
	defer ws.connMutex.Unlock()
	if cancel, ok := ws.connections[conn]; ok {
		cancel()
		delete(ws.connections, conn)
	}
}

func (ws *WebSocketServer) closeAllConnections() {
	ws.connMutex.Lock()
	defer ws.connMutex.Unlock()

	for conn, cancel := range ws.connections {
		if err := conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutdown"),
			time.Now().Add(time.Second)); err != nil {
			ws.logger.Error("failed to send close message", slog.String("error", err.Error()))
		}
		cancel()
		if err := conn.Close(); err != nil {
			ws.logger.Error("failed to close websocket connection", slog.String("error", err.Error()))
		}
	}
	ws.connections = make(map[*websocket.Conn]context.CancelFunc)
}

// statusHandler upgrades the connection and streams fleet snapshots at a
// fixed interval until the client disconnects or the server shuts down.
func (ws *WebSocketServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			ws.logger.Error("failed to close websocket connection", slog.String("error", err.Error()))
		}
	}()

	ctx, cancel := context.WithCancel(ws.ctx)
	ws.addConnection(conn, cancel)
	defer ws.removeConnection(conn)

	ws.logger.Info("websocket connection established", slog.String("component", "websocket-server"))

	const (
		writeWait      = 10 * time.Second
		pongWait       = 60 * time.Second
		pingPeriod     = (pongWait * 9) / 10
		statusInterval = constants.StatusUpdateInterval
	)

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		ws.logger.Error("failed to set read deadline", slog.String("error", err.Error()))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		ws.logger.Error("failed to set write deadline for initial status", slog.String("error", err.Error()))
		return
	}
	if err := conn.WriteJSON(ws.snapshot()); err != nil {
		ws.logger.Error("failed to send initial status", slog.String("error", err.Error()))
		return
	}

	statusTicker := time.NewTicker(statusInterval)
	defer statusTicker.Stop()
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					ws.logger.Warn("websocket connection closed unexpectedly", slog.String("error", err.Error()))
				}
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			ws.logger.Info("websocket connection closed by client")
			return

		case <-ctx.Done():
			if err := conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutdown"),
				time.Now().Add(writeWait)); err != nil {
				ws.logger.Error("failed to send close message", slog.String("error", err.Error()))
			}
			return

		case <-pingTicker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				ws.logger.Error("failed to set write deadline for ping", slog.String("error", err.Error()))
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				ws.logger.Error("failed to send ping", slog.String("error", err.Error()))
				return
			}

		case <-statusTicker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				ws.logger.Error("failed to set write deadline for status update", slog.String("error", err.Error()))
				return
			}
			if err := conn.WriteJSON(ws.snapshot()); err != nil {
				ws.logger.Error("failed to send status", slog.String("error", err.Error()))
				return
			}
		}
	}
}

// Start runs the websocket server until it is shut down.
func (ws *WebSocketServer) Start() error {
	ws.logger.Info("starting websocket server", slog.String("addr", ws.server.Addr))
	return ws.server.ListenAndServe()
}

// Shutdown cancels every live connection and stops accepting new ones.
func (ws *WebSocketServer) Shutdown(ctx context.Context) error {
	ws.cancel()
	ws.closeAllConnections()
	return ws.server.Shutdown(ctx)
}
