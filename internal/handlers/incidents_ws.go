package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/socdash/socdash/internal/api"
	"github.com/socdash/socdash/internal/incidents"
	"github.com/socdash/socdash/internal/metrics"
	"github.com/socdash/socdash/internal/upstream"
)

const liveWriteTimeout = 10 * time.Second

// LiveMessageType is the type of a live feed message
type LiveMessageType string

const (
	LiveMessageIncidents LiveMessageType = "incidents"
	LiveMessageError     LiveMessageType = "error"
)

// LiveMessage is one push on the live incident feed
type LiveMessage struct {
	Type        LiveMessageType      `json:"type"`
	Window      string               `json:"window,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
	Incidents   []incidents.Incident `json:"incidents"`
	Error       string               `json:"error,omitempty"`
}

// IncidentLister produces the incident list for a window
type IncidentLister interface {
	ParseWindow(raw string) (time.Duration, error)
	List(ctx context.Context, window time.Duration) ([]incidents.Incident, error)
}

// OriginChecker decides which browser origins may open the live feed
type OriginChecker interface {
	AllowsOrigin(origin string) bool
}

// IncidentsWSHandler pushes the incident list to dashboard clients over a
// WebSocket at a fixed interval
type IncidentsWSHandler struct {
	upgrader websocket.Upgrader
	lister   IncidentLister
	interval time.Duration
	metrics  *metrics.Metrics
}

// NewIncidentsWSHandler creates a new live incident feed handler. A nil
// origins keeps the websocket library's same-origin check.
func NewIncidentsWSHandler(lister IncidentLister, interval time.Duration, m *metrics.Metrics, origins OriginChecker) *IncidentsWSHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}
	if origins != nil {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if !origins.AllowsOrigin(origin) {
				log.Printf("Rejected live incident client from origin %q", origin)
				return false
			}
			return true
		}
	}

	return &IncidentsWSHandler{
		upgrader: upgrader,
		lister:   lister,
		interval: interval,
		metrics:  m,
	}
}

// SetupRoutes configures WebSocket routes
func (h *IncidentsWSHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/incidents", h.HandleWebSocket)
}

// HandleWebSocket serves one dashboard client until it disconnects or a
// push fails. The window is fixed for the life of the connection.
func (h *IncidentsWSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	window, err := h.lister.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		api.RespondErrorWithCode(w, http.StatusBadRequest, api.CodeValidation, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return
	}

	log.Printf("Live incident client connected from %s (window %s)", r.RemoteAddr, window)
	h.metrics.AddLiveClients(1)

	ctx, cancel := context.WithCancel(r.Context())
	defer func() {
		cancel()
		conn.Close()
		h.metrics.AddLiveClients(-1)
		log.Printf("Live incident client %s disconnected", r.RemoteAddr)
	}()

	go h.readLoop(conn, cancel)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if err := h.push(ctx, conn, window); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("Live incident push failed: %v", err)
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// readLoop drains client frames so control messages are processed, and
// cancels the feed once the client goes away. A dead peer that never closes
// is caught by the next write deadline.
func (h *IncidentsWSHandler) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
	}
}

// push sends one incident list. A failed listing is reported to the client
// and ends the feed.
func (h *IncidentsWSHandler) push(ctx context.Context, conn *websocket.Conn, window time.Duration) error {
	list, err := h.lister.List(ctx, window)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := LiveMessage{Type: LiveMessageError, GeneratedAt: time.Now().UTC(), Error: "failed to list incidents"}
		if errors.Is(err, upstream.ErrUnavailable) {
			msg.Error = "event store offline"
		}
		h.write(conn, msg)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, msg.Error),
			time.Now().Add(liveWriteTimeout))
		return err
	}

	return h.write(conn, LiveMessage{
		Type:        LiveMessageIncidents,
		Window:      window.String(),
		GeneratedAt: time.Now().UTC(),
		Incidents:   list,
	})
}

func (h *IncidentsWSHandler) write(conn *websocket.Conn, msg LiveMessage) error {
	conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return conn.WriteJSON(msg)
}
