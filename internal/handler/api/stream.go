package api

import (
	"net/http"
	"time"

	"DragonVeins/internal/domain/models"
	"DragonVeins/internal/usecase"
	xlogger "DragonVeins/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// StreamHandler pushes a state frame to WebSocket clients whenever the
// session changes.
type StreamHandler struct {
	logger   *xlogger.Logger
	session  *usecase.Session
	upgrader websocket.Upgrader
}

func NewStreamHandler(logger *xlogger.Logger, session *usecase.Session) *StreamHandler {
	return &StreamHandler{
		logger:  logger,
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// StateFrame is the wire shape of a single push.
type StateFrame struct {
	State    models.DragonState     `json:"state"`
	Activity []models.ActivityEvent `json:"activity"`
	Bursts   []models.EnergyBurst   `json:"bursts"`
	Flashes  []models.ActivityFlash `json:"flashes"`
}

func (h *StreamHandler) frame() *StateFrame {
	return &StateFrame{
		State:    h.session.State(),
		Activity: h.session.Activities(0, time.Time{}),
		Bursts:   h.session.Bursts(),
		Flashes:  h.session.Flashes(),
	}
}

// Serve upgrades the connection and streams frames until the client leaves.
func (h *StreamHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	updates, cancel := h.session.Subscribe()
	defer cancel()

	// Reader goroutine drains control frames and signals disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Initial frame so the client renders before the first refresh lands.
	if err := h.write(conn, h.frame()); err != nil {
		return nil
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			return nil
		case <-updates:
			if err := h.write(conn, h.frame()); err != nil {
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, frame *StateFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(frame)
}
