package handlers

import (
	"net/http"
	"time"

	"github.com/AzurNet/azurnet-go/internal/infrastructure/messaging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = 54 * time.Second
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// LiveHandlers upgrades dashboard clients onto the live stats stream.
type LiveHandlers struct {
	broadcaster *messaging.LiveBroadcaster
	logger      *logging.ChanneledLogger
}

// NewLiveHandlers creates live-stream handlers with injected dependencies.
func NewLiveHandlers(broadcaster *messaging.LiveBroadcaster, logger *logging.ChanneledLogger) *LiveHandlers {
	return &LiveHandlers{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// GetLive handles GET /api/v1/analytics/live
func (h *LiveHandlers) GetLive(c *gin.Context) {
	conn, err := liveUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Live().Warn("Websocket upgrade failed", "error", err.Error(), "ip", c.ClientIP())
		return
	}

	client := &messaging.LiveClient{
		Conn: conn,
		Send: make(chan []byte, 8),
	}
	h.broadcaster.Register(client)

	go h.writePump(client)
	go h.readPump(client)
}

// writePump pushes broadcast frames and pings to one client.
func (h *LiveHandlers) writePump(client *messaging.LiveClient) {
	ticker := time.NewTicker(livePingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and detects disconnects.
func (h *LiveHandlers) readPump(client *messaging.LiveClient) {
	defer func() {
		h.broadcaster.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(512)
	client.Conn.SetReadDeadline(time.Now().Add(livePongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(livePongWait))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
