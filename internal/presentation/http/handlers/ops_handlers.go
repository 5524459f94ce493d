package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/upskillhq/upskill-go/internal/infrastructure/messaging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
)

const opsSendBuffer = 64

var opsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Auth middleware has already vetted the caller.
		return true
	},
}

// OpsHandlers upgrades admin dashboard connections onto the ops event feed.
type OpsHandlers struct {
	broadcaster *messaging.OpsBroadcaster
	logger      *logging.ChanneledLogger
}

func NewOpsHandlers(broadcaster *messaging.OpsBroadcaster, logger *logging.ChanneledLogger) *OpsHandlers {
	return &OpsHandlers{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// HandleOpsSocket handles GET /api/v1/ops/ws
func (h *OpsHandlers) HandleOpsSocket(c *gin.Context) {
	conn, err := opsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.System().Warn("Ops websocket upgrade failed", "error", err.Error())
		return
	}

	client := &messaging.OpsClient{
		Conn: conn,
		Send: make(chan []byte, opsSendBuffer),
	}
	h.broadcaster.Register(client)
	go client.WritePump()

	// Drain inbound frames so pings are answered; the feed is one-way.
	go func() {
		defer h.broadcaster.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
