package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/codefix-ai/maestro/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Dashboard runs on a different origin
		return true
	},
}

// Handler streams execution events to WebSocket clients
type Handler struct {
	bus    ports.EventBus
	logger *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(bus ports.EventBus, logger *zap.Logger) *Handler {
	return &Handler{
		bus:    bus,
		logger: logger,
	}
}

// streamFrame is the wire format sent to subscribers
type streamFrame struct {
	Type        string                 `json:"type"`
	ExecutionID string                 `json:"execution_id"`
	Timestamp   time.Time              `json:"timestamp"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

// HandleExecutionStream upgrades the connection and forwards events for
// one execution until the client disconnects
func (h *Handler) HandleExecutionStream(c *gin.Context) {
	executionID := c.Param("id")
	if executionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "execution id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Info("execution stream opened",
		zap.String("execution_id", executionID),
		zap.String("remote_addr", conn.RemoteAddr().String()))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	frames := make(chan streamFrame, 64)
	err = h.bus.Subscribe(ctx, ports.TopicExecutionEvents, func(ctx context.Context, event ports.Event) error {
		if event.ExecutionID != executionID {
			return nil
		}
		frame := streamFrame{
			Type:        string(event.Type),
			ExecutionID: event.ExecutionID,
			Timestamp:   event.Timestamp,
			Payload:     event.Data,
		}
		select {
		case frames <- frame:
		default:
			h.logger.Warn("dropping event for slow subscriber",
				zap.String("execution_id", executionID))
		}
		return nil
	})
	if err != nil {
		h.logger.Error("failed to subscribe to events", zap.Error(err))
		return
	}

	// Reader goroutine detects client disconnect
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("execution stream closed",
				zap.String("execution_id", executionID))
			return
		case <-pingTicker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case frame := <-frames:
			data, err := json.Marshal(frame)
			if err != nil {
				h.logger.Error("failed to encode event", zap.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Warn("failed to write event, closing stream",
					zap.String("execution_id", executionID),
					zap.Error(err))
				return
			}
		}
	}
}
