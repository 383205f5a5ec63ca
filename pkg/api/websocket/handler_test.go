package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	eventsmemory "github.com/codefix-ai/maestro/pkg/adapters/events/memory"
	"github.com/codefix-ai/maestro/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExecutionStreamFiltersByExecution(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bus := eventsmemory.NewEventBus()
	handler := NewHandler(bus, zap.NewNop())

	router := gin.New()
	router.GET("/executions/:id/ws", handler.HandleExecutionStream)

	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/executions/exec-1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Publish until the handler's subscription picks the event up. Events
	// for a different execution are interleaved and must never surface.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bus.Publish(context.Background(), ports.TopicExecutionEvents, ports.Event{
					ID:          "other",
					Type:        ports.EventTypeStatusChanged,
					Timestamp:   time.Now(),
					ExecutionID: "exec-2",
				})
				_ = bus.Publish(context.Background(), ports.TopicExecutionEvents, ports.Event{
					ID:          "mine",
					Type:        ports.EventTypeStepCompleted,
					Timestamp:   time.Now(),
					ExecutionID: "exec-1",
					Data:        map[string]interface{}{"step_id": "s1"},
				})
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame struct {
		Type        string                 `json:"type"`
		ExecutionID string                 `json:"execution_id"`
		Payload     map[string]interface{} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(payload, &frame))
	assert.Equal(t, "exec-1", frame.ExecutionID)
	assert.Equal(t, string(ports.EventTypeStepCompleted), frame.Type)
	assert.Equal(t, "s1", frame.Payload["step_id"])
}
