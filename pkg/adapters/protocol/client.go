// Package protocol implements the protocol client for external tool
// servers. Servers are addressed by id and spoken to over a WebSocket
// carrying JSON-RPC style frames; calls are synchronous per connection.
package protocol

import (
	"context"
	"fmt"
	"sync"

	"github.com/codefix-ai/maestro/pkg/ports"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// request is the frame sent for a tool call
type request struct {
	ID     int64                  `json:"id"`
	Method string                 `json:"method"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// response is the frame received for a tool call
type response struct {
	ID     int64                  `json:"id"`
	Result map[string]interface{} `json:"result,omitempty"`
	Error  *responseError         `json:"error,omitempty"`
}

type responseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// serverConn is one live connection to a tool server
type serverConn struct {
	mu     sync.Mutex
	ws     *websocket.Conn
	nextID int64
}

// Client implements ports.ProtocolClient over WebSocket connections
type Client struct {
	mu      sync.RWMutex
	servers map[string]string // server id -> ws URL
	conns   map[string]*serverConn
	logger  *zap.Logger
}

// NewClient creates a protocol client for the configured servers
func NewClient(servers map[string]string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		servers: servers,
		conns:   make(map[string]*serverConn),
		logger:  logger,
	}
}

// Connect dials the server's WebSocket endpoint
func (c *Client) Connect(ctx context.Context, serverID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.conns[serverID]; ok {
		return nil
	}
	url, ok := c.servers[serverID]
	if !ok {
		return fmt.Errorf("unknown protocol server: %s", serverID)
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", serverID, err)
	}
	c.conns[serverID] = &serverConn{ws: ws}

	c.logger.Info("protocol server connected",
		zap.String("server_id", serverID),
		zap.String("url", url))
	return nil
}

// Disconnect closes the server connection if open
func (c *Client) Disconnect(ctx context.Context, serverID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.conns[serverID]
	if !ok {
		return nil
	}
	delete(c.conns, serverID)
	if err := conn.ws.Close(); err != nil {
		return fmt.Errorf("failed to close connection to %s: %w", serverID, err)
	}
	c.logger.Info("protocol server disconnected", zap.String("server_id", serverID))
	return nil
}

// Status reports the connection state for a server
func (c *Client) Status(serverID string) ports.ConnectionStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.conns[serverID]; ok {
		return ports.ConnectionStatusConnected
	}
	return ports.ConnectionStatusDisconnected
}

// Call invokes a tool on a connected server and waits for its reply
func (c *Client) Call(ctx context.Context, serverID, toolName string, args map[string]interface{}) (map[string]interface{}, error) {
	c.mu.RLock()
	conn, ok := c.conns[serverID]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("server %s is not connected", serverID)
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()

	conn.nextID++
	req := request{
		ID:     conn.nextID,
		Method: "tools/call",
		Params: map[string]interface{}{
			"name":      toolName,
			"arguments": args,
		},
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.ws.SetWriteDeadline(deadline)
		_ = conn.ws.SetReadDeadline(deadline)
	}
	if err := conn.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", serverID, err)
	}

	// Calls are serialized per connection, so the next frame is ours
	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to read response from %s: %w", serverID, err)
		}
		var resp response
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("invalid response from %s: %w", serverID, err)
		}
		if resp.ID != req.ID {
			c.logger.Warn("discarding stale protocol frame",
				zap.String("server_id", serverID),
				zap.Int64("frame_id", resp.ID))
			continue
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("tool %s on %s failed: %s", toolName, serverID, resp.Error.Message)
		}
		return resp.Result, nil
	}
}
