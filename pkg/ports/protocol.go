package ports

import "context"

// ConnectionStatus describes a protocol server connection
type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
)

// ProtocolClient talks to external tool servers over a persistent
// connection. Protocol node handlers call Call; connection lifecycle is
// managed explicitly by the host application.
type ProtocolClient interface {
	Connect(ctx context.Context, serverID string) error
	Disconnect(ctx context.Context, serverID string) error
	Status(serverID string) ConnectionStatus
	Call(ctx context.Context, serverID, toolName string, args map[string]interface{}) (map[string]interface{}, error)
}
