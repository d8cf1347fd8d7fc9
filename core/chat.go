package core

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatStream yields assistant text chunks. Recv returns io.EOF once the
// upstream completes.
type ChatStream interface {
	Recv() (string, error)
	Close() error
}

// ChatStreamer is the port to a third-party completion endpoint.
// Implementations report upstream HTTP failures as *GatewayError.
type ChatStreamer interface {
	StreamChat(ctx context.Context, messages []ChatMessage) (ChatStream, error)
}
