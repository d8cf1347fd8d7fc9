package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/proplanet/ecoledger/core"
)

// SystemPrompt keeps the assistant on platform and sustainability topics.
const SystemPrompt = `You are the Pro Planet Person assistant, a guide for an environmental sustainability platform.

Help users with:
- eco-tasks and how to complete them
- how eco-coins are earned and redeemed through UPI, PhonePe or GPay
- sustainable living, recycling and finding recycling centers
- the platform's features

Only answer questions about the platform, sustainability, the environment, recycling and eco-friendly practices. Keep answers short, positive and practical.

If a question is unrelated, reply: "I'm the Pro Planet Person assistant and I focus on environmental topics. How can I help you with sustainability, eco-tasks, or our platform features?"`

// Gateway messages returned to clients in place of upstream error bodies.
const (
	msgRateLimited  = "Rate limit exceeded. Please try again later."
	msgUnavailable  = "Service temporarily unavailable."
	msgGatewayError = "AI service error"
)

// Assistant relays a conversation to the completion gateway behind a fixed
// system prompt.
type Assistant struct {
	chat   core.ChatStreamer
	logger *slog.Logger
}

var _ core.AssistantHandler = (*Assistant)(nil)

func NewAssistant(chat core.ChatStreamer, opts Options) *Assistant {
	return &Assistant{chat: chat, logger: opts.logger()}
}

func (a *Assistant) Stream(ctx context.Context, messages []core.ChatMessage) (core.ChatStream, error) {
	if len(messages) == 0 {
		return nil, core.ErrEmptyConversation
	}

	conversation := make([]core.ChatMessage, 0, len(messages)+1)
	conversation = append(conversation, core.ChatMessage{Role: core.RoleSystem, Content: SystemPrompt})
	for _, m := range messages {
		if m.Role != core.RoleUser && m.Role != core.RoleAssistant {
			return nil, core.ErrInvalidChatRole
		}
		if strings.TrimSpace(m.Content) == "" {
			return nil, core.ErrEmptyConversation
		}
		conversation = append(conversation, m)
	}

	a.logger.Debug("relaying chat", "messages", len(messages))

	stream, err := a.chat.StreamChat(ctx, conversation)
	if err != nil {
		a.logger.Error("chat gateway failed", "error", err)
		return nil, gatewayError(err)
	}
	return stream, nil
}

// gatewayError hides upstream detail behind the three client-facing
// outcomes: rate limited, payment required, anything else.
func gatewayError(err error) *core.GatewayError {
	var gw *core.GatewayError
	if errors.As(err, &gw) {
		switch gw.Status {
		case http.StatusTooManyRequests:
			return &core.GatewayError{Status: http.StatusTooManyRequests, Message: msgRateLimited}
		case http.StatusPaymentRequired:
			return &core.GatewayError{Status: http.StatusPaymentRequired, Message: msgUnavailable}
		}
	}
	return &core.GatewayError{Status: http.StatusInternalServerError, Message: msgGatewayError}
}
