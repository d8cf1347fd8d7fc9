// Package openai relays assistant conversations to any OpenAI-compatible
// chat completion gateway.
package openai

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/proplanet/ecoledger/core"
)

const DefaultModel = "google/gemini-2.5-flash"

type Config struct {
	BaseURL string // e.g. https://ai.gateway.example/v1; empty uses api.openai.com
	APIKey  string
	Model   string
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

type Client struct {
	client *openai.Client
	model  string
}

var _ core.ChatStreamer = (*Client)(nil)

func New(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Client{client: openai.NewClientWithConfig(oc), model: cfg.Model}
}

func (c *Client) StreamChat(ctx context.Context, messages []core.ChatMessage) (core.ChatStream, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
		Stream:   true,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, asGatewayError(err)
	}
	return &chatStream{stream: stream}, nil
}

type chatStream struct {
	stream *openai.ChatCompletionStream
}

// Recv skips chunks without text (role headers, finish markers).
func (s *chatStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", asGatewayError(err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		return resp.Choices[0].Delta.Content, nil
	}
}

func (s *chatStream) Close() error {
	return s.stream.Close()
}

func asGatewayError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &core.GatewayError{Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &core.GatewayError{Status: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return err
}
