package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proplanet/ecoledger/core"
)

func TestClient_StreamChat(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Stream   bool   `json:"stream"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range []string{"", "Compost ", "it!"} {
			fmt.Fprintf(w, "data: {\"id\":\"1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "secret", Model: "test-model"})

	stream, err := c.StreamChat(context.Background(), []core.ChatMessage{
		{Role: core.RoleSystem, Content: "be green"},
		{Role: core.RoleUser, Content: "banana peel?"},
	})
	require.NoError(t, err)
	defer stream.Close()

	var text string
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		text += chunk
	}

	assert.Equal(t, "Compost it!", text)
	assert.Equal(t, "test-model", got.Model)
	assert.True(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestClient_StreamChat_UpstreamStatus(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusPaymentRequired, http.StatusBadGateway} {
		status := status
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				fmt.Fprint(w, `{"error":{"message":"nope","type":"gateway"}}`)
			}))
			defer srv.Close()

			c := New(Config{BaseURL: srv.URL, APIKey: "k"})
			_, err := c.StreamChat(context.Background(), []core.ChatMessage{{Role: core.RoleUser, Content: "hi"}})

			var gw *core.GatewayError
			require.ErrorAs(t, err, &gw)
			assert.Equal(t, status, gw.Status)
		})
	}
}
