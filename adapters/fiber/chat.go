package fiber

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/proplanet/ecoledger/core"
)

type chatRequest struct {
	Messages []core.ChatMessage `json:"messages"`
}

type chatChunk struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chat relays the conversation to the assistant and streams the reply as
// server-sent events. Each event carries one role-tagged chunk; the stream
// ends with "data: [DONE]".
func (a *Adapter) chat(c fiber.Ctx) error {
	if a.ledger.Assistant == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "assistant is not configured",
		})
	}

	var req chatRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	stream, err := a.ledger.Assistant.Stream(c.Context(), req.Messages)
	if err != nil {
		var gw *core.GatewayError
		if errors.As(err, &gw) {
			return c.Status(gw.Status).JSON(gw)
		}
		return handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer stream.Close()

		for {
			content, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				fmt.Fprint(w, "data: [DONE]\n\n")
				_ = w.Flush()
				return
			}
			if err != nil {
				payload, _ := json.Marshal(fiber.Map{"error": "AI service error"})
				fmt.Fprintf(w, "event: error\ndata: %s\n\n", payload)
				_ = w.Flush()
				return
			}

			payload, _ := json.Marshal(chatChunk{Role: core.RoleAssistant, Content: content})
			fmt.Fprintf(w, "data: %s\n\n", payload)
			if err := w.Flush(); err != nil {
				// client went away
				return
			}
		}
	})
}
