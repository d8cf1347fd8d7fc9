package fiber

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/proplanet/ecoledger/core"
)

const (
	localsSession = "session"
	localsBoard   = "board"

	BoardCookie = "eco_board"
	BoardHeader = "X-Eco-Board"

	boardCookieMaxAge = 30 * 24 * time.Hour
)

// requireAuth validates the token and stores the session data in the
// context for downstream handlers.
func (a *Adapter) requireAuth(c fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": core.ErrMissingAuthHeader.Error(),
		})
	}

	sessionData, err := a.ledger.Auth.GetSession(c.Context(), token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Locals(localsSession, sessionData)
	return c.Next()
}

// optionalAuth attaches session data when a valid token is present and
// otherwise lets the request through as anonymous.
func (a *Adapter) optionalAuth(c fiber.Ctx) error {
	if token := extractToken(c); token != "" {
		if sessionData, err := a.ledger.Auth.GetSession(c.Context(), token); err == nil {
			c.Locals(localsSession, sessionData)
		}
	}
	return c.Next()
}

// withBoard resolves the caller's task board from the board cookie or
// header, issuing a new board id when none is usable.
func (a *Adapter) withBoard(c fiber.Ctx) error {
	id := c.Cookies(BoardCookie)
	if id == "" {
		id = c.Get(BoardHeader)
	}

	board := a.ledger.Boards.Board(id)
	if board.ID != id {
		c.Cookie(&fiber.Cookie{
			Name:     BoardCookie,
			Value:    board.ID,
			Path:     "/",
			MaxAge:   int(boardCookieMaxAge.Seconds()),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	c.Set(BoardHeader, board.ID)

	c.Locals(localsBoard, board)
	return c.Next()
}

// sessionFrom returns the attached session data, or nil when anonymous.
func sessionFrom(c fiber.Ctx) *core.SessionData {
	return fiber.Locals[*core.SessionData](c, localsSession)
}

func boardFrom(c fiber.Ctx) *core.Board {
	return fiber.Locals[*core.Board](c, localsBoard)
}
