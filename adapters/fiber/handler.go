package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/proplanet/ecoledger/core"
)

const authCookie = "auth_token"

func (a *Adapter) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ============================================
// Auth
// ============================================

func (a *Adapter) signup(c fiber.Ctx) error {
	var input core.SignUpInput
	if err := c.Bind().Body(&input); err != nil {
		return badBody(c)
	}

	result, err := a.ledger.Auth.SignUp(c.Context(), input, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(result)
}

func (a *Adapter) signin(c fiber.Ctx) error {
	var input core.SignInInput
	if err := c.Bind().Body(&input); err != nil {
		return badBody(c)
	}

	result, err := a.ledger.Auth.SignIn(c.Context(), input, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(result)
}

// signout succeeds for anonymous callers and already-destroyed tokens.
func (a *Adapter) signout(c fiber.Ctx) error {
	c.ClearCookie(authCookie)

	if err := a.ledger.Auth.SignOut(c.Context(), extractToken(c)); err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "signed out successfully",
	})
}

func (a *Adapter) session(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(sessionFrom(c))
}

// ============================================
// Tasks
// ============================================

type addTaskRequest struct {
	Title    string        `json:"title"`
	Category core.Category `json:"category"`
	Impact   string        `json:"impact"`
}

func (a *Adapter) listTasks(c fiber.Ctx) error {
	board := boardFrom(c)
	tasks := a.ledger.Tasks.Tasks(board, core.Category(c.Query("category")))

	return c.JSON(fiber.Map{
		"tasks": tasks,
		"coins": board.LocalCoins(),
	})
}

func (a *Adapter) addTask(c fiber.Ctx) error {
	var req addTaskRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(c)
	}

	task, err := a.ledger.Tasks.AddTask(boardFrom(c), req.Title, req.Category, req.Impact)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(task)
}

func (a *Adapter) completeTask(c fiber.Ctx) error {
	board := boardFrom(c)
	sess := sessionFrom(c)

	awarded, err := a.ledger.Tasks.CompleteTask(c.Context(), board, sess, c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	res := fiber.Map{
		"awarded": awarded,
		"coins":   board.LocalCoins(),
	}
	if sess != nil {
		res["balance"] = sess.User.EcoCoins
	}
	return c.JSON(res)
}

func (a *Adapter) deleteTask(c fiber.Ctx) error {
	deleted := a.ledger.Tasks.DeleteTask(boardFrom(c), c.Params("id"))
	return c.JSON(fiber.Map{"deleted": deleted})
}

func (a *Adapter) localCoins(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"coins": boardFrom(c).LocalCoins()})
}

// ============================================
// Redemptions
// ============================================

func (a *Adapter) redeem(c fiber.Ctx) error {
	var input core.RedeemInput
	if err := c.Bind().Body(&input); err != nil {
		return badBody(c)
	}

	result, err := a.ledger.Redemptions.Redeem(c.Context(), sessionFrom(c), input)
	if err != nil {
		return handleError(c, err)
	}
	boardFrom(c).Debit(result.Redemption.Coins)

	return c.Status(http.StatusCreated).JSON(result)
}

func (a *Adapter) history(c fiber.Ctx) error {
	records, err := a.ledger.Redemptions.History(c.Context(), sessionFrom(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(fiber.Map{"redemptions": records})
}

// ============================================
// Feedback and facilities
// ============================================

func (a *Adapter) feedback(c fiber.Ctx) error {
	var input core.FeedbackInput
	if err := c.Bind().Body(&input); err != nil {
		return badBody(c)
	}

	fb, err := a.ledger.Feedback.Submit(c.Context(), sessionFrom(c), input)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fb)
}

func (a *Adapter) facilities(c fiber.Ctx) error {
	list := a.ledger.Facilities.List(core.FacilityKind(c.Query("type")), c.Query("q"))
	return c.JSON(fiber.Map{"facilities": list})
}

// ============================================
// Helpers
// ============================================

// extractToken extracts the authentication token from the request.
// Checks Authorization header (Bearer token) first, then falls back to cookie.
func extractToken(c fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}

	return c.Cookies(authCookie)
}

func badBody(c fiber.Ctx) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{
		"error": "invalid request body",
	})
}

// handleError maps ledger errors to appropriate HTTP responses
func handleError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// mapErrorToStatus maps core error types to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var gw *core.GatewayError
	if errors.As(err, &gw) {
		return gw.Status
	}

	switch {
	case errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrNotAuthenticated),
		errors.Is(err, core.ErrMissingAuthHeader),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrSessionExpired):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrDuplicateEmail):
		return http.StatusConflict

	case errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrPasswordRequired),
		errors.Is(err, core.ErrPasswordTooShort),
		errors.Is(err, core.ErrPasswordTooLong),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrMissingDestination),
		errors.Is(err, core.ErrInvalidPayoutMethod),
		errors.Is(err, core.ErrTitleRequired),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrRatingRequired),
		errors.Is(err, core.ErrFeedbackRequired),
		errors.Is(err, core.ErrInvalidFeedbackType),
		errors.Is(err, core.ErrEmptyConversation),
		errors.Is(err, core.ErrInvalidChatRole):
		return http.StatusBadRequest

	case errors.Is(err, core.ErrBelowMinimum),
		errors.Is(err, core.ErrInsufficientBalance),
		errors.Is(err, core.ErrNotEnvironmental):
		return http.StatusUnprocessableEntity

	case errors.Is(err, core.ErrRedemptionInProgress):
		return http.StatusTooManyRequests

	default:
		return http.StatusInternalServerError
	}
}
