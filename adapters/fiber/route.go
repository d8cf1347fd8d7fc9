package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/proplanet/ecoledger/core"
)

type Adapter struct {
	app     *fiber.App
	ledger  *core.Ledger
	metrics fiber.Handler
}

var _ core.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app}
}

// WithMetrics exposes h (typically promhttp) under GET <base>/metrics.
func (a *Adapter) WithMetrics(h http.Handler) *Adapter {
	a.metrics = adaptor.HTTPHandler(h)
	return a
}

func (a *Adapter) RegisterRoutes(ledger *core.Ledger) error {
	a.ledger = ledger
	api := a.app.Group(ledger.BasePath)

	api.Get("/health", a.health)
	if a.metrics != nil {
		api.Get("/metrics", a.metrics)
	}

	// Auth
	auth := api.Group("/auth")
	auth.Post("/sign-up", a.signup)
	auth.Post("/sign-in", a.signin)
	auth.Post("/sign-out", a.signout)
	auth.Get("/session", a.requireAuth, a.session)

	// Task board, usable anonymously
	tasks := api.Group("/tasks", a.optionalAuth, a.withBoard)
	tasks.Get("/", a.listTasks)
	tasks.Post("/", a.addTask)
	tasks.Get("/coins", a.localCoins)
	tasks.Post("/:id/complete", a.completeTask)
	tasks.Delete("/:id", a.deleteTask)

	// Redemptions enforce auth in the service
	redemptions := api.Group("/redemptions", a.optionalAuth, a.withBoard)
	redemptions.Post("/", a.redeem)
	redemptions.Get("/", a.history)

	api.Post("/feedback", a.optionalAuth, a.feedback)
	api.Get("/facilities", a.facilities)
	api.Post("/chat", a.chat)

	return nil
}
