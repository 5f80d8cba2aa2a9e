package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/vsinha/factorysim/pkg/application/services/simulation"
	"github.com/vsinha/factorysim/pkg/logger"
)

// RouterDeps are the dependencies of the HTTP surface
type RouterDeps struct {
	Simulation *simulation.Simulation
	Hub        *Hub
	AppName    string
	Log        *logger.Logger
}

// NewApp builds the fiber application with every route registered
func NewApp(deps RouterDeps) *fiber.App {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:               deps.AppName,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           60 * time.Second,
		ErrorHandler:          ErrorHandler(log.Named("http")),
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	Router(app, deps)
	return app
}

// Router registers the routes on app
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	simHandler := NewSimulationHandler(deps.Simulation)
	sim := app.Group("/simulation")
	sim.Get("/", simHandler.Status)
	sim.Post("/advance-day", simHandler.AdvanceDay)

	productHandler := NewProductHandler(deps.Simulation)
	products := app.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/suppliers", productHandler.Suppliers)

	inventory := app.Group("/inventory")
	inventory.Get("/", productHandler.Inventory)
	inventory.Get("/:product_id", productHandler.Stock)

	orderHandler := NewOrderHandler(deps.Simulation)
	manufacturing := app.Group("/orders/manufacturing")
	manufacturing.Get("/", orderHandler.ListManufacturing)
	manufacturing.Get("/pending", orderHandler.PendingWithMaterials)
	manufacturing.Get("/:id", orderHandler.GetManufacturing)
	manufacturing.Post("/", orderHandler.CreateManufacturing)
	manufacturing.Post("/:id/release", orderHandler.ReleaseManufacturing)
	manufacturing.Post("/:id/cancel", orderHandler.CancelManufacturing)

	purchase := app.Group("/orders/purchase")
	purchase.Get("/", orderHandler.ListPurchase)
	purchase.Get("/:id", orderHandler.GetPurchase)
	purchase.Post("/", orderHandler.CreatePurchase)
	purchase.Post("/:id/cancel", orderHandler.CancelPurchase)

	eventHandler := NewEventHandler(deps.Simulation)
	app.Get("/events", eventHandler.List)

	if deps.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(deps.Hub.Serve))
	}
}
