package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vsinha/factorysim/pkg/application/services/simulation"
	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// ProductHandler serves product master data and stock
type ProductHandler struct {
	sim *simulation.Simulation
}

func NewProductHandler(sim *simulation.Simulation) *ProductHandler {
	return &ProductHandler{sim: sim}
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.sim.Products(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	p, err := h.sim.Product(c.UserContext(), entities.ProductID(id))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// Suppliers lists who sells the product and when an order placed today arrives
func (h *ProductHandler) Suppliers(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	offers, err := h.sim.SuppliersFor(c.UserContext(), entities.ProductID(id))
	if err != nil {
		return err
	}
	return c.JSON(offers)
}

// Inventory lists every product with its on-hand quantity
func (h *ProductHandler) Inventory(c *fiber.Ctx) error {
	items, err := h.sim.Inventory(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *ProductHandler) Stock(c *fiber.Ctx) error {
	id, err := idParam(c, "product_id")
	if err != nil {
		return err
	}
	item, err := h.sim.Stock(c.UserContext(), entities.ProductID(id))
	if err != nil {
		return err
	}
	return c.JSON(item)
}
