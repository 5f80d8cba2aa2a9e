package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vsinha/factorysim/pkg/application/dto"
	"github.com/vsinha/factorysim/pkg/application/services/simulation"
	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// OrderHandler serves manufacturing and purchase orders
type OrderHandler struct {
	sim *simulation.Simulation
}

func NewOrderHandler(sim *simulation.Simulation) *OrderHandler {
	return &OrderHandler{sim: sim}
}

// ListManufacturing lists orders, optionally filtered by ?status=
func (h *OrderHandler) ListManufacturing(c *fiber.Ctx) error {
	var status *entities.ManufacturingStatus
	if s := c.Query("status"); s != "" {
		parsed, err := entities.ParseManufacturingStatus(s)
		if err != nil {
			return err
		}
		status = &parsed
	}
	orders, err := h.sim.ManufacturingOrders(c.UserContext(), status)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// PendingWithMaterials lists pending orders with per-material availability
func (h *OrderHandler) PendingWithMaterials(c *fiber.Ctx) error {
	views, err := h.sim.PendingOrdersWithMaterials(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(views)
}

func (h *OrderHandler) GetManufacturing(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.sim.ManufacturingOrder(c.UserContext(), entities.OrderID(id))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func (h *OrderHandler) CreateManufacturing(c *fiber.Ctx) error {
	var in dto.CreateManufacturingOrderRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	order, err := h.sim.CreateManufacturingOrder(c.UserContext(), entities.ProductID(in.ProductID), entities.Quantity(in.Quantity))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) ReleaseManufacturing(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.sim.ReleaseManufacturingOrder(c.UserContext(), entities.OrderID(id))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func (h *OrderHandler) CancelManufacturing(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.sim.CancelManufacturingOrder(c.UserContext(), entities.OrderID(id))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// ListPurchase lists purchase orders, optionally filtered by ?status=
func (h *OrderHandler) ListPurchase(c *fiber.Ctx) error {
	var status *entities.PurchaseStatus
	if s := c.Query("status"); s != "" {
		parsed, err := entities.ParsePurchaseStatus(s)
		if err != nil {
			return err
		}
		status = &parsed
	}
	orders, err := h.sim.PurchaseOrders(c.UserContext(), status)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

func (h *OrderHandler) GetPurchase(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.sim.PurchaseOrder(c.UserContext(), entities.PurchaseOrderID(id))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func (h *OrderHandler) CreatePurchase(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	order, err := h.sim.CreatePurchaseOrder(c.UserContext(),
		entities.SupplierID(in.SupplierID), entities.ProductID(in.ProductID), entities.Quantity(in.Quantity))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) CancelPurchase(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.sim.CancelPurchaseOrder(c.UserContext(), entities.PurchaseOrderID(id))
	if err != nil {
		return err
	}
	return c.JSON(order)
}
