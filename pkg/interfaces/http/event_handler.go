package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vsinha/factorysim/pkg/application/services/simulation"
	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// EventHandler serves the event log
type EventHandler struct {
	sim *simulation.Simulation
}

func NewEventHandler(sim *simulation.Simulation) *EventHandler {
	return &EventHandler{sim: sim}
}

// List filters by ?type= and the simulated ?start= and ?end= dates (inclusive)
func (h *EventHandler) List(c *fiber.Ctx) error {
	var filter entities.EventFilter
	if s := c.Query("type"); s != "" {
		t, err := entities.ParseEventType(s)
		if err != nil {
			return err
		}
		filter.Type = t
	}
	r, err := dateRange(c)
	if err != nil {
		return err
	}
	filter.Range = r

	list, err := h.sim.Events(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(list)
}
