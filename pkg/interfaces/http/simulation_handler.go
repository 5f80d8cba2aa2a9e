package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/vsinha/factorysim/pkg/application/services/simulation"
	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// SimulationHandler serves the clock and the tick
type SimulationHandler struct {
	sim *simulation.Simulation
}

func NewSimulationHandler(sim *simulation.Simulation) *SimulationHandler {
	return &SimulationHandler{sim: sim}
}

// statusResponse describes the running simulation
type statusResponse struct {
	RunID             uuid.UUID         `json:"run_id"`
	CurrentDate       string            `json:"current_date"`
	RemainingCapacity int               `json:"remaining_capacity"`
	Config            simulation.Config `json:"config"`
}

// Status returns the current date, the remaining release capacity and the config
func (h *SimulationHandler) Status(c *fiber.Ctx) error {
	return c.JSON(statusResponse{
		RunID:             h.sim.RunID(),
		CurrentDate:       entities.FormatDate(h.sim.CurrentDate()),
		RemainingCapacity: h.sim.RemainingCapacity(),
		Config:            h.sim.Config(),
	})
}

// AdvanceDay runs one tick and returns its DayResult
func (h *SimulationHandler) AdvanceDay(c *fiber.Ctx) error {
	result, err := h.sim.AdvanceDay(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(result)
}
