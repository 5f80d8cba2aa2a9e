package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/validator"
)

// idParam reads a positive integer path parameter
func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, entities.NewValidationError(name, "%s must be a positive integer, got %q", name, c.Params(name))
	}
	return int64(id), nil
}

// parseBody decodes a JSON body and checks its validate tags
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return badBody(err)
	}
	return validator.Check(out)
}

// dateRange reads the optional start and end query parameters
func dateRange(c *fiber.Ctx) (entities.DateRange, error) {
	var r entities.DateRange
	if s := c.Query("start"); s != "" {
		d, err := entities.ParseDate(s)
		if err != nil {
			return r, err
		}
		r.Start = d
	}
	if s := c.Query("end"); s != "" {
		d, err := entities.ParseDate(s)
		if err != nil {
			return r, err
		}
		r.End = d
	}
	return r, r.Validate()
}
