package simulation

import (
	"time"

	"github.com/vsinha/factorysim/pkg/application/services/demand"
	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/validator"
)

// Config is fixed when the simulation is constructed
type Config struct {
	InitialDay               time.Time         `json:"initial_day"`
	DemandMean               float64           `json:"demand_mean" validate:"gte=0,lte=10000"`
	DemandStdDev             float64           `json:"demand_std_dev" validate:"gte=0,lte=10000"`
	DemandMinQuantity        entities.Quantity `json:"demand_min_quantity" validate:"gte=1"`
	DemandMaxQuantity        entities.Quantity `json:"demand_max_quantity" validate:"gtefield=DemandMinQuantity"`
	ProductionCapacityPerDay int               `json:"production_capacity_per_day" validate:"gte=1"`
	WarehouseCapacity        entities.Quantity `json:"warehouse_capacity" validate:"gte=0"`
	// Seed drives demand. Zero picks one from the wall clock.
	Seed uint64 `json:"seed"`
}

// DefaultConfig returns the stock settings starting on the given day
func DefaultConfig(initialDay time.Time) Config {
	opts := demand.DefaultOptions()
	return Config{
		InitialDay:               entities.Day(initialDay),
		DemandMean:               opts.Mean,
		DemandStdDev:             opts.StdDev,
		DemandMinQuantity:        opts.MinQuantity,
		DemandMaxQuantity:        opts.MaxQuantity,
		ProductionCapacityPerDay: 10,
		WarehouseCapacity:        1000,
	}
}

// Validate checks the struct tags and the start day
func (c Config) Validate() error {
	if c.InitialDay.IsZero() {
		return entities.NewValidationError("initial_day", "initial day is required")
	}
	return validator.Check(c)
}

func (c Config) demandOptions() demand.Options {
	return demand.Options{
		Mean:        c.DemandMean,
		StdDev:      c.DemandStdDev,
		MinQuantity: c.DemandMinQuantity,
		MaxQuantity: c.DemandMaxQuantity,
	}
}
