package commands

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/factorysim/pkg/application/services/demand"
	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/factorysim/pkg/infrastructure/seed"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	FinishedProducts int     // Number of finished products
	Materials        int     // Number of raw materials
	MaxComponents    int     // Most distinct materials in one BOM
	Inventory        float64 // Opening stock multiplier (1.0 = about forty units per material)
	OutputDir        string
	Seed             uint64 // Zero picks one from the wall clock
	Verbose          bool
	Out              io.Writer
}

// GenerateCommand writes a random factory scenario as CSV files
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	if config.Seed == 0 {
		config.Seed = uint64(time.Now().UnixNano())
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}
	return &GenerateCommand{
		config: config,
		rand:   demand.NewSource(config.Seed),
	}
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(_ context.Context) error {
	if err := cmd.validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.config.Out,
			"🔧 Generating scenario with %d finished products, %d materials, up to %d components, %.1fx inventory\n",
			cmd.config.FinishedProducts, cmd.config.Materials, cmd.config.MaxComponents, cmd.config.Inventory)
		fmt.Fprintf(cmd.config.Out, "📁 Output directory: %s\n", cmd.config.OutputDir)
		fmt.Fprintf(cmd.config.Out, "🎲 Random seed: %d\n", cmd.config.Seed)
	}

	d := cmd.generate()
	if err := d.Validate(); err != nil {
		return fmt.Errorf("generated scenario is invalid: %w", err)
	}
	if err := csv.WriteDataset(cmd.config.OutputDir, d); err != nil {
		return err
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.config.Out, "✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) validate() error {
	switch {
	case cmd.config.OutputDir == "":
		return fmt.Errorf("output directory is required")
	case cmd.config.FinishedProducts < 1:
		return fmt.Errorf("need at least one finished product")
	case cmd.config.Materials < 1:
		return fmt.Errorf("need at least one material")
	case cmd.config.MaxComponents < 1:
		return fmt.Errorf("max components must be positive")
	case cmd.config.Inventory < 0:
		return fmt.Errorf("inventory multiplier cannot be negative")
	}
	return nil
}

// generate builds a two-level catalogue: finished products first, then
// materials, each material with one or two suppliers
func (cmd *GenerateCommand) generate() seed.Dataset {
	var d seed.Dataset
	r := cmd.rand

	nextID := entities.ProductID(1)
	finished := make([]entities.ProductID, 0, cmd.config.FinishedProducts)
	for i := 0; i < cmd.config.FinishedProducts; i++ {
		d.Products = append(d.Products, entities.Product{
			ID: nextID, Name: fmt.Sprintf("ASSEMBLY_%03d", i+1), Kind: entities.FinishedGood,
		})
		finished = append(finished, nextID)
		nextID++
	}
	materials := make([]entities.ProductID, 0, cmd.config.Materials)
	for i := 0; i < cmd.config.Materials; i++ {
		d.Products = append(d.Products, entities.Product{
			ID: nextID, Name: fmt.Sprintf("PART_%04d", i+1), Kind: entities.RawMaterial,
		})
		materials = append(materials, nextID)
		nextID++
	}

	for _, f := range finished {
		n := 1 + r.IntN(min(cmd.config.MaxComponents, len(materials)))
		for _, i := range r.Perm(len(materials))[:n] {
			d.BOM = append(d.BOM, entities.BOMEntry{
				FinishedProductID: f,
				MaterialID:        materials[i],
				Quantity:          entities.Quantity(1 + r.IntN(3)),
			})
		}
	}

	supplierID := entities.SupplierID(1)
	for i, m := range materials {
		for range 1 + r.IntN(2) {
			d.Suppliers = append(d.Suppliers, entities.Supplier{
				ID:           supplierID,
				Name:         fmt.Sprintf("SUPPLIER_%03d", supplierID),
				ProductID:    m,
				UnitCost:     decimal.New(int64(100+r.IntN(9900)), -2),
				LeadTimeDays: 1 + r.IntN(7),
			})
			supplierID++
		}
		qty := entities.Quantity(cmd.config.Inventory * float64(20+r.IntN(41)))
		if qty > 0 {
			d.Stock = append(d.Stock, entities.StockLevel{ProductID: materials[i], Quantity: qty})
		}
	}
	return d
}
