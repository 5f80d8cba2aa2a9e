package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
	"github.com/vsinha/factorysim/pkg/domain/services"
)

// InitialStockReason tags the stock_changed events written while seeding
const InitialStockReason = "initial stock"

// Dataset is a complete factory catalogue with its opening stock
type Dataset struct {
	Products  []entities.Product
	BOM       []entities.BOMEntry
	Suppliers []entities.Supplier
	Stock     []entities.StockLevel
}

// StockAdjuster applies opening stock through the ledger
type StockAdjuster interface {
	TryAdjust(ctx context.Context, id entities.ProductID, delta entities.Quantity, reason string) (entities.Quantity, error)
}

// PrinterFactory returns the default 3D printer assembly plant
func PrinterFactory() Dataset {
	return Dataset{
		Products: []entities.Product{
			{ID: 1, Name: "P3D-Classic", Kind: entities.FinishedGood},
			{ID: 2, Name: "P3D-Pro", Kind: entities.FinishedGood},
			{ID: 3, Name: "kit_piezas", Kind: entities.RawMaterial},
			{ID: 4, Name: "pcb_CTRL-V2", Kind: entities.RawMaterial},
			{ID: 5, Name: "pcb_CTRL-V3", Kind: entities.RawMaterial},
			{ID: 6, Name: "extrusor", Kind: entities.RawMaterial},
			{ID: 7, Name: "sensor_autonivel", Kind: entities.RawMaterial},
			{ID: 8, Name: "cables_conexion", Kind: entities.RawMaterial},
			{ID: 9, Name: "transformador_24v", Kind: entities.RawMaterial},
			{ID: 10, Name: "enchufe_schuko", Kind: entities.RawMaterial},
		},
		BOM: []entities.BOMEntry{
			{FinishedProductID: 1, MaterialID: 3, Quantity: 1},
			{FinishedProductID: 1, MaterialID: 4, Quantity: 1},
			{FinishedProductID: 1, MaterialID: 6, Quantity: 1},
			{FinishedProductID: 1, MaterialID: 8, Quantity: 2},
			{FinishedProductID: 1, MaterialID: 9, Quantity: 1},
			{FinishedProductID: 1, MaterialID: 10, Quantity: 1},
			{FinishedProductID: 2, MaterialID: 3, Quantity: 1},
			{FinishedProductID: 2, MaterialID: 5, Quantity: 1},
			{FinishedProductID: 2, MaterialID: 6, Quantity: 1},
			{FinishedProductID: 2, MaterialID: 7, Quantity: 1},
			{FinishedProductID: 2, MaterialID: 8, Quantity: 3},
			{FinishedProductID: 2, MaterialID: 9, Quantity: 1},
			{FinishedProductID: 2, MaterialID: 10, Quantity: 1},
		},
		Suppliers: []entities.Supplier{
			{ID: 1, Name: "ElectroPlastic S.A.", ProductID: 3, UnitCost: decimal.NewFromInt(90), LeadTimeDays: 3},
			{ID: 2, Name: "PCB Factory", ProductID: 4, UnitCost: decimal.NewFromInt(45), LeadTimeDays: 5},
			{ID: 3, Name: "PCB Factory", ProductID: 5, UnitCost: decimal.NewFromInt(65), LeadTimeDays: 5},
			{ID: 4, Name: "ExtruTech", ProductID: 6, UnitCost: decimal.NewFromInt(35), LeadTimeDays: 2},
			{ID: 5, Name: "SensorTech", ProductID: 7, UnitCost: decimal.NewFromInt(25), LeadTimeDays: 4},
			{ID: 6, Name: "CableMaker", ProductID: 8, UnitCost: decimal.NewFromInt(3), LeadTimeDays: 1},
			{ID: 7, Name: "PowerSupply Inc", ProductID: 9, UnitCost: decimal.NewFromInt(18), LeadTimeDays: 3},
			{ID: 8, Name: "ConnectAll", ProductID: 10, UnitCost: decimal.NewFromInt(2), LeadTimeDays: 2},
			{ID: 9, Name: "Global Plastics", ProductID: 3, UnitCost: decimal.NewFromInt(105), LeadTimeDays: 2},
		},
		Stock: []entities.StockLevel{
			{ProductID: 3, Quantity: 30},
			{ProductID: 4, Quantity: 25},
			{ProductID: 5, Quantity: 15},
			{ProductID: 6, Quantity: 40},
			{ProductID: 7, Quantity: 20},
			{ProductID: 8, Quantity: 100},
			{ProductID: 9, Quantity: 30},
			{ProductID: 10, Quantity: 50},
		},
	}
}

// Validate checks the catalogue for structural errors
func (d Dataset) Validate() error {
	v := services.NewBOMValidator()

	var errs []string
	errs = append(errs, v.ValidateProductUniqueness(d.Products).Errors...)
	errs = append(errs, v.ValidateBOM(d.Products, d.BOM).Errors...)
	errs = append(errs, v.ValidateSuppliers(d.Products, d.Suppliers).Errors...)
	for _, s := range d.Stock {
		if s.Quantity < 0 {
			errs = append(errs, fmt.Sprintf("opening stock of product %d cannot be negative", s.ProductID))
		}
	}

	if len(errs) > 0 {
		return entities.NewValidationError("dataset", "%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load validates the dataset and writes it to the stores. Opening stock goes
// through the adjuster so that it is recorded like any other movement.
func Load(ctx context.Context, stores repositories.Stores, d Dataset, stock StockAdjuster) error {
	if err := d.Validate(); err != nil {
		return err
	}

	for i := range d.Products {
		if _, err := stores.Products.Add(ctx, &d.Products[i]); err != nil {
			return fmt.Errorf("add product %d: %w", d.Products[i].ID, err)
		}
	}
	for i := range d.BOM {
		if _, err := stores.BOM.Add(ctx, &d.BOM[i]); err != nil {
			return fmt.Errorf("add bom entry %d -> %d: %w", d.BOM[i].FinishedProductID, d.BOM[i].MaterialID, err)
		}
	}
	for i := range d.Suppliers {
		if _, err := stores.Suppliers.Add(ctx, &d.Suppliers[i]); err != nil {
			return fmt.Errorf("add supplier %d: %w", d.Suppliers[i].ID, err)
		}
	}
	for _, s := range d.Stock {
		if s.Quantity == 0 {
			continue
		}
		if _, err := stock.TryAdjust(ctx, s.ProductID, s.Quantity, InitialStockReason); err != nil {
			return fmt.Errorf("opening stock of product %d: %w", s.ProductID, err)
		}
	}
	return nil
}
