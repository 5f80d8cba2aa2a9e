package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SupplierID represents a unique supplier identifier
type SupplierID int64

// Supplier offers one raw material at a fixed unit cost and lead time
type Supplier struct {
	ID           SupplierID      `json:"id"`
	Name         string          `json:"name"`
	ProductID    ProductID       `json:"product_id"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LeadTimeDays int             `json:"lead_time_days"`
}

// NewSupplier creates a validated Supplier
func NewSupplier(id SupplierID, name string, productID ProductID, unitCost decimal.Decimal, leadTimeDays int) (*Supplier, error) {
	if id < 0 {
		return nil, NewValidationError("id", "supplier id cannot be negative, got %d", id)
	}
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("name", "supplier name cannot be empty")
	}
	if productID <= 0 {
		return nil, NewValidationError("product_id", "product id must be positive, got %d", productID)
	}
	if unitCost.IsNegative() {
		return nil, NewValidationError("unit_cost", "unit cost cannot be negative, got %s", unitCost)
	}
	if leadTimeDays < 0 {
		return nil, NewValidationError("lead_time_days", "lead time cannot be negative, got %d", leadTimeDays)
	}

	return &Supplier{
		ID:           id,
		Name:         name,
		ProductID:    productID,
		UnitCost:     unitCost,
		LeadTimeDays: leadTimeDays,
	}, nil
}

// EstimatedArrival returns the delivery date of an order issued on the given day
func (s *Supplier) EstimatedArrival(issued time.Time) time.Time {
	return AddDays(issued, s.LeadTimeDays)
}
