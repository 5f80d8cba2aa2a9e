package dto

import (
	"time"

	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// Step names the part of a tick that produced a failure
type Step string

const (
	StepDemand   Step = "demand"
	StepRelease  Step = "release"
	StepReceive  Step = "receive"
	StepComplete Step = "complete"
)

// Failure is a per-item error caught during a tick
type Failure struct {
	Step      Step               `json:"step"`
	OrderID   int64              `json:"order_id,omitempty"`
	ProductID entities.ProductID `json:"product_id,omitempty"`
	Reason    string             `json:"reason"`
	Err       error              `json:"-"`
}

// NewFailure captures err as a failed attempt
func NewFailure(step Step, orderID int64, productID entities.ProductID, err error) Failure {
	return Failure{Step: step, OrderID: orderID, ProductID: productID, Reason: err.Error(), Err: err}
}

// DayResult is returned by every tick
type DayResult struct {
	PreviousDate time.Time                  `json:"previous_date"`
	NewDate      time.Time                  `json:"new_date"`
	Events       []entities.Event           `json:"events"`
	Created      []entities.OrderID         `json:"created"`
	Released     []entities.OrderID         `json:"released"`
	Received     []entities.PurchaseOrderID `json:"received"`
	Completed    []entities.OrderID         `json:"completed"`
	Failures     []Failure                  `json:"failures"`
	TotalStock   entities.Quantity          `json:"total_stock"`
	OverCapacity bool                       `json:"over_capacity"`
}

// MaterialAvailability compares one material requirement with stock
type MaterialAvailability struct {
	ProductID  entities.ProductID `json:"product_id"`
	Name       string             `json:"name"`
	Required   entities.Quantity  `json:"required"`
	Available  entities.Quantity  `json:"available"`
	Sufficient bool               `json:"sufficient"`
}

// OrderMaterials is the availability view of one pending order
type OrderMaterials struct {
	Order      entities.ManufacturingOrder `json:"order"`
	Materials  []MaterialAvailability      `json:"materials"`
	CanProduce bool                        `json:"can_produce"`
}

// InventoryItem is a stock level joined with its product
type InventoryItem struct {
	ProductID entities.ProductID   `json:"product_id"`
	Name      string               `json:"name"`
	Kind      entities.ProductKind `json:"kind"`
	Quantity  entities.Quantity    `json:"quantity"`
}

// SupplierOffer is a supplier with the arrival date of an order placed today
type SupplierOffer struct {
	Supplier         entities.Supplier `json:"supplier"`
	EstimatedArrival time.Time         `json:"estimated_arrival"`
}
