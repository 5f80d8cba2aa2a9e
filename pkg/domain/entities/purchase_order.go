package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderID represents a unique purchase order identifier
type PurchaseOrderID int64

// PurchaseStatus represents the lifecycle position of a purchase order
type PurchaseStatus int

const (
	Ordered PurchaseStatus = iota
	Received
	PurchaseCancelled
)

// String method for PurchaseStatus enum
func (s PurchaseStatus) String() string {
	switch s {
	case Ordered:
		return "ordered"
	case Received:
		return "received"
	case PurchaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParsePurchaseStatus converts a textual status into a PurchaseStatus
func ParsePurchaseStatus(s string) (PurchaseStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ordered":
		return Ordered, nil
	case "received":
		return Received, nil
	case "cancelled":
		return PurchaseCancelled, nil
	default:
		return 0, NewValidationError("status", "unknown purchase status %q", s)
	}
}

func (s PurchaseStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *PurchaseStatus) UnmarshalText(b []byte) error {
	parsed, err := ParsePurchaseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// PurchaseOrder buys a quantity of one raw material from one supplier
type PurchaseOrder struct {
	ID                    PurchaseOrderID `json:"id"`
	SupplierID            SupplierID      `json:"supplier_id"`
	ProductID             ProductID       `json:"product_id"`
	Quantity              Quantity        `json:"quantity"`
	UnitCost              decimal.Decimal `json:"unit_cost"`
	IssueDate             time.Time       `json:"issue_date"`
	EstimatedDeliveryDate time.Time       `json:"estimated_delivery_date"`
	Status                PurchaseStatus  `json:"status"`
	ReceivedAt            *time.Time      `json:"received_at,omitempty"`
	CancelledAt           *time.Time      `json:"cancelled_at,omitempty"`
}

// NewPurchaseOrder creates an ordered PurchaseOrder. The delivery date is
// fixed here from the supplier lead time and never recomputed.
func NewPurchaseOrder(supplier *Supplier, productID ProductID, quantity Quantity, issueDate time.Time) (*PurchaseOrder, error) {
	if supplier == nil {
		return nil, NewValidationError("supplier_id", "supplier is required")
	}
	if productID != supplier.ProductID {
		return nil, NewValidationError("product_id", "supplier %d does not supply product %d", supplier.ID, productID)
	}
	if quantity <= 0 {
		return nil, NewValidationError("quantity", "quantity must be positive, got %d", quantity)
	}

	issued := Day(issueDate)
	return &PurchaseOrder{
		SupplierID:            supplier.ID,
		ProductID:             productID,
		Quantity:              quantity,
		UnitCost:              supplier.UnitCost,
		IssueDate:             issued,
		EstimatedDeliveryDate: supplier.EstimatedArrival(issued),
		Status:                Ordered,
	}, nil
}

// TotalCost returns unit cost times quantity
func (o *PurchaseOrder) TotalCost() decimal.Decimal {
	return o.UnitCost.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// IsDue reports whether an ordered purchase has arrived by the given day
func (o *PurchaseOrder) IsDue(asOf time.Time) bool {
	return o.Status == Ordered && !o.EstimatedDeliveryDate.After(Day(asOf))
}

func (o *PurchaseOrder) stateError(op string) error {
	return &StateError{Entity: "purchase order", ID: int64(o.ID), Status: o.Status.String(), Operation: op}
}

// Receive marks an ordered purchase as delivered
func (o *PurchaseOrder) Receive(on time.Time) error {
	if o.Status != Ordered {
		return o.stateError("receive")
	}
	d := Day(on)
	o.Status = Received
	o.ReceivedAt = &d
	return nil
}

// Cancel withdraws an ordered purchase
func (o *PurchaseOrder) Cancel(on time.Time) error {
	if o.Status != Ordered {
		return o.stateError("cancel")
	}
	d := Day(on)
	o.Status = PurchaseCancelled
	o.CancelledAt = &d
	return nil
}
