package entities

import (
	"strings"
	"time"
)

// OrderID represents a unique manufacturing order identifier
type OrderID int64

// ManufacturingStatus represents the lifecycle position of a manufacturing order
type ManufacturingStatus int

const (
	Pending ManufacturingStatus = iota
	InProduction
	Completed
	Cancelled
)

// String method for ManufacturingStatus enum
func (s ManufacturingStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case InProduction:
		return "in_production"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseManufacturingStatus converts a textual status into a ManufacturingStatus
func ParseManufacturingStatus(s string) (ManufacturingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return Pending, nil
	case "in_production":
		return InProduction, nil
	case "completed":
		return Completed, nil
	case "cancelled":
		return Cancelled, nil
	default:
		return 0, NewValidationError("status", "unknown manufacturing status %q", s)
	}
}

func (s ManufacturingStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ManufacturingStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseManufacturingStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ManufacturingOrder requests production of a quantity of one finished product
type ManufacturingOrder struct {
	ID          OrderID             `json:"id"`
	CreatedAt   time.Time           `json:"created_at"`
	ProductID   ProductID           `json:"product_id"`
	Quantity    Quantity            `json:"quantity"`
	Status      ManufacturingStatus `json:"status"`
	ReleasedAt  *time.Time          `json:"released_at,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	CancelledAt *time.Time          `json:"cancelled_at,omitempty"`
}

// NewManufacturingOrder creates a validated pending ManufacturingOrder
func NewManufacturingOrder(productID ProductID, quantity Quantity, createdAt time.Time) (*ManufacturingOrder, error) {
	if productID <= 0 {
		return nil, NewValidationError("product_id", "product id must be positive, got %d", productID)
	}
	if quantity <= 0 {
		return nil, NewValidationError("quantity", "quantity must be positive, got %d", quantity)
	}

	return &ManufacturingOrder{
		CreatedAt: Day(createdAt),
		ProductID: productID,
		Quantity:  quantity,
		Status:    Pending,
	}, nil
}

func (o *ManufacturingOrder) stateError(op string) error {
	return &StateError{Entity: "manufacturing order", ID: int64(o.ID), Status: o.Status.String(), Operation: op}
}

// Release moves a pending order into production
func (o *ManufacturingOrder) Release(on time.Time) error {
	if o.Status != Pending {
		return o.stateError("release")
	}
	d := Day(on)
	o.Status = InProduction
	o.ReleasedAt = &d
	return nil
}

// Complete finishes an order that is in production
func (o *ManufacturingOrder) Complete(on time.Time) error {
	if o.Status != InProduction {
		return o.stateError("complete")
	}
	d := Day(on)
	o.Status = Completed
	o.CompletedAt = &d
	return nil
}

// Cancel withdraws a pending order
func (o *ManufacturingOrder) Cancel(on time.Time) error {
	if o.Status != Pending {
		return o.stateError("cancel")
	}
	d := Day(on)
	o.Status = Cancelled
	o.CancelledAt = &d
	return nil
}

// IsTerminal reports whether the order can no longer change status
func (o *ManufacturingOrder) IsTerminal() bool {
	return o.Status == Completed || o.Status == Cancelled
}
