package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidState      = errors.New("invalid state transition")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("not found")
)

// ValidationError reports a malformed request, an unknown product or a
// non-positive quantity.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StateError reports an operation attempted on an order whose status forbids it.
type StateError struct {
	Entity    string
	ID        int64
	Status    string
	Operation string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s %s %d in status %s", e.Operation, e.Entity, e.ID, e.Status)
}

func (e *StateError) Is(target error) bool { return target == ErrInvalidState }

// Shortage describes one material that cannot cover its requirement.
type Shortage struct {
	ProductID ProductID `json:"product_id"`
	Required  Quantity  `json:"required"`
	Available Quantity  `json:"available"`
}

// Missing returns how many units are lacking
func (s Shortage) Missing() Quantity {
	return s.Required - s.Available
}

// InsufficientStockError reports every material short for a consume request.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("product %d requires %d, available %d", s.ProductID, s.Required, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// NotFoundError wraps ErrNotFound with the missing entity and id.
func NotFoundError(entity string, id any) error {
	return fmt.Errorf("%s not found: %v: %w", entity, id, ErrNotFound)
}
