package entities

import (
	"fmt"
	"strings"
)

// ProductID represents a unique product identifier
type ProductID int64

// Quantity represents an integer quantity value for discrete manufacturing units
type Quantity int64

// ProductKind distinguishes purchased materials from manufactured goods
type ProductKind int

const (
	RawMaterial ProductKind = iota
	FinishedGood
)

// String method for ProductKind enum
func (k ProductKind) String() string {
	switch k {
	case RawMaterial:
		return "raw"
	case FinishedGood:
		return "finished"
	default:
		return "unknown"
	}
}

// ParseProductKind converts a textual kind into a ProductKind
func ParseProductKind(s string) (ProductKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw", "raw_material", "material":
		return RawMaterial, nil
	case "finished", "finished_product", "product":
		return FinishedGood, nil
	default:
		return 0, NewValidationError("kind", "unknown product kind %q", s)
	}
}

func (k ProductKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ProductKind) UnmarshalText(b []byte) error {
	parsed, err := ParseProductKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Product is either a raw material bought from suppliers or a finished good
// assembled from raw materials.
type Product struct {
	ID   ProductID   `json:"id"`
	Name string      `json:"name"`
	Kind ProductKind `json:"kind"`
}

// NewProduct creates a validated Product. A zero id is assigned by the store.
func NewProduct(id ProductID, name string, kind ProductKind) (*Product, error) {
	if id < 0 {
		return nil, NewValidationError("id", "product id cannot be negative, got %d", id)
	}
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("name", "product name cannot be empty")
	}
	if kind != RawMaterial && kind != FinishedGood {
		return nil, NewValidationError("kind", "unknown product kind %d", kind)
	}

	return &Product{
		ID:   id,
		Name: name,
		Kind: kind,
	}, nil
}

// IsFinished reports whether the product is manufactured
func (p *Product) IsFinished() bool {
	return p.Kind == FinishedGood
}

func (p *Product) String() string {
	return fmt.Sprintf("%s (#%d, %s)", p.Name, p.ID, p.Kind)
}
