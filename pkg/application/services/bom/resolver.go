package bom

import (
	"context"
	"errors"
	"fmt"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

// Resolver expands a finished product quantity into raw material requirements
type Resolver struct {
	products repositories.ProductRepository
	bom      repositories.BOMRepository
}

// NewResolver creates a resolver over the product and BOM stores
func NewResolver(products repositories.ProductRepository, bom repositories.BOMRepository) *Resolver {
	return &Resolver{
		products: products,
		bom:      bom,
	}
}

// MaterialsFor returns material -> per-unit quantity * qty. A product with no
// BOM entries needs nothing; an unknown product is a validation error.
func (r *Resolver) MaterialsFor(ctx context.Context, productID entities.ProductID, qty entities.Quantity) (entities.Requirements, error) {
	if qty <= 0 {
		return nil, entities.NewValidationError("quantity", "quantity must be positive, got %d", qty)
	}

	if _, err := r.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, entities.NewValidationError("product_id", "unknown product %d", productID)
		}
		return nil, fmt.Errorf("read product %d: %w", productID, err)
	}

	entries, err := r.bom.GetByFinishedProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("read bom of product %d: %w", productID, err)
	}

	reqs := make(entities.Requirements, len(entries))
	for _, e := range entries {
		reqs.Add(e.MaterialID, e.Quantity*qty)
	}
	return reqs, nil
}
