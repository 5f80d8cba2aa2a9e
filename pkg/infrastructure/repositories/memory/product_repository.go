package memory

import (
	"context"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

// ProductRepository provides in-memory product storage
type ProductRepository struct {
	products *table[entities.ProductID, entities.Product]
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(expectedProducts int) *ProductRepository {
	return &ProductRepository{
		products: newTable[entities.ProductID, entities.Product](expectedProducts),
	}
}

// Verify interface compliance
var _ repositories.ProductRepository = (*ProductRepository)(nil)

// Checkpoint copies the stored rows for a later restore
func (r *ProductRepository) Checkpoint() func() {
	return r.products.checkpoint()
}

// LoadProducts loads products into the repository
func (r *ProductRepository) LoadProducts(ctx context.Context, products []*entities.Product) error {
	for _, p := range products {
		if _, err := r.Add(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns the product with the given id
func (r *ProductRepository) GetByID(_ context.Context, id entities.ProductID) (*entities.Product, error) {
	p, ok := r.products.get(id)
	if !ok {
		return nil, entities.NotFoundError("product", id)
	}
	return &p, nil
}

// GetAll returns all products ordered by id
func (r *ProductRepository) GetAll(_ context.Context) ([]*entities.Product, error) {
	return pointers(r.products.sorted(nil)), nil
}

// GetByKind returns the products of one kind ordered by id
func (r *ProductRepository) GetByKind(_ context.Context, kind entities.ProductKind) ([]*entities.Product, error) {
	return pointers(r.products.sorted(func(p entities.Product) bool { return p.Kind == kind })), nil
}

// Add stores a product, assigning an id when none is set
func (r *ProductRepository) Add(_ context.Context, product *entities.Product) (*entities.Product, error) {
	p := *product
	if p.ID == 0 {
		p.ID = r.products.reserve()
	}
	if !r.products.insert(p.ID, p) {
		return nil, entities.NewValidationError("id", "product %d already exists", p.ID)
	}
	return &p, nil
}

// Update replaces a stored product
func (r *ProductRepository) Update(_ context.Context, product *entities.Product) error {
	if !r.products.replace(product.ID, *product) {
		return entities.NotFoundError("product", product.ID)
	}
	return nil
}

// Delete removes a product
func (r *ProductRepository) Delete(_ context.Context, id entities.ProductID) error {
	if !r.products.remove(id) {
		return entities.NotFoundError("product", id)
	}
	return nil
}

func pointers[V any](rows []V) []*V {
	out := make([]*V, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}
