package repositories

import (
	"context"

	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// ProductRepository provides access to product master data
type ProductRepository interface {
	GetByID(ctx context.Context, id entities.ProductID) (*entities.Product, error)
	GetAll(ctx context.Context) ([]*entities.Product, error)
	GetByKind(ctx context.Context, kind entities.ProductKind) ([]*entities.Product, error)
	// Add stores the product, assigning the next id when ID is zero.
	Add(ctx context.Context, product *entities.Product) (*entities.Product, error)
	Update(ctx context.Context, product *entities.Product) error
	Delete(ctx context.Context, id entities.ProductID) error
}

// BOMRepository provides access to bill of materials entries
type BOMRepository interface {
	GetByFinishedProduct(ctx context.Context, id entities.ProductID) ([]*entities.BOMEntry, error)
	GetAll(ctx context.Context) ([]*entities.BOMEntry, error)
	// Add stores the entry. An entry for an existing (finished, material)
	// pair adds its quantity to the stored one.
	Add(ctx context.Context, entry *entities.BOMEntry) (*entities.BOMEntry, error)
	Delete(ctx context.Context, key entities.BOMKey) error
}

// SupplierRepository provides access to supplier data
type SupplierRepository interface {
	GetByID(ctx context.Context, id entities.SupplierID) (*entities.Supplier, error)
	GetAll(ctx context.Context) ([]*entities.Supplier, error)
	GetByProduct(ctx context.Context, id entities.ProductID) ([]*entities.Supplier, error)
	Add(ctx context.Context, supplier *entities.Supplier) (*entities.Supplier, error)
	Update(ctx context.Context, supplier *entities.Supplier) error
	Delete(ctx context.Context, id entities.SupplierID) error
}
