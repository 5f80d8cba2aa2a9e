package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

var _ repositories.ProductRepository = (*ProductRepo)(nil)

// ProductRepo stores products in PostgreSQL. Pass a pool or a tx.
type ProductRepo struct {
	q Querier
}

func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, kind`

func scanProduct(row pgx.Row) (*entities.Product, error) {
	var (
		p    entities.Product
		kind string
	)
	if err := row.Scan(&p.ID, &p.Name, &kind); err != nil {
		return nil, err
	}
	k, err := entities.ParseProductKind(kind)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", p.ID, err)
	}
	p.Kind = k
	return &p, nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id entities.ProductID) (*entities.Product, error) {
	row := conn(ctx, r.q).QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.NotFoundError("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) GetAll(ctx context.Context) ([]*entities.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

func (r *ProductRepo) GetByKind(ctx context.Context, kind entities.ProductKind) ([]*entities.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE kind = $1 ORDER BY id`, kind.String())
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entities.Product, error) {
	rows, err := conn(ctx, r.q).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]*entities.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Add inserts a product. A zero id takes the next free one.
func (r *ProductRepo) Add(ctx context.Context, product *entities.Product) (*entities.Product, error) {
	query := `
		INSERT INTO products (id, name, kind)
		VALUES (COALESCE(NULLIF($1::bigint, 0), (SELECT COALESCE(MAX(id), 0) + 1 FROM products)), $2, $3)
		RETURNING ` + productColumns
	p, err := scanProduct(conn(ctx, r.q).QueryRow(ctx, query, product.ID, product.Name, product.Kind.String()))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entities.NewValidationError("id", "product %d already exists", product.ID)
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) Update(ctx context.Context, product *entities.Product) error {
	tag, err := conn(ctx, r.q).Exec(ctx, `UPDATE products SET name = $2, kind = $3 WHERE id = $1`,
		product.ID, product.Name, product.Kind.String())
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.NotFoundError("product", product.ID)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id entities.ProductID) error {
	tag, err := conn(ctx, r.q).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.NotFoundError("product", id)
	}
	return nil
}

var _ repositories.BOMRepository = (*BOMRepo)(nil)

// BOMRepo stores bill of materials entries. Listings keep insertion order.
type BOMRepo struct {
	q Querier
}

func NewBOMRepository(q Querier) *BOMRepo {
	return &BOMRepo{q: q}
}

const bomColumns = `finished_product_id, material_id, quantity`

// Add inserts an entry; a repeated pair adds to the stored quantity
func (r *BOMRepo) Add(ctx context.Context, entry *entities.BOMEntry) (*entities.BOMEntry, error) {
	query := `
		INSERT INTO bom_entries (finished_product_id, material_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (finished_product_id, material_id)
		DO UPDATE SET quantity = bom_entries.quantity + EXCLUDED.quantity
		RETURNING ` + bomColumns
	var e entities.BOMEntry
	err := conn(ctx, r.q).QueryRow(ctx, query, entry.FinishedProductID, entry.MaterialID, entry.Quantity).
		Scan(&e.FinishedProductID, &e.MaterialID, &e.Quantity)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, entities.NewValidationError("material_id", "bom entry %d -> %d references an unknown product",
				entry.FinishedProductID, entry.MaterialID)
		}
		return nil, fmt.Errorf("insert bom entry: %w", err)
	}
	return &e, nil
}

func (r *BOMRepo) GetByFinishedProduct(ctx context.Context, id entities.ProductID) ([]*entities.BOMEntry, error) {
	return r.list(ctx, `SELECT `+bomColumns+` FROM bom_entries WHERE finished_product_id = $1 ORDER BY seq`, id)
}

func (r *BOMRepo) GetAll(ctx context.Context) ([]*entities.BOMEntry, error) {
	return r.list(ctx, `SELECT `+bomColumns+` FROM bom_entries ORDER BY seq`)
}

func (r *BOMRepo) list(ctx context.Context, query string, args ...any) ([]*entities.BOMEntry, error) {
	rows, err := conn(ctx, r.q).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bom entries: %w", err)
	}
	defer rows.Close()

	out := make([]*entities.BOMEntry, 0)
	for rows.Next() {
		var e entities.BOMEntry
		if err := rows.Scan(&e.FinishedProductID, &e.MaterialID, &e.Quantity); err != nil {
			return nil, fmt.Errorf("scan bom entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *BOMRepo) Delete(ctx context.Context, key entities.BOMKey) error {
	tag, err := conn(ctx, r.q).Exec(ctx, `DELETE FROM bom_entries WHERE finished_product_id = $1 AND material_id = $2`,
		key.FinishedProductID, key.MaterialID)
	if err != nil {
		return fmt.Errorf("delete bom entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.NotFoundError("bom entry", key)
	}
	return nil
}

var _ repositories.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo stores suppliers with their unit cost as NUMERIC
type SupplierRepo struct {
	q Querier
}

func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, name, product_id, unit_cost, lead_time_days`

func scanSupplier(row pgx.Row) (*entities.Supplier, error) {
	var s entities.Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.ProductID, &s.UnitCost, &s.LeadTimeDays); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id entities.SupplierID) (*entities.Supplier, error) {
	s, err := scanSupplier(conn(ctx, r.q).QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.NotFoundError("supplier", id)
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return s, nil
}

func (r *SupplierRepo) GetAll(ctx context.Context) ([]*entities.Supplier, error) {
	return r.list(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY id`)
}

func (r *SupplierRepo) GetByProduct(ctx context.Context, id entities.ProductID) ([]*entities.Supplier, error) {
	return r.list(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE product_id = $1 ORDER BY id`, id)
}

func (r *SupplierRepo) list(ctx context.Context, query string, args ...any) ([]*entities.Supplier, error) {
	rows, err := conn(ctx, r.q).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	out := make([]*entities.Supplier, 0)
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Add inserts a supplier. A zero id takes the next free one.
func (r *SupplierRepo) Add(ctx context.Context, supplier *entities.Supplier) (*entities.Supplier, error) {
	query := `
		INSERT INTO suppliers (id, name, product_id, unit_cost, lead_time_days)
		VALUES (COALESCE(NULLIF($1::bigint, 0), (SELECT COALESCE(MAX(id), 0) + 1 FROM suppliers)), $2, $3, $4, $5)
		RETURNING ` + supplierColumns
	s, err := scanSupplier(conn(ctx, r.q).QueryRow(ctx, query,
		supplier.ID, supplier.Name, supplier.ProductID, supplier.UnitCost, supplier.LeadTimeDays))
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, entities.NewValidationError("id", "supplier %d already exists", supplier.ID)
		case isForeignKeyViolation(err):
			return nil, entities.NewValidationError("product_id", "supplier %d references unknown product %d", supplier.ID, supplier.ProductID)
		}
		return nil, fmt.Errorf("insert supplier: %w", err)
	}
	return s, nil
}

func (r *SupplierRepo) Update(ctx context.Context, supplier *entities.Supplier) error {
	tag, err := conn(ctx, r.q).Exec(ctx, `
		UPDATE suppliers SET name = $2, product_id = $3, unit_cost = $4, lead_time_days = $5
		WHERE id = $1`,
		supplier.ID, supplier.Name, supplier.ProductID, supplier.UnitCost, supplier.LeadTimeDays)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.NotFoundError("supplier", supplier.ID)
	}
	return nil
}

func (r *SupplierRepo) Delete(ctx context.Context, id entities.SupplierID) error {
	tag, err := conn(ctx, r.q).Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.NotFoundError("supplier", id)
	}
	return nil
}
