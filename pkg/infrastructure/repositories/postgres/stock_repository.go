package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

var _ repositories.StockRepository = (*StockRepo)(nil)

// StockRepo stores on-hand quantities, one row per product
type StockRepo struct {
	q Querier
}

func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func (r *StockRepo) GetByProduct(ctx context.Context, id entities.ProductID) (*entities.StockLevel, error) {
	var s entities.StockLevel
	err := conn(ctx, r.q).QueryRow(ctx, `SELECT product_id, quantity FROM stock_levels WHERE product_id = $1`, id).
		Scan(&s.ProductID, &s.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.NotFoundError("stock level", id)
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

func (r *StockRepo) GetAll(ctx context.Context) ([]*entities.StockLevel, error) {
	rows, err := conn(ctx, r.q).Query(ctx, `SELECT product_id, quantity FROM stock_levels ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	out := make([]*entities.StockLevel, 0)
	for rows.Next() {
		var s entities.StockLevel
		if err := rows.Scan(&s.ProductID, &s.Quantity); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Save upserts the level of one product
func (r *StockRepo) Save(ctx context.Context, level *entities.StockLevel) error {
	if level.Quantity < 0 {
		return entities.NewValidationError("quantity", "stock cannot be negative, got %d", level.Quantity)
	}
	query := `
		INSERT INTO stock_levels (product_id, quantity)
		VALUES ($1, $2)
		ON CONFLICT (product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity`
	if _, err := conn(ctx, r.q).Exec(ctx, query, level.ProductID, level.Quantity); err != nil {
		if isForeignKeyViolation(err) {
			return entities.NotFoundError("product", level.ProductID)
		}
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

func (r *StockRepo) Delete(ctx context.Context, id entities.ProductID) error {
	tag, err := conn(ctx, r.q).Exec(ctx, `DELETE FROM stock_levels WHERE product_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.NotFoundError("stock level", id)
	}
	return nil
}
