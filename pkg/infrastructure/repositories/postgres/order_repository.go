package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
)

var _ repositories.ManufacturingOrderRepository = (*ManufacturingOrderRepo)(nil)

// ManufacturingOrderRepo stores manufacturing orders; status is kept as text
type ManufacturingOrderRepo struct {
	q Querier
}

func NewManufacturingOrderRepository(q Querier) *ManufacturingOrderRepo {
	return &ManufacturingOrderRepo{q: q}
}

const manufacturingColumns = `id, created_at, product_id, quantity, status, released_at, completed_at, cancelled_at`

func scanManufacturingOrder(row pgx.Row) (*entities.ManufacturingOrder, error) {
	var (
		o      entities.ManufacturingOrder
		status string
	)
	err := row.Scan(&o.ID, &o.CreatedAt, &o.ProductID, &o.Quantity, &status,
		&o.ReleasedAt, &o.CompletedAt, &o.CancelledAt)
	if err != nil {
		return nil, err
	}
	if o.Status, err = entities.ParseManufacturingStatus(status); err != nil {
		return nil, fmt.Errorf("manufacturing order %d: %w", o.ID, err)
	}
	return &o, nil
}

func (r *ManufacturingOrderRepo) GetByID(ctx context.Context, id entities.OrderID) (*entities.ManufacturingOrder, error) {
	o, err := scanManufacturingOrder(conn(ctx, r.q).QueryRow(ctx,
		`SELECT `+manufacturingColumns+` FROM manufacturing_orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.NotFoundError("manufacturing order", id)
		}
		return nil, fmt.Errorf("get manufacturing order: %w", err)
	}
	return o, nil
}

func (r *ManufacturingOrderRepo) GetAll(ctx context.Context) ([]*entities.ManufacturingOrder, error) {
	return r.list(ctx, `SELECT `+manufacturingColumns+` FROM manufacturing_orders ORDER BY id`)
}

func (r *ManufacturingOrderRepo) GetByStatus(ctx context.Context, status entities.ManufacturingStatus) ([]*entities.ManufacturingOrder, error) {
	return r.list(ctx, `SELECT `+manufacturingColumns+` FROM manufacturing_orders WHERE status = $1 ORDER BY id`, status.String())
}

// GetByDateRange filters on the creation date
func (r *ManufacturingOrderRepo) GetByDateRange(ctx context.Context, dr entities.DateRange) ([]*entities.ManufacturingOrder, error) {
	lo, hi := bounds(dr)
	return r.list(ctx, `
		SELECT `+manufacturingColumns+` FROM manufacturing_orders
		WHERE ($1::date IS NULL OR created_at >= $1) AND ($2::date IS NULL OR created_at <= $2)
		ORDER BY id`, lo, hi)
}

func (r *ManufacturingOrderRepo) list(ctx context.Context, query string, args ...any) ([]*entities.ManufacturingOrder, error) {
	rows, err := conn(ctx, r.q).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list manufacturing orders: %w", err)
	}
	defer rows.Close()

	out := make([]*entities.ManufacturingOrder, 0)
	for rows.Next() {
		o, err := scanManufacturingOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan manufacturing order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Add inserts an order. A zero id takes the next free one.
func (r *ManufacturingOrderRepo) Add(ctx context.Context, order *entities.ManufacturingOrder) (*entities.ManufacturingOrder, error) {
	query := `
		INSERT INTO manufacturing_orders (` + manufacturingColumns + `)
		VALUES (COALESCE(NULLIF($1::bigint, 0), (SELECT COALESCE(MAX(id), 0) + 1 FROM manufacturing_orders)),
			$2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + manufacturingColumns
	o, err := scanManufacturingOrder(conn(ctx, r.q).QueryRow(ctx, query,
		order.ID, order.CreatedAt, order.ProductID, order.Quantity, order.Status.String(),
		order.ReleasedAt, order.CompletedAt, order.CancelledAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entities.NewValidationError("id", "manufacturing order %d already exists", order.ID)
		}
		return nil, fmt.Errorf("insert manufacturing order: %w", err)
	}
	return o, nil
}

func (r *ManufacturingOrderRepo) Update(ctx context.Context, order *entities.ManufacturingOrder) error {
	tag, err := conn(ctx, r.q).Exec(ctx, `
		UPDATE manufacturing_orders
		SET created_at = $2, product_id = $3, quantity = $4, status = $5,
			released_at = $6, completed_at = $7, cancelled_at = $8
		WHERE id = $1`,
		order.ID, order.CreatedAt, order.ProductID, order.Quantity, order.Status.String(),
		order.ReleasedAt, order.CompletedAt, order.CancelledAt)
	if err != nil {
		return fmt.Errorf("update manufacturing order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.NotFoundError("manufacturing order", order.ID)
	}
	return nil
}

func (r *ManufacturingOrderRepo) Delete(ctx context.Context, id entities.OrderID) error {
	tag, err := conn(ctx, r.q).Exec(ctx, `DELETE FROM manufacturing_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete manufacturing order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.NotFoundError("manufacturing order", id)
	}
	return nil
}

var _ repositories.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo stores purchase orders
type PurchaseOrderRepo struct {
	q Querier
}

func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const purchaseColumns = `id, supplier_id, product_id, quantity, unit_cost, issue_date,
	estimated_delivery_date, status, received_at, cancelled_at`

func scanPurchaseOrder(row pgx.Row) (*entities.PurchaseOrder, error) {
	var (
		o      entities.PurchaseOrder
		status string
	)
	err := row.Scan(&o.ID, &o.SupplierID, &o.ProductID, &o.Quantity, &o.UnitCost, &o.IssueDate,
		&o.EstimatedDeliveryDate, &status, &o.ReceivedAt, &o.CancelledAt)
	if err != nil {
		return nil, err
	}
	if o.Status, err = entities.ParsePurchaseStatus(status); err != nil {
		return nil, fmt.Errorf("purchase order %d: %w", o.ID, err)
	}
	return &o, nil
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id entities.PurchaseOrderID) (*entities.PurchaseOrder, error) {
	o, err := scanPurchaseOrder(conn(ctx, r.q).QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchase_orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.NotFoundError("purchase order", id)
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return o, nil
}

func (r *PurchaseOrderRepo) GetAll(ctx context.Context) ([]*entities.PurchaseOrder, error) {
	return r.list(ctx, `SELECT `+purchaseColumns+` FROM purchase_orders ORDER BY id`)
}

func (r *PurchaseOrderRepo) GetByStatus(ctx context.Context, status entities.PurchaseStatus) ([]*entities.PurchaseOrder, error) {
	return r.list(ctx, `SELECT `+purchaseColumns+` FROM purchase_orders WHERE status = $1 ORDER BY id`, status.String())
}

func (r *PurchaseOrderRepo) GetByProduct(ctx context.Context, id entities.ProductID) ([]*entities.PurchaseOrder, error) {
	return r.list(ctx, `SELECT `+purchaseColumns+` FROM purchase_orders WHERE product_id = $1 ORDER BY id`, id)
}

func (r *PurchaseOrderRepo) GetByDateRange(ctx context.Context, dr entities.DateRange) ([]*entities.PurchaseOrder, error) {
	lo, hi := bounds(dr)
	return r.list(ctx, `
		SELECT `+purchaseColumns+` FROM purchase_orders
		WHERE ($1::date IS NULL OR issue_date >= $1) AND ($2::date IS NULL OR issue_date <= $2)
		ORDER BY id`, lo, hi)
}

func (r *PurchaseOrderRepo) list(ctx context.Context, query string, args ...any) ([]*entities.PurchaseOrder, error) {
	rows, err := conn(ctx, r.q).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	out := make([]*entities.PurchaseOrder, 0)
	for rows.Next() {
		o, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Add inserts a purchase order. A zero id takes the next free one.
func (r *PurchaseOrderRepo) Add(ctx context.Context, order *entities.PurchaseOrder) (*entities.PurchaseOrder, error) {
	query := `
		INSERT INTO purchase_orders (` + purchaseColumns + `)
		VALUES (COALESCE(NULLIF($1::bigint, 0), (SELECT COALESCE(MAX(id), 0) + 1 FROM purchase_orders)),
			$2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + purchaseColumns
	o, err := scanPurchaseOrder(conn(ctx, r.q).QueryRow(ctx, query,
		order.ID, order.SupplierID, order.ProductID, order.Quantity, order.UnitCost, order.IssueDate,
		order.EstimatedDeliveryDate, order.Status.String(), order.ReceivedAt, order.CancelledAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entities.NewValidationError("id", "purchase order %d already exists", order.ID)
		}
		return nil, fmt.Errorf("insert purchase order: %w", err)
	}
	return o, nil
}

func (r *PurchaseOrderRepo) Update(ctx context.Context, order *entities.PurchaseOrder) error {
	tag, err := conn(ctx, r.q).Exec(ctx, `
		UPDATE purchase_orders
		SET supplier_id = $2, product_id = $3, quantity = $4, unit_cost = $5, issue_date = $6,
			estimated_delivery_date = $7, status = $8, received_at = $9, cancelled_at = $10
		WHERE id = $1`,
		order.ID, order.SupplierID, order.ProductID, order.Quantity, order.UnitCost, order.IssueDate,
		order.EstimatedDeliveryDate, order.Status.String(), order.ReceivedAt, order.CancelledAt)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.NotFoundError("purchase order", order.ID)
	}
	return nil
}

func (r *PurchaseOrderRepo) Delete(ctx context.Context, id entities.PurchaseOrderID) error {
	tag, err := conn(ctx, r.q).Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.NotFoundError("purchase order", id)
	}
	return nil
}

// bounds turns an open-ended range into nullable date parameters
func bounds(r entities.DateRange) (lo, hi *time.Time) {
	if !r.Start.IsZero() {
		d := entities.Day(r.Start)
		lo = &d
	}
	if !r.End.IsZero() {
		d := entities.Day(r.End)
		hi = &d
	}
	return lo, hi
}
