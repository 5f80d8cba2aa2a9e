package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vsinha/factorysim/pkg/domain/entities"
)

var day1 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestProductRepository_AddAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(4)

	first, err := repo.Add(ctx, &entities.Product{Name: "printer", Kind: entities.FinishedGood})
	if err != nil {
		t.Fatalf("Failed to add product: %v", err)
	}
	if first.ID != 1 {
		t.Errorf("Expected assigned id 1, got %d", first.ID)
	}

	if _, err := repo.Add(ctx, &entities.Product{ID: 5, Name: "nozzle", Kind: entities.RawMaterial}); err != nil {
		t.Fatalf("Failed to add product with explicit id: %v", err)
	}
	next, err := repo.Add(ctx, &entities.Product{Name: "belt", Kind: entities.RawMaterial})
	if err != nil {
		t.Fatalf("Failed to add product: %v", err)
	}
	if next.ID != 6 {
		t.Errorf("Expected id after explicit 5 to be 6, got %d", next.ID)
	}

	got, err := repo.GetByID(ctx, 5)
	if err != nil {
		t.Fatalf("Failed to get product: %v", err)
	}
	if got.Name != "nozzle" {
		t.Errorf("Expected nozzle, got %s", got.Name)
	}

	// returned rows are copies
	got.Name = "changed"
	again, _ := repo.GetByID(ctx, 5)
	if again.Name != "nozzle" {
		t.Errorf("Stored product was modified through a returned pointer")
	}
}

func TestProductRepository_Errors(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(4)
	if err := repo.LoadProducts(ctx, []*entities.Product{{ID: 1, Name: "printer", Kind: entities.FinishedGood}}); err != nil {
		t.Fatalf("Failed to load products: %v", err)
	}

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name:    "duplicate id",
			run:     func() error { _, err := repo.Add(ctx, &entities.Product{ID: 1, Name: "again"}); return err },
			wantErr: entities.ErrValidation,
		},
		{
			name:    "get unknown",
			run:     func() error { _, err := repo.GetByID(ctx, 99); return err },
			wantErr: entities.ErrNotFound,
		},
		{
			name:    "update unknown",
			run:     func() error { return repo.Update(ctx, &entities.Product{ID: 99}) },
			wantErr: entities.ErrNotFound,
		},
		{
			name:    "delete unknown",
			run:     func() error { return repo.Delete(ctx, 99) },
			wantErr: entities.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProductRepository_GetByKindOrdersByID(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(4)
	for _, p := range []*entities.Product{
		{ID: 4, Name: "frame", Kind: entities.RawMaterial},
		{ID: 2, Name: "pro", Kind: entities.FinishedGood},
		{ID: 1, Name: "basic", Kind: entities.FinishedGood},
	} {
		if _, err := repo.Add(ctx, p); err != nil {
			t.Fatalf("Failed to add %s: %v", p.Name, err)
		}
	}

	finished, err := repo.GetByKind(ctx, entities.FinishedGood)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(finished) != 2 || finished[0].ID != 1 || finished[1].ID != 2 {
		t.Errorf("Expected finished products 1 and 2 in order, got %+v", finished)
	}

	if err := repo.Delete(ctx, 2); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	all, _ := repo.GetAll(ctx)
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 4 {
		t.Errorf("Expected products 1 and 4 after delete, got %+v", all)
	}
}

func TestBOMRepository_SumsRepeatedPairs(t *testing.T) {
	ctx := context.Background()
	repo := NewBOMRepository(4)

	err := repo.LoadEntries(ctx, []*entities.BOMEntry{
		{FinishedProductID: 1, MaterialID: 3, Quantity: 2},
		{FinishedProductID: 1, MaterialID: 4, Quantity: 1},
		{FinishedProductID: 2, MaterialID: 3, Quantity: 5},
		{FinishedProductID: 1, MaterialID: 3, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("Failed to load entries: %v", err)
	}

	entries, err := repo.GetByFinishedProduct(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].MaterialID != 3 || entries[0].Quantity != 3 {
		t.Errorf("Expected material 3 summed to 3, got %+v", entries[0])
	}

	none, err := repo.GetByFinishedProduct(ctx, 9)
	if err != nil || len(none) != 0 {
		t.Errorf("Expected no entries for unknown product, got %v, %v", none, err)
	}
}

func TestBOMRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewBOMRepository(4)
	for _, e := range []*entities.BOMEntry{
		{FinishedProductID: 1, MaterialID: 3, Quantity: 2},
		{FinishedProductID: 1, MaterialID: 4, Quantity: 1},
		{FinishedProductID: 2, MaterialID: 3, Quantity: 5},
	} {
		if _, err := repo.Add(ctx, e); err != nil {
			t.Fatalf("Failed to add entry: %v", err)
		}
	}

	if err := repo.Delete(ctx, entities.BOMKey{FinishedProductID: 1, MaterialID: 3}); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if err := repo.Delete(ctx, entities.BOMKey{FinishedProductID: 1, MaterialID: 3}); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected not found on second delete, got %v", err)
	}

	// indexes of the remaining entries survive the delete
	rest, _ := repo.GetByFinishedProduct(ctx, 1)
	if len(rest) != 1 || rest[0].MaterialID != 4 {
		t.Errorf("Expected only material 4 left for product 1, got %+v", rest)
	}
	other, _ := repo.GetByFinishedProduct(ctx, 2)
	if len(other) != 1 || other[0].Quantity != 5 {
		t.Errorf("Expected product 2 unchanged, got %+v", other)
	}
}

func TestStockRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepository()

	tests := []struct {
		name    string
		level   entities.StockLevel
		wantErr bool
	}{
		{"positive", entities.StockLevel{ProductID: 3, Quantity: 10}, false},
		{"zero", entities.StockLevel{ProductID: 4, Quantity: 0}, false},
		{"overwrite", entities.StockLevel{ProductID: 3, Quantity: 7}, false},
		{"negative", entities.StockLevel{ProductID: 5, Quantity: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Save(ctx, &tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Save() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	level, err := repo.GetByProduct(ctx, 3)
	if err != nil {
		t.Fatalf("Failed to get level: %v", err)
	}
	if level.Quantity != 7 {
		t.Errorf("Expected 7 after overwrite, got %d", level.Quantity)
	}
	if _, err := repo.GetByProduct(ctx, 5); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected rejected level to be absent, got %v", err)
	}
	all, _ := repo.GetAll(ctx)
	if len(all) != 2 {
		t.Errorf("Expected 2 levels, got %d", len(all))
	}
}

func TestManufacturingOrderRepository_Filters(t *testing.T) {
	ctx := context.Background()
	repo := NewManufacturingOrderRepository()

	for i, status := range []entities.ManufacturingStatus{entities.Pending, entities.InProduction, entities.Pending} {
		_, err := repo.Add(ctx, &entities.ManufacturingOrder{
			CreatedAt: day1.AddDate(0, 0, i),
			ProductID: 1,
			Quantity:  2,
			Status:    status,
		})
		if err != nil {
			t.Fatalf("Failed to add order: %v", err)
		}
	}

	tests := []struct {
		name string
		list func() ([]*entities.ManufacturingOrder, error)
		want []entities.OrderID
	}{
		{"all", func() ([]*entities.ManufacturingOrder, error) { return repo.GetAll(ctx) }, []entities.OrderID{1, 2, 3}},
		{"pending", func() ([]*entities.ManufacturingOrder, error) { return repo.GetByStatus(ctx, entities.Pending) }, []entities.OrderID{1, 3}},
		{"first two days", func() ([]*entities.ManufacturingOrder, error) {
			return repo.GetByDateRange(ctx, entities.DateRange{Start: day1, End: day1.AddDate(0, 0, 1)})
		}, []entities.OrderID{1, 2}},
		{"open start", func() ([]*entities.ManufacturingOrder, error) {
			return repo.GetByDateRange(ctx, entities.DateRange{End: day1})
		}, []entities.OrderID{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := tt.list()
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(orders) != len(tt.want) {
				t.Fatalf("Expected %d orders, got %d", len(tt.want), len(orders))
			}
			for i, o := range orders {
				if o.ID != tt.want[i] {
					t.Errorf("order %d: expected id %d, got %d", i, tt.want[i], o.ID)
				}
			}
		})
	}
}

func TestManufacturingOrderRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewManufacturingOrderRepository()

	order, err := repo.Add(ctx, &entities.ManufacturingOrder{CreatedAt: day1, ProductID: 1, Quantity: 1, Status: entities.Pending})
	if err != nil {
		t.Fatalf("Failed to add order: %v", err)
	}
	order.Status = entities.Cancelled
	if err := repo.Update(ctx, order); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	got, _ := repo.GetByID(ctx, order.ID)
	if got.Status != entities.Cancelled {
		t.Errorf("Expected cancelled, got %s", got.Status)
	}

	if err := repo.Update(ctx, &entities.ManufacturingOrder{ID: 42}); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if err := repo.Delete(ctx, order.ID); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	// ids are not reused after a delete
	next, _ := repo.Add(ctx, &entities.ManufacturingOrder{CreatedAt: day1, ProductID: 1, Quantity: 1})
	if next.ID != 2 {
		t.Errorf("Expected id 2 after delete, got %d", next.ID)
	}
}

func TestPurchaseOrderRepository_Filters(t *testing.T) {
	ctx := context.Background()
	repo := NewPurchaseOrderRepository()

	for i, p := range []entities.ProductID{3, 4, 3} {
		_, err := repo.Add(ctx, &entities.PurchaseOrder{
			SupplierID:            1,
			ProductID:             p,
			Quantity:              10,
			IssueDate:             day1.AddDate(0, 0, i),
			EstimatedDeliveryDate: day1.AddDate(0, 0, i+3),
			Status:                entities.Ordered,
		})
		if err != nil {
			t.Fatalf("Failed to add purchase order: %v", err)
		}
	}

	byProduct, _ := repo.GetByProduct(ctx, 3)
	if len(byProduct) != 2 || byProduct[0].ID != 1 || byProduct[1].ID != 3 {
		t.Errorf("Expected purchases 1 and 3 for product 3, got %+v", byProduct)
	}

	later, _ := repo.GetByDateRange(ctx, entities.DateRange{Start: day1.AddDate(0, 0, 1)})
	if len(later) != 2 {
		t.Errorf("Expected 2 purchases issued from day 2, got %d", len(later))
	}

	received, _ := repo.GetByStatus(ctx, entities.Received)
	if len(received) != 0 {
		t.Errorf("Expected no received purchases, got %d", len(received))
	}

	if _, err := repo.GetByID(ctx, 9); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestSupplierRepository_GetByProduct(t *testing.T) {
	ctx := context.Background()
	repo := NewSupplierRepository(4)

	for _, s := range []*entities.Supplier{
		{ID: 2, Name: "B", ProductID: 3, LeadTimeDays: 2},
		{ID: 1, Name: "A", ProductID: 3, LeadTimeDays: 5},
		{ID: 3, Name: "C", ProductID: 4, LeadTimeDays: 1},
	} {
		if _, err := repo.Add(ctx, s); err != nil {
			t.Fatalf("Failed to add supplier: %v", err)
		}
	}

	suppliers, err := repo.GetByProduct(ctx, 3)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(suppliers) != 2 || suppliers[0].Name != "A" || suppliers[1].Name != "B" {
		t.Errorf("Expected suppliers A and B, got %+v", suppliers)
	}
	if _, err := repo.Add(ctx, &entities.Supplier{ID: 1, Name: "dup"}); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected duplicate to be rejected, got %v", err)
	}
}

func TestTxRunner_RestoresEveryStoreOnError(t *testing.T) {
	ctx := context.Background()
	stores := NewStores()
	if _, err := stores.Products.Add(ctx, &entities.Product{ID: 2, Name: "nozzle", Kind: entities.RawMaterial}); err != nil {
		t.Fatalf("Failed to add product: %v", err)
	}
	if err := stores.Stock.Save(ctx, &entities.StockLevel{ProductID: 2, Quantity: 5}); err != nil {
		t.Fatalf("Failed to save stock: %v", err)
	}

	boom := errors.New("boom")
	err := stores.Tx.Run(ctx, func(ctx context.Context) error {
		if err := stores.Stock.Save(ctx, &entities.StockLevel{ProductID: 2, Quantity: 15}); err != nil {
			return err
		}
		if _, err := stores.Products.Add(ctx, &entities.Product{Name: "frame", Kind: entities.RawMaterial}); err != nil {
			return err
		}
		if _, err := stores.BOM.Add(ctx, &entities.BOMEntry{FinishedProductID: 1, MaterialID: 2, Quantity: 3}); err != nil {
			return err
		}
		if _, err := stores.Events.Add(ctx, entities.Event{Type: entities.EventStockChanged, Timestamp: day1}); err != nil {
			return err
		}
		// nested runs join the outer unit
		return stores.Tx.Run(ctx, func(context.Context) error { return boom })
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	level, err := stores.Stock.GetByProduct(ctx, 2)
	if err != nil || level.Quantity != 5 {
		t.Errorf("Expected stock 5 after rollback, got %+v (%v)", level, err)
	}
	products, _ := stores.Products.GetAll(ctx)
	if len(products) != 1 {
		t.Errorf("Expected 1 product after rollback, got %d", len(products))
	}
	entries, _ := stores.BOM.GetByFinishedProduct(ctx, 1)
	if len(entries) != 0 {
		t.Errorf("Expected no BOM entries after rollback, got %d", len(entries))
	}
	if last, _ := stores.Events.LastID(ctx); last != 0 {
		t.Errorf("Expected empty event log, got last id %d", last)
	}
	byType, _ := stores.Events.GetByType(ctx, entities.EventStockChanged)
	if len(byType) != 0 {
		t.Errorf("Expected type index to be rolled back, got %d", len(byType))
	}

	// reserved ids are handed out again after a rollback
	p, err := stores.Products.Add(ctx, &entities.Product{Name: "frame", Kind: entities.RawMaterial})
	if err != nil {
		t.Fatalf("Failed to add product: %v", err)
	}
	if p.ID != 3 {
		t.Errorf("Expected id 3, got %d", p.ID)
	}
}

func TestTxRunner_KeepsWritesOnSuccess(t *testing.T) {
	ctx := context.Background()
	stores := NewStores()

	err := stores.Tx.Run(ctx, func(ctx context.Context) error {
		return stores.Stock.Save(ctx, &entities.StockLevel{ProductID: 2, Quantity: 15})
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	level, err := stores.Stock.GetByProduct(ctx, 2)
	if err != nil || level.Quantity != 15 {
		t.Errorf("Expected stock 15, got %+v (%v)", level, err)
	}
}
