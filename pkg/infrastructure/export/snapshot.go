package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/domain/repositories"
	"github.com/vsinha/factorysim/pkg/infrastructure/events"
)

// Version of the snapshot document layout
const Version = 1

// Event is the stored form of an event. Details stay raw until the type is known.
type Event struct {
	ID        entities.EventID   `json:"id"`
	RunID     uuid.UUID          `json:"run_id"`
	Type      entities.EventType `json:"type"`
	Timestamp string             `json:"timestamp"`
	Details   json.RawMessage    `json:"details"`
}

// Snapshot is a complete, restorable copy of one simulation
type Snapshot struct {
	Version             int                           `json:"version"`
	RunID               uuid.UUID                     `json:"run_id"`
	CurrentDate         string                        `json:"current_date"`
	ExportedAt          time.Time                     `json:"exported_at"`
	Products            []entities.Product            `json:"products"`
	BOM                 []entities.BOMEntry           `json:"bom"`
	Suppliers           []entities.Supplier           `json:"suppliers"`
	Stock               []entities.StockLevel         `json:"stock"`
	ManufacturingOrders []entities.ManufacturingOrder `json:"manufacturing_orders"`
	PurchaseOrders      []entities.PurchaseOrder      `json:"purchase_orders"`
	Events              []Event                       `json:"events"`
}

// Day parses CurrentDate
func (s *Snapshot) Day() (time.Time, error) {
	return entities.ParseDate(s.CurrentDate)
}

// Export reads every store into a snapshot
func Export(ctx context.Context, stores repositories.Stores, runID uuid.UUID, today time.Time) (*Snapshot, error) {
	snap := &Snapshot{
		Version:     Version,
		RunID:       runID,
		CurrentDate: entities.FormatDate(today),
		ExportedAt:  time.Now().UTC(),
	}

	products, err := stores.Products.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export products: %w", err)
	}
	snap.Products = values(products)

	bom, err := stores.BOM.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export bom: %w", err)
	}
	snap.BOM = values(bom)

	suppliers, err := stores.Suppliers.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export suppliers: %w", err)
	}
	snap.Suppliers = values(suppliers)

	stock, err := stores.Stock.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export stock: %w", err)
	}
	snap.Stock = values(stock)

	mos, err := stores.ManufacturingOrders.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export manufacturing orders: %w", err)
	}
	snap.ManufacturingOrders = values(mos)

	pos, err := stores.PurchaseOrders.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export purchase orders: %w", err)
	}
	snap.PurchaseOrders = values(pos)

	evts, err := stores.Events.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export events: %w", err)
	}
	snap.Events = make([]Event, 0, len(evts))
	for _, e := range evts {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return nil, fmt.Errorf("encode event %d: %w", e.ID, err)
		}
		snap.Events = append(snap.Events, Event{
			ID:        e.ID,
			RunID:     e.RunID,
			Type:      e.Type,
			Timestamp: entities.FormatDate(e.Timestamp),
			Details:   raw,
		})
	}
	return snap, nil
}

// Import writes a snapshot into empty stores. Ids are kept as exported.
func Import(ctx context.Context, stores repositories.Stores, snap *Snapshot) error {
	if snap.Version != Version {
		return entities.NewValidationError("version", "unsupported snapshot version %d", snap.Version)
	}
	if _, err := snap.Day(); err != nil {
		return err
	}

	for i := range snap.Products {
		if _, err := stores.Products.Add(ctx, &snap.Products[i]); err != nil {
			return fmt.Errorf("import product %d: %w", snap.Products[i].ID, err)
		}
	}
	for i := range snap.BOM {
		if _, err := stores.BOM.Add(ctx, &snap.BOM[i]); err != nil {
			return fmt.Errorf("import bom entry: %w", err)
		}
	}
	for i := range snap.Suppliers {
		if _, err := stores.Suppliers.Add(ctx, &snap.Suppliers[i]); err != nil {
			return fmt.Errorf("import supplier %d: %w", snap.Suppliers[i].ID, err)
		}
	}
	for i := range snap.Stock {
		if err := stores.Stock.Save(ctx, &snap.Stock[i]); err != nil {
			return fmt.Errorf("import stock of product %d: %w", snap.Stock[i].ProductID, err)
		}
	}
	for i := range snap.ManufacturingOrders {
		if _, err := stores.ManufacturingOrders.Add(ctx, &snap.ManufacturingOrders[i]); err != nil {
			return fmt.Errorf("import manufacturing order %d: %w", snap.ManufacturingOrders[i].ID, err)
		}
	}
	for i := range snap.PurchaseOrders {
		if _, err := stores.PurchaseOrders.Add(ctx, &snap.PurchaseOrders[i]); err != nil {
			return fmt.Errorf("import purchase order %d: %w", snap.PurchaseOrders[i].ID, err)
		}
	}
	for _, e := range snap.Events {
		details, err := events.DecodeDetails(e.Type, e.Details)
		if err != nil {
			return err
		}
		ts, err := entities.ParseDate(e.Timestamp)
		if err != nil {
			return err
		}
		if _, err := stores.Events.Add(ctx, entities.Event{ID: e.ID, RunID: e.RunID, Type: e.Type, Timestamp: ts, Details: details}); err != nil {
			return fmt.Errorf("import event %d: %w", e.ID, err)
		}
	}
	return nil
}

// Write encodes the snapshot as indented JSON
func Write(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// Read decodes a snapshot document
func Read(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

func values[T any](in []*T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, *v)
	}
	return out
}
