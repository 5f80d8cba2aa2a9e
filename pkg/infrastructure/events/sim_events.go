package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/factorysim/pkg/domain/entities"
)

type MaterialUsage struct {
	ProductID entities.ProductID `json:"product_id"`
	Quantity  entities.Quantity  `json:"quantity"`
}

type OrderCreated struct {
	OrderID   entities.OrderID   `json:"order_id"`
	ProductID entities.ProductID `json:"product_id"`
	Quantity  entities.Quantity  `json:"quantity"`
}

type OrderReleased struct {
	OrderID           entities.OrderID   `json:"order_id"`
	ProductID         entities.ProductID `json:"product_id"`
	Quantity          entities.Quantity  `json:"quantity"`
	MaterialsConsumed []MaterialUsage    `json:"materials_consumed"`
}

type OrderCompleted struct {
	OrderID   entities.OrderID   `json:"order_id"`
	ProductID entities.ProductID `json:"product_id"`
	Quantity  entities.Quantity  `json:"quantity"`
}

type OrderCancelled struct {
	OrderID   entities.OrderID   `json:"order_id"`
	ProductID entities.ProductID `json:"product_id"`
	Quantity  entities.Quantity  `json:"quantity"`
}

type PurchaseCreated struct {
	PurchaseID            entities.PurchaseOrderID `json:"purchase_id"`
	SupplierID            entities.SupplierID      `json:"supplier_id"`
	ProductID             entities.ProductID       `json:"product_id"`
	Quantity              entities.Quantity        `json:"quantity"`
	UnitCost              decimal.Decimal          `json:"unit_cost"`
	TotalCost             decimal.Decimal          `json:"total_cost"`
	EstimatedDeliveryDate string                   `json:"estimated_delivery_date"`
}

type PurchaseReceived struct {
	PurchaseID entities.PurchaseOrderID `json:"purchase_id"`
	SupplierID entities.SupplierID      `json:"supplier_id"`
	ProductID  entities.ProductID       `json:"product_id"`
	Quantity   entities.Quantity        `json:"quantity"`
}

type PurchaseCancelled struct {
	PurchaseID entities.PurchaseOrderID `json:"purchase_id"`
	SupplierID entities.SupplierID      `json:"supplier_id"`
	ProductID  entities.ProductID       `json:"product_id"`
	Quantity   entities.Quantity        `json:"quantity"`
}

type StockChanged struct {
	ProductID        entities.ProductID `json:"product_id"`
	PreviousQuantity entities.Quantity  `json:"previous_quantity"`
	NewQuantity      entities.Quantity  `json:"new_quantity"`
	Change           entities.Quantity  `json:"change"`
	Reason           string             `json:"reason"`
}

type DayAdvanced struct {
	PreviousDate string `json:"previous_date"`
	NewDate      string `json:"new_date"`
}

func newEvent(t entities.EventType, details any) entities.Event {
	return entities.Event{Type: t, Details: details}
}

func NewOrderCreatedEvent(o *entities.ManufacturingOrder) entities.Event {
	return newEvent(entities.EventOrderCreated, OrderCreated{OrderID: o.ID, ProductID: o.ProductID, Quantity: o.Quantity})
}

// NewOrderReleasedEvent lists consumed materials in ascending product id order
func NewOrderReleasedEvent(o *entities.ManufacturingOrder, consumed []MaterialUsage) entities.Event {
	return newEvent(entities.EventOrderReleased, OrderReleased{
		OrderID:           o.ID,
		ProductID:         o.ProductID,
		Quantity:          o.Quantity,
		MaterialsConsumed: consumed,
	})
}

func NewOrderCompletedEvent(o *entities.ManufacturingOrder) entities.Event {
	return newEvent(entities.EventOrderCompleted, OrderCompleted{OrderID: o.ID, ProductID: o.ProductID, Quantity: o.Quantity})
}

func NewOrderCancelledEvent(o *entities.ManufacturingOrder) entities.Event {
	return newEvent(entities.EventOrderCancelled, OrderCancelled{OrderID: o.ID, ProductID: o.ProductID, Quantity: o.Quantity})
}

func NewPurchaseCreatedEvent(po *entities.PurchaseOrder) entities.Event {
	return newEvent(entities.EventPurchaseCreated, PurchaseCreated{
		PurchaseID:            po.ID,
		SupplierID:            po.SupplierID,
		ProductID:             po.ProductID,
		Quantity:              po.Quantity,
		UnitCost:              po.UnitCost,
		TotalCost:             po.TotalCost(),
		EstimatedDeliveryDate: entities.FormatDate(po.EstimatedDeliveryDate),
	})
}

func NewPurchaseReceivedEvent(po *entities.PurchaseOrder) entities.Event {
	return newEvent(entities.EventPurchaseReceived, PurchaseReceived{
		PurchaseID: po.ID,
		SupplierID: po.SupplierID,
		ProductID:  po.ProductID,
		Quantity:   po.Quantity,
	})
}

func NewPurchaseCancelledEvent(po *entities.PurchaseOrder) entities.Event {
	return newEvent(entities.EventPurchaseCancelled, PurchaseCancelled{
		PurchaseID: po.ID,
		SupplierID: po.SupplierID,
		ProductID:  po.ProductID,
		Quantity:   po.Quantity,
	})
}

func NewStockChangedEvent(id entities.ProductID, previous, current entities.Quantity, reason string) entities.Event {
	return newEvent(entities.EventStockChanged, StockChanged{
		ProductID:        id,
		PreviousQuantity: previous,
		NewQuantity:      current,
		Change:           current - previous,
		Reason:           reason,
	})
}

// NewDayAdvancedEvent is stamped with the new day
func NewDayAdvancedEvent(previous, current time.Time) entities.Event {
	e := newEvent(entities.EventDayAdvanced, DayAdvanced{
		PreviousDate: entities.FormatDate(previous),
		NewDate:      entities.FormatDate(current),
	})
	e.Timestamp = entities.Day(current)
	return e
}

// DecodeDetails restores the typed payload of a stored event
func DecodeDetails(t entities.EventType, raw []byte) (any, error) {
	switch t {
	case entities.EventOrderCreated:
		return decode[OrderCreated](t, raw)
	case entities.EventOrderReleased:
		return decode[OrderReleased](t, raw)
	case entities.EventOrderCompleted:
		return decode[OrderCompleted](t, raw)
	case entities.EventOrderCancelled:
		return decode[OrderCancelled](t, raw)
	case entities.EventPurchaseCreated:
		return decode[PurchaseCreated](t, raw)
	case entities.EventPurchaseReceived:
		return decode[PurchaseReceived](t, raw)
	case entities.EventPurchaseCancelled:
		return decode[PurchaseCancelled](t, raw)
	case entities.EventStockChanged:
		return decode[StockChanged](t, raw)
	case entities.EventDayAdvanced:
		return decode[DayAdvanced](t, raw)
	default:
		return nil, fmt.Errorf("unknown event type %q", t)
	}
}

func decode[T any](t entities.EventType, raw []byte) (any, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s details: %w", t, err)
	}
	return v, nil
}
