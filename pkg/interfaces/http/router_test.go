package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/factorysim/pkg/application/dto"
	"github.com/vsinha/factorysim/pkg/application/services/simulation"
	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/factorysim/pkg/infrastructure/seed"
	fixtures "github.com/vsinha/factorysim/pkg/infrastructure/testing"
	"github.com/vsinha/factorysim/pkg/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *simulation.Simulation) {
	t.Helper()
	ctx := context.Background()

	cfg := simulation.DefaultConfig(fixtures.Day1)
	cfg.DemandMean = 0
	cfg.DemandStdDev = 0
	cfg.Seed = 1
	sim, err := simulation.New(ctx, cfg, memory.NewStores())
	require.NoError(t, err)
	require.NoError(t, sim.LoadDataset(ctx, seed.PrinterFactory()))

	app := NewApp(RouterDeps{Simulation: sim, AppName: "factorysim-test", Log: logger.Nop()})
	return app, sim
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)
	resp, raw := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"status":"ok"`)
}

func TestSimulationStatusAndAdvance(t *testing.T) {
	app, _ := newTestApp(t)

	resp, raw := doJSON(t, app, http.MethodGet, "/simulation", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status statusResponse
	require.NoError(t, json.Unmarshal(raw, &status))
	assert.Equal(t, "2025-01-01", status.CurrentDate)
	assert.Equal(t, 10, status.RemainingCapacity)
	assert.Equal(t, 10, status.Config.ProductionCapacityPerDay)

	resp, raw = doJSON(t, app, http.MethodPost, "/simulation/advance-day", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		NewDate string `json:"new_date"`
		Events  []struct {
			Type string `json:"type"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, "2025-01-02T00:00:00Z", result.NewDate)
	require.NotEmpty(t, result.Events)
	assert.Equal(t, string(entities.EventDayAdvanced), result.Events[len(result.Events)-1].Type)
}

func TestManufacturingOrderLifecycle(t *testing.T) {
	app, sim := newTestApp(t)

	resp, raw := doJSON(t, app, http.MethodPost, "/orders/manufacturing", dto.CreateManufacturingOrderRequest{ProductID: 1, Quantity: 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var order entities.ManufacturingOrder
	require.NoError(t, json.Unmarshal(raw, &order))
	assert.Equal(t, entities.Pending, order.Status)

	resp, raw = doJSON(t, app, http.MethodGet, "/orders/manufacturing/pending", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pending []dto.OrderMaterials
	require.NoError(t, json.Unmarshal(raw, &pending))
	require.Len(t, pending, 1)
	assert.True(t, pending[0].CanProduce)

	resp, raw = doJSON(t, app, http.MethodPost, fmt.Sprintf("/orders/manufacturing/%d/release", order.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &order))
	assert.Equal(t, entities.InProduction, order.Status)
	assert.Equal(t, 9, sim.RemainingCapacity())

	resp, raw = doJSON(t, app, http.MethodPost, fmt.Sprintf("/orders/manufacturing/%d/release", order.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE", decodeError(t, raw).Code)

	resp, raw = doJSON(t, app, http.MethodGet, "/orders/manufacturing?status=in_production", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []entities.ManufacturingOrder
	require.NoError(t, json.Unmarshal(raw, &listed))
	assert.Len(t, listed, 1)
}

func TestReleaseShortOrderConflicts(t *testing.T) {
	app, _ := newTestApp(t)

	// P3D-Pro needs one pcb_CTRL-V3 per unit and only 15 are on hand
	resp, raw := doJSON(t, app, http.MethodPost, "/orders/manufacturing", dto.CreateManufacturingOrderRequest{ProductID: 2, Quantity: 16})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order entities.ManufacturingOrder
	require.NoError(t, json.Unmarshal(raw, &order))

	resp, raw = doJSON(t, app, http.MethodPost, fmt.Sprintf("/orders/manufacturing/%d/release", order.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeError(t, raw).Code)

	resp, raw = doJSON(t, app, http.MethodGet, "/inventory/5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var item dto.InventoryItem
	require.NoError(t, json.Unmarshal(raw, &item))
	assert.Equal(t, entities.Quantity(15), item.Quantity)
}

func TestRequestErrors(t *testing.T) {
	app, _ := newTestApp(t)

	testCases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"zero quantity", http.MethodPost, "/orders/manufacturing", dto.CreateManufacturingOrderRequest{ProductID: 1}, http.StatusBadRequest, "VALIDATION"},
		{"raw material order", http.MethodPost, "/orders/manufacturing", dto.CreateManufacturingOrderRequest{ProductID: 3, Quantity: 1}, http.StatusBadRequest, "VALIDATION"},
		{"wrong supplier", http.MethodPost, "/orders/purchase", dto.CreatePurchaseOrderRequest{SupplierID: 1, ProductID: 4, Quantity: 1}, http.StatusBadRequest, "VALIDATION"},
		{"unknown order", http.MethodGet, "/orders/manufacturing/99", nil, http.StatusNotFound, "NOT_FOUND"},
		{"unknown product", http.MethodGet, "/products/99", nil, http.StatusNotFound, "NOT_FOUND"},
		{"unknown stock", http.MethodGet, "/inventory/99", nil, http.StatusNotFound, "NOT_FOUND"},
		{"bad id", http.MethodPost, "/orders/purchase/abc/cancel", nil, http.StatusBadRequest, "VALIDATION"},
		{"bad status", http.MethodGet, "/orders/purchase?status=lost", nil, http.StatusBadRequest, "VALIDATION"},
		{"bad event type", http.MethodGet, "/events?type=exploded", nil, http.StatusBadRequest, "VALIDATION"},
		{"inverted range", http.MethodGet, "/events?start=2025-01-05&end=2025-01-01", nil, http.StatusBadRequest, "VALIDATION"},
		{"no route", http.MethodGet, "/nowhere", nil, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := doJSON(t, app, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode, string(raw))
			assert.Equal(t, tc.code, decodeError(t, raw).Code)
		})
	}
}

func TestPurchaseOrderAndEvents(t *testing.T) {
	app, _ := newTestApp(t)

	resp, raw := doJSON(t, app, http.MethodPost, "/orders/purchase", dto.CreatePurchaseOrderRequest{SupplierID: 1, ProductID: 3, Quantity: 12})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var po entities.PurchaseOrder
	require.NoError(t, json.Unmarshal(raw, &po))
	assert.Equal(t, "2025-01-04", entities.FormatDate(po.EstimatedDeliveryDate))

	resp, raw = doJSON(t, app, http.MethodGet, "/products/3/suppliers", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var offers []dto.SupplierOffer
	require.NoError(t, json.Unmarshal(raw, &offers))
	assert.Len(t, offers, 2)

	resp, raw = doJSON(t, app, http.MethodGet, "/events?type=purchase_created&start=2025-01-01&end=2025-01-01", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []struct {
		ID   int64  `json:"id"`
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "purchase_created", list[0].Type)

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/orders/purchase/%d/cancel", po.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, raw = doJSON(t, app, http.MethodPost, fmt.Sprintf("/orders/purchase/%d/cancel", po.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE", decodeError(t, raw).Code)
}

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		err    error
		status int
		code   string
	}{
		{entities.NewValidationError("f", "bad"), fiber.StatusBadRequest, "VALIDATION"},
		{fmt.Errorf("wrapped: %w", entities.NotFoundError("product", 1)), fiber.StatusNotFound, "NOT_FOUND"},
		{&entities.StateError{Entity: "purchase order", ID: 1, Status: "received", Operation: "cancel"}, fiber.StatusConflict, "INVALID_STATE"},
		{&entities.InsufficientStockError{}, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
		{errors.New("disk on fire"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range testCases {
		status, code := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}
