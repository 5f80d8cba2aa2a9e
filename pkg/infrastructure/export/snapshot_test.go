package export

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/infrastructure/events"
	"github.com/vsinha/factorysim/pkg/infrastructure/repositories/memory"
	fixtures "github.com/vsinha/factorysim/pkg/infrastructure/testing"
)

func TestExportImport_RoundTrip(t *testing.T) {
	f := fixtures.NewFixture()
	f.LoadPrinterFactory()
	ctx := context.Background()

	_, err := f.Recorder.Append(ctx, events.NewStockChangedEvent(3, 30, 28, "manual count"))
	require.NoError(t, err)

	snap, err := Export(ctx, f.Stores, f.Recorder.RunID(), fixtures.Day1)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", snap.CurrentDate)
	assert.Len(t, snap.Products, 10)
	assert.Len(t, snap.Suppliers, 9)
	require.Len(t, snap.Events, 1)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap))
	assert.Contains(t, buf.String(), `"kind": "finished"`)

	decoded, err := Read(&buf)
	require.NoError(t, err)

	stores := memory.NewStores()
	require.NoError(t, Import(ctx, stores, decoded))

	level, err := stores.Stock.GetByProduct(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, entities.Quantity(100), level.Quantity)

	stored, err := stores.Events.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, events.StockChanged{ProductID: 3, PreviousQuantity: 30, NewQuantity: 28, Change: -2, Reason: "manual count"}, stored[0].Details)
}

func TestImport_RejectsBadDocuments(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name string
		snap Snapshot
	}{
		{"wrong version", Snapshot{Version: 2, CurrentDate: "2025-01-01"}},
		{"bad date", Snapshot{Version: Version, CurrentDate: "tomorrow"}},
		{"unknown event type", Snapshot{Version: Version, CurrentDate: "2025-01-01", Events: []Event{
			{ID: 1, Type: "order_exploded", Timestamp: "2025-01-01", Details: json.RawMessage(`{}`)},
		}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, Import(ctx, memory.NewStores(), &tc.snap))
		})
	}
}
