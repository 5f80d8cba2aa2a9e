package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/factorysim/pkg/application/dto"
	"github.com/vsinha/factorysim/pkg/domain/entities"
	fixtures "github.com/vsinha/factorysim/pkg/infrastructure/testing"
)

func sampleReport() *Report {
	day2 := fixtures.Day1.AddDate(0, 0, 1)
	return &Report{
		RunID:     uuid.MustParse("6f1c2a3e-1111-4c2b-9d3e-000000000001"),
		StartDate: fixtures.Day1,
		EndDate:   fixtures.Day1.AddDate(0, 0, 2),
		Days: []*dto.DayResult{
			{PreviousDate: fixtures.Day1, NewDate: day2, Created: []entities.OrderID{1, 2}, Released: []entities.OrderID{1}, TotalStock: 300},
			{PreviousDate: day2, NewDate: day2.AddDate(0, 0, 1), Completed: []entities.OrderID{1}, TotalStock: 1200, OverCapacity: true,
				Failures: []dto.Failure{{Step: dto.StepRelease, OrderID: 2, Reason: "insufficient stock"}}},
		},
		Inventory: []dto.InventoryItem{{ProductID: 3, Name: "kit_piezas", Kind: entities.RawMaterial, Quantity: 29}},
	}
}

func TestReport_Totals(t *testing.T) {
	totals := sampleReport().Totals()
	assert.Equal(t, Totals{Created: 2, Released: 1, Completed: 1, Failures: 1, OverCapacityDays: 1}, totals)
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(sampleReport(), Config{Format: "text", Verbose: true, Out: &buf}))

	out := buf.String()
	assert.Contains(t, out, "Period: 2025-01-01 -> 2025-01-03 (2 days)")
	assert.Contains(t, out, "1200!")
	assert.Contains(t, out, "kit_piezas")
	assert.Contains(t, out, "insufficient stock")
}

func TestGenerate_JSONToStdout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(sampleReport(), Config{Format: "json", Out: &buf}))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Days, 2)
	assert.True(t, decoded.Days[1].OverCapacity)
}

func TestGenerate_CSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Generate(sampleReport(), Config{Format: "csv", OutputDir: dir, Out: &bytes.Buffer{}}))

	f, err := os.Open(filepath.Join(dir, "days.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2025-01-02", "0", "0", "0", "1", "1", "1200", "true"}, rows[2])

	assert.FileExists(t, filepath.Join(dir, "inventory.csv"))
}

func TestGenerate_Errors(t *testing.T) {
	assert.Error(t, Generate(sampleReport(), Config{Format: "xml", Out: &bytes.Buffer{}}))
	assert.Error(t, Generate(sampleReport(), Config{Format: "csv", Out: &bytes.Buffer{}}))
}

func TestProgress_DayAdvanced(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)
	for _, d := range sampleReport().Days {
		p.DayAdvanced(d)
	}
	assert.Contains(t, buf.String(), "2025-01-01: +2 orders, 1 released, 0 received, 0 completed\n")
	assert.Contains(t, buf.String(), "1 failed (warehouse over capacity: 1200)")
}
