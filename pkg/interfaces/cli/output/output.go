package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/factorysim/pkg/application/dto"
	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Elapsed   time.Duration
	Out       io.Writer // stdout when nil
}

// Report is everything a run produced
type Report struct {
	RunID     uuid.UUID           `json:"run_id"`
	StartDate time.Time           `json:"start_date"`
	EndDate   time.Time           `json:"end_date"`
	Days      []*dto.DayResult    `json:"days"`
	Inventory []dto.InventoryItem `json:"inventory"`
}

// Totals sums the per-day counts of a report
type Totals struct {
	Created, Released, Received, Completed, Failures int
	OverCapacityDays                                 int
}

func (r *Report) Totals() Totals {
	var t Totals
	for _, d := range r.Days {
		t.Created += len(d.Created)
		t.Released += len(d.Released)
		t.Received += len(d.Received)
		t.Completed += len(d.Completed)
		t.Failures += len(d.Failures)
		if d.OverCapacity {
			t.OverCapacityDays++
		}
	}
	return t
}

// Generate creates output in the specified format
func Generate(report *Report, config Config) error {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	switch config.Format {
	case "", "text":
		return generateTextOutput(report, config)
	case "json":
		return generateJSONOutput(report, config)
	case "csv":
		return generateCSVOutput(report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(report *Report, config Config) error {
	w := config.Out
	totals := report.Totals()

	fmt.Fprintf(w, "📊 Simulation Summary\n")
	fmt.Fprintf(w, "=====================\n\n")
	fmt.Fprintf(w, "Run: %s\n", report.RunID)
	fmt.Fprintf(w, "Period: %s -> %s (%d days)\n",
		entities.FormatDate(report.StartDate), entities.FormatDate(report.EndDate), len(report.Days))
	fmt.Fprintf(w, "Orders created: %d, released: %d, completed: %d\n",
		totals.Created, totals.Released, totals.Completed)
	fmt.Fprintf(w, "Purchases received: %d\n", totals.Received)
	fmt.Fprintf(w, "Failures: %d\n", totals.Failures)
	if config.Elapsed > 0 {
		fmt.Fprintf(w, "Elapsed: %v\n", config.Elapsed)
	}
	fmt.Fprintln(w)

	if len(report.Days) > 0 {
		fmt.Fprintf(w, "📅 Days:\n")
		fmt.Fprintf(w, "%-12s %-8s %-9s %-9s %-10s %-9s %-8s\n",
			"Date", "Created", "Released", "Received", "Completed", "Failures", "Stock")
		fmt.Fprintf(w, "%-12s %-8s %-9s %-9s %-10s %-9s %-8s\n",
			"------------", "--------", "---------", "---------", "----------", "---------", "--------")
		for _, d := range report.Days {
			stock := strconv.FormatInt(int64(d.TotalStock), 10)
			if d.OverCapacity {
				stock += "!"
			}
			fmt.Fprintf(w, "%-12s %-8d %-9d %-9d %-10d %-9d %-8s\n",
				entities.FormatDate(d.PreviousDate),
				len(d.Created), len(d.Released), len(d.Received), len(d.Completed), len(d.Failures),
				stock)
		}
		fmt.Fprintln(w)
	}

	if len(report.Inventory) > 0 {
		fmt.Fprintf(w, "📦 Inventory:\n")
		fmt.Fprintf(w, "%-4s %-22s %-9s %-8s\n", "ID", "Product", "Kind", "Qty")
		fmt.Fprintf(w, "%-4s %-22s %-9s %-8s\n", "----", "----------------------", "---------", "--------")
		for _, it := range report.Inventory {
			fmt.Fprintf(w, "%-4d %-22s %-9s %-8d\n", it.ProductID, it.Name, it.Kind, it.Quantity)
		}
		fmt.Fprintln(w)
	}

	if config.Verbose && totals.Failures > 0 {
		fmt.Fprintf(w, "⚠️  Failures:\n")
		for _, d := range report.Days {
			for _, f := range d.Failures {
				fmt.Fprintf(w, "  %s %-8s order %-4d %s\n", entities.FormatDate(d.PreviousDate), f.Step, f.OrderID, f.Reason)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

// generateJSONOutput writes the report to stdout or day_results.json
func generateJSONOutput(report *Report, config Config) error {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err := fmt.Fprintln(config.Out, string(jsonData))
		return err
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "day_results.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.Out, "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes days.csv and inventory.csv
func generateCSVOutput(report *Report, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	daysFile := filepath.Join(config.OutputDir, "days.csv")
	if err := writeCSV(daysFile, daysRows(report.Days)); err != nil {
		return fmt.Errorf("failed to write days CSV: %w", err)
	}
	inventoryFile := filepath.Join(config.OutputDir, "inventory.csv")
	if err := writeCSV(inventoryFile, inventoryRows(report.Inventory)); err != nil {
		return fmt.Errorf("failed to write inventory CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.Out, "💾 CSV results saved to:\n")
		fmt.Fprintf(config.Out, "  Days: %s\n", daysFile)
		fmt.Fprintf(config.Out, "  Inventory: %s\n", inventoryFile)
	}
	return nil
}

func daysRows(days []*dto.DayResult) [][]string {
	rows := [][]string{{"date", "created", "released", "received", "completed", "failures", "total_stock", "over_capacity"}}
	for _, d := range days {
		rows = append(rows, []string{
			entities.FormatDate(d.PreviousDate),
			strconv.Itoa(len(d.Created)),
			strconv.Itoa(len(d.Released)),
			strconv.Itoa(len(d.Received)),
			strconv.Itoa(len(d.Completed)),
			strconv.Itoa(len(d.Failures)),
			strconv.FormatInt(int64(d.TotalStock), 10),
			strconv.FormatBool(d.OverCapacity),
		})
	}
	return rows
}

func inventoryRows(items []dto.InventoryItem) [][]string {
	rows := [][]string{{"product_id", "name", "kind", "quantity"}}
	for _, it := range items {
		rows = append(rows, []string{
			strconv.FormatInt(int64(it.ProductID), 10),
			it.Name,
			it.Kind.String(),
			strconv.FormatInt(int64(it.Quantity), 10),
		})
	}
	return rows
}

func writeCSV(filename string, rows [][]string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}
