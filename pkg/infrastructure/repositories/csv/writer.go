package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vsinha/factorysim/pkg/infrastructure/seed"
)

// WriteDataset writes the four scenario files into dir, creating it if needed
func WriteDataset(dir string, d seed.Dataset) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create scenario directory: %w", err)
	}

	products := [][]string{productsHeader}
	for _, p := range d.Products {
		products = append(products, []string{itoa(int64(p.ID)), p.Name, p.Kind.String()})
	}
	bom := [][]string{bomHeader}
	for _, e := range d.BOM {
		bom = append(bom, []string{itoa(int64(e.FinishedProductID)), itoa(int64(e.MaterialID)), itoa(int64(e.Quantity))})
	}
	suppliers := [][]string{suppliersHeader}
	for _, s := range d.Suppliers {
		suppliers = append(suppliers, []string{
			itoa(int64(s.ID)), s.Name, itoa(int64(s.ProductID)), s.UnitCost.String(), strconv.Itoa(s.LeadTimeDays),
		})
	}
	stock := [][]string{stockHeader}
	for _, s := range d.Stock {
		stock = append(stock, []string{itoa(int64(s.ProductID)), itoa(int64(s.Quantity))})
	}

	for name, rows := range map[string][][]string{
		ProductsFile:  products,
		BOMFile:       bom,
		SuppliersFile: suppliers,
		StockFile:     stock,
	} {
		if err := writeFile(filepath.Join(dir, name), rows); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func writeFile(filename string, rows [][]string) error {
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

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
