package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/factorysim/pkg/domain/entities"
	"github.com/vsinha/factorysim/pkg/infrastructure/seed"
)

// Scenario file names inside a scenario directory
const (
	ProductsFile  = "products.csv"
	BOMFile       = "bom.csv"
	SuppliersFile = "suppliers.csv"
	StockFile     = "stock.csv"
)

var (
	productsHeader  = []string{"id", "name", "kind"}
	bomHeader       = []string{"finished_product_id", "material_id", "quantity"}
	suppliersHeader = []string{"id", "name", "product_id", "unit_cost", "lead_time_days"}
	stockHeader     = []string{"product_id", "quantity"}
)

// Loader reads factory scenarios from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadDataset reads a scenario directory. stock.csv is optional; the other
// three files are required. The result is validated before it is returned.
func (l *Loader) LoadDataset(dir string) (seed.Dataset, error) {
	var d seed.Dataset
	var err error

	if d.Products, err = openWith(filepath.Join(dir, ProductsFile), l.ReadProducts); err != nil {
		return seed.Dataset{}, err
	}
	if d.BOM, err = openWith(filepath.Join(dir, BOMFile), l.ReadBOM); err != nil {
		return seed.Dataset{}, err
	}
	if d.Suppliers, err = openWith(filepath.Join(dir, SuppliersFile), l.ReadSuppliers); err != nil {
		return seed.Dataset{}, err
	}
	d.Stock, err = openWith(filepath.Join(dir, StockFile), l.ReadStock)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return seed.Dataset{}, err
	}

	if err := d.Validate(); err != nil {
		return seed.Dataset{}, err
	}
	return d, nil
}

func openWith[T any](filename string, read func(io.Reader) ([]T, error)) ([]T, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	out, err := read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}
	return out, nil
}

// ReadProducts parses id,name,kind rows
func (l *Loader) ReadProducts(r io.Reader) ([]entities.Product, error) {
	return readRows(r, productsHeader, func(record []string) (entities.Product, error) {
		id, err := parseInt(record[0], "id")
		if err != nil {
			return entities.Product{}, err
		}
		kind, err := entities.ParseProductKind(record[2])
		if err != nil {
			return entities.Product{}, err
		}
		p, err := entities.NewProduct(entities.ProductID(id), record[1], kind)
		if err != nil {
			return entities.Product{}, err
		}
		return *p, nil
	})
}

// ReadBOM parses finished_product_id,material_id,quantity rows
func (l *Loader) ReadBOM(r io.Reader) ([]entities.BOMEntry, error) {
	return readRows(r, bomHeader, func(record []string) (entities.BOMEntry, error) {
		finished, err := parseInt(record[0], "finished_product_id")
		if err != nil {
			return entities.BOMEntry{}, err
		}
		material, err := parseInt(record[1], "material_id")
		if err != nil {
			return entities.BOMEntry{}, err
		}
		qty, err := parseInt(record[2], "quantity")
		if err != nil {
			return entities.BOMEntry{}, err
		}
		e, err := entities.NewBOMEntry(entities.ProductID(finished), entities.ProductID(material), entities.Quantity(qty))
		if err != nil {
			return entities.BOMEntry{}, err
		}
		return *e, nil
	})
}

// ReadSuppliers parses id,name,product_id,unit_cost,lead_time_days rows
func (l *Loader) ReadSuppliers(r io.Reader) ([]entities.Supplier, error) {
	return readRows(r, suppliersHeader, func(record []string) (entities.Supplier, error) {
		id, err := parseInt(record[0], "id")
		if err != nil {
			return entities.Supplier{}, err
		}
		product, err := parseInt(record[2], "product_id")
		if err != nil {
			return entities.Supplier{}, err
		}
		cost, err := decimal.NewFromString(strings.TrimSpace(record[3]))
		if err != nil {
			return entities.Supplier{}, fmt.Errorf("invalid unit_cost: %s", record[3])
		}
		lead, err := parseInt(record[4], "lead_time_days")
		if err != nil {
			return entities.Supplier{}, err
		}
		s, err := entities.NewSupplier(entities.SupplierID(id), record[1], entities.ProductID(product), cost, int(lead))
		if err != nil {
			return entities.Supplier{}, err
		}
		return *s, nil
	})
}

// ReadStock parses product_id,quantity rows
func (l *Loader) ReadStock(r io.Reader) ([]entities.StockLevel, error) {
	return readRows(r, stockHeader, func(record []string) (entities.StockLevel, error) {
		product, err := parseInt(record[0], "product_id")
		if err != nil {
			return entities.StockLevel{}, err
		}
		qty, err := parseInt(record[1], "quantity")
		if err != nil {
			return entities.StockLevel{}, err
		}
		level, err := entities.NewStockLevel(entities.ProductID(product), entities.Quantity(qty))
		if err != nil {
			return entities.StockLevel{}, err
		}
		return *level, nil
	})
}

// readRows checks the header and parses every data row, reporting errors
// with 1-based file line numbers
func readRows[T any](r io.Reader, header []string, parse func([]string) (T, error)) ([]T, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV must have a header row")
	}
	if !validateHeader(records[0], header) {
		return nil, fmt.Errorf("CSV header mismatch. Expected: %v, Got: %v", header, records[0])
	}

	out := make([]T, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", i+2, len(header), len(record))
		}
		v, err := parse(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseInt(s, field string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", field, s)
	}
	return n, nil
}
