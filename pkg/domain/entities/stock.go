package entities

// StockLevel is the on-hand quantity of a single product
type StockLevel struct {
	ProductID ProductID `json:"product_id"`
	Quantity  Quantity  `json:"quantity"`
}

// NewStockLevel creates a validated StockLevel
func NewStockLevel(productID ProductID, quantity Quantity) (*StockLevel, error) {
	if productID <= 0 {
		return nil, NewValidationError("product_id", "product id must be positive, got %d", productID)
	}
	if quantity < 0 {
		return nil, NewValidationError("quantity", "quantity cannot be negative, got %d", quantity)
	}

	return &StockLevel{
		ProductID: productID,
		Quantity:  quantity,
	}, nil
}

// Requirements maps each material to the quantity needed
type Requirements map[ProductID]Quantity

// Add accumulates qty for the product
func (r Requirements) Add(id ProductID, qty Quantity) {
	r[id] += qty
}

// Total returns the sum of all required quantities
func (r Requirements) Total() Quantity {
	var total Quantity
	for _, q := range r {
		total += q
	}
	return total
}
