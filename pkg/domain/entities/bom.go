package entities

// BOMKey identifies a single (finished, material) pair in a bill of materials
type BOMKey struct {
	FinishedProductID ProductID
	MaterialID        ProductID
}

// BOMEntry states how many units of one raw material a single unit of a
// finished product consumes.
type BOMEntry struct {
	FinishedProductID ProductID `json:"finished_product_id"`
	MaterialID        ProductID `json:"material_id"`
	Quantity          Quantity  `json:"quantity"`
}

// NewBOMEntry creates a validated BOMEntry
func NewBOMEntry(finishedID, materialID ProductID, quantity Quantity) (*BOMEntry, error) {
	if finishedID <= 0 {
		return nil, NewValidationError("finished_product_id", "finished product id must be positive, got %d", finishedID)
	}
	if materialID <= 0 {
		return nil, NewValidationError("material_id", "material id must be positive, got %d", materialID)
	}
	if finishedID == materialID {
		return nil, NewValidationError("material_id", "finished product and material cannot be the same: %d", finishedID)
	}
	if quantity <= 0 {
		return nil, NewValidationError("quantity", "quantity per unit must be positive, got %d", quantity)
	}

	return &BOMEntry{
		FinishedProductID: finishedID,
		MaterialID:        materialID,
		Quantity:          quantity,
	}, nil
}

// Key returns the (finished, material) identity of the entry
func (e BOMEntry) Key() BOMKey {
	return BOMKey{FinishedProductID: e.FinishedProductID, MaterialID: e.MaterialID}
}
