package services

import (
	"fmt"
	"slices"

	"github.com/vsinha/factorysim/pkg/domain/entities"
)

// BOMValidator checks that a product catalogue, its bills of materials and
// its suppliers are mutually consistent.
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// ValidationResult contains the results of catalogue validation
type ValidationResult struct {
	DuplicateEntries   []entities.BOMEntry
	UnknownProducts    []entities.ProductID
	KindMismatches     []entities.BOMEntry
	FinishedWithoutBOM []entities.ProductID
	UnsuppliedMaterial []entities.ProductID
	Errors             []string
	Warnings           []string
}

// IsValid reports whether no hard errors were found
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateBOM checks every entry against the product catalogue. A finished
// product must list only raw materials; duplicated pairs are reported but
// merged by the store.
func (v *BOMValidator) ValidateBOM(products []entities.Product, entries []entities.BOMEntry) *ValidationResult {
	result := &ValidationResult{}

	byID := make(map[entities.ProductID]entities.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	unknown := make(map[entities.ProductID]bool)
	withBOM := make(map[entities.ProductID]bool)
	for _, e := range entries {
		finished, okF := byID[e.FinishedProductID]
		material, okM := byID[e.MaterialID]
		if !okF {
			unknown[e.FinishedProductID] = true
		}
		if !okM {
			unknown[e.MaterialID] = true
		}
		if !okF || !okM {
			continue
		}
		if finished.Kind != entities.FinishedGood || material.Kind != entities.RawMaterial {
			result.KindMismatches = append(result.KindMismatches, e)
			continue
		}
		withBOM[e.FinishedProductID] = true
	}

	for id := range unknown {
		result.UnknownProducts = append(result.UnknownProducts, id)
	}
	slices.Sort(result.UnknownProducts)

	result.DuplicateEntries = v.detectDuplicateEntries(entries)

	for _, p := range products {
		if p.Kind == entities.FinishedGood && !withBOM[p.ID] {
			result.FinishedWithoutBOM = append(result.FinishedWithoutBOM, p.ID)
		}
	}

	if len(result.UnknownProducts) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("BOM references unknown products: %v", result.UnknownProducts))
	}
	for _, e := range result.KindMismatches {
		result.Errors = append(result.Errors, fmt.Sprintf("BOM entry %d -> %d must link a finished product to a raw material", e.FinishedProductID, e.MaterialID))
	}
	if len(result.DuplicateEntries) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Found %d duplicate BOM entries, quantities will be summed", len(result.DuplicateEntries)))
	}
	if len(result.FinishedWithoutBOM) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Finished products without BOM: %v", result.FinishedWithoutBOM))
	}

	return result
}

// detectDuplicateEntries finds entries repeating a (finished, material) pair
func (v *BOMValidator) detectDuplicateEntries(entries []entities.BOMEntry) []entities.BOMEntry {
	seen := make(map[entities.BOMKey]bool)
	var duplicates []entities.BOMEntry

	for _, e := range entries {
		if seen[e.Key()] {
			duplicates = append(duplicates, e)
		} else {
			seen[e.Key()] = true
		}
	}

	return duplicates
}

// ValidateSuppliers checks that suppliers offer known raw materials and
// reports raw materials nobody supplies.
func (v *BOMValidator) ValidateSuppliers(products []entities.Product, suppliers []entities.Supplier) *ValidationResult {
	result := &ValidationResult{}

	byID := make(map[entities.ProductID]entities.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	supplied := make(map[entities.ProductID]bool)
	for _, s := range suppliers {
		p, ok := byID[s.ProductID]
		switch {
		case !ok:
			result.Errors = append(result.Errors, fmt.Sprintf("supplier %d offers unknown product %d", s.ID, s.ProductID))
		case p.Kind != entities.RawMaterial:
			result.Errors = append(result.Errors, fmt.Sprintf("supplier %d offers finished product %d", s.ID, s.ProductID))
		default:
			supplied[s.ProductID] = true
		}
	}

	for _, p := range products {
		if p.Kind == entities.RawMaterial && !supplied[p.ID] {
			result.UnsuppliedMaterial = append(result.UnsuppliedMaterial, p.ID)
		}
	}
	if len(result.UnsuppliedMaterial) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Raw materials without supplier: %v", result.UnsuppliedMaterial))
	}

	return result
}

// ValidateProductUniqueness validates that product ids are unique
func (v *BOMValidator) ValidateProductUniqueness(products []entities.Product) *ValidationResult {
	result := &ValidationResult{}

	seen := make(map[entities.ProductID]bool)
	var duplicates []entities.ProductID

	for _, p := range products {
		if seen[p.ID] {
			duplicates = append(duplicates, p.ID)
		} else {
			seen[p.ID] = true
		}
	}

	if len(duplicates) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Duplicate product ids found: %v", duplicates))
	}

	return result
}
