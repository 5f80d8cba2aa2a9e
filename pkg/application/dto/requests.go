package dto

// ErrorResponse is the body of every failed HTTP request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateManufacturingOrderRequest is the body of POST /orders/manufacturing
type CreateManufacturingOrderRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
}

// CreatePurchaseOrderRequest is the body of POST /orders/purchase
type CreatePurchaseOrderRequest struct {
	SupplierID int64 `json:"supplier_id" validate:"required,gt=0"`
	ProductID  int64 `json:"product_id" validate:"required,gt=0"`
	Quantity   int64 `json:"quantity" validate:"required,gt=0"`
}
