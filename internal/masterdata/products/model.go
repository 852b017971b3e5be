package products

import (
	"time"
)

// Product represents a sellable medical-supply item.
type Product struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Unit        string    `json:"unit"`
	BuyPrice    float64   `json:"buy_price"`
	SellPrice   float64   `json:"sell_price"`
	TaxRate     float64   `json:"tax_rate"`
	Stock       int64     `json:"stock"`
	MinStock    int64     `json:"min_stock"`
	WarehouseID int64     `json:"warehouse_id"`
	CategoryID  int64     `json:"category_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProductRequest describes a new product.
type CreateProductRequest struct {
	Code        string  `json:"code" validate:"required,max=50"`
	Name        string  `json:"name" validate:"required,max=200"`
	Unit        string  `json:"unit" validate:"required,max=20"`
	BuyPrice    float64 `json:"buy_price" validate:"gte=0"`
	SellPrice   float64 `json:"sell_price" validate:"gte=0"`
	TaxRate     float64 `json:"tax_rate" validate:"gte=0,lte=100"`
	Stock       int64   `json:"stock" validate:"gte=0"`
	MinStock    int64   `json:"min_stock" validate:"gte=0"`
	WarehouseID int64   `json:"warehouse_id" validate:"required,gt=0"`
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
}

// UpdateProductRequest updates mutable product fields. Stock is absent on
// purpose: stock changes only flow through invoices and the inventory module.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Unit        *string  `json:"unit,omitempty" validate:"omitempty,max=20"`
	BuyPrice    *float64 `json:"buy_price,omitempty" validate:"omitempty,gte=0"`
	SellPrice   *float64 `json:"sell_price,omitempty" validate:"omitempty,gte=0"`
	TaxRate     *float64 `json:"tax_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	MinStock    *int64   `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
	WarehouseID *int64   `json:"warehouse_id,omitempty" validate:"omitempty,gt=0"`
	CategoryID  *int64   `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	IsActive    *bool    `json:"is_active,omitempty"`
}
