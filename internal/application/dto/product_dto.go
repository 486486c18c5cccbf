package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubUnitDTO sub-unidad de un producto: 1 unidad principal = conversion_rate sub-unidades.
type SubUnitDTO struct {
	Unit           string          `json:"unit" validate:"required"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
}

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU               string          `json:"sku" validate:"required,min=1,max=64"`
	Name              string          `json:"name" validate:"required,min=1,max=200"`
	HSNCode           string          `json:"hsn_code" validate:"omitempty,numeric,min=4,max=8"`
	Unit              string          `json:"unit" validate:"required"`
	HasSubUnit        bool            `json:"has_sub_unit"`
	SubUnit           *SubUnitDTO     `json:"sub_unit,omitempty"`
	InitialStock      decimal.Decimal `json:"initial_stock"`
	Price             decimal.Decimal `json:"price"`
	GSTRate           decimal.Decimal `json:"gst_rate"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock).
type UpdateProductRequest struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=200"`
	HSNCode           *string          `json:"hsn_code" validate:"omitempty,numeric,min=4,max=8"`
	Price             *decimal.Decimal `json:"price"`
	GSTRate           *decimal.Decimal `json:"gst_rate"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold"`
}

// OverrideStockRequest fija el stock de forma administrativa, fuera del libro de stock.
type OverrideStockRequest struct {
	CurrentStock decimal.Decimal `json:"current_stock"`
	Reason       string          `json:"reason" validate:"required,min=3,max=300"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                string           `json:"id"`
	SKU               string           `json:"sku"`
	Name              string           `json:"name"`
	HSNCode           string           `json:"hsn_code,omitempty"`
	Unit              string           `json:"unit"`
	HasSubUnit        bool             `json:"has_sub_unit"`
	SubUnit           *SubUnitDTO      `json:"sub_unit,omitempty"`
	CurrentStock      decimal.Decimal  `json:"current_stock"`
	CurrentStockInSub *decimal.Decimal `json:"current_stock_in_sub_unit,omitempty"`
	Price             decimal.Decimal  `json:"price"`
	GSTRate           decimal.Decimal  `json:"gst_rate"`
	LowStockThreshold decimal.Decimal  `json:"low_stock_threshold"`
	LowStock          bool             `json:"low_stock"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
