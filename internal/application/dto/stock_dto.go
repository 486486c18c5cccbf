package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockEntryItemRequest línea de un movimiento. quantity se expresa en sub-unidad si is_sub_unit.
type StockEntryItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	IsSubUnit bool            `json:"is_sub_unit"`
}

// CreateStockEntryRequest body para POST /api/stock/entries.
type CreateStockEntryRequest struct {
	Type  string                  `json:"type" validate:"required"`
	Items []StockEntryItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes string                  `json:"notes" validate:"max=500"`
}

// StockEntryItemResponse línea de un asiento con los valores aplicados (unidad principal).
type StockEntryItemResponse struct {
	ProductID         string          `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	IsSubUnit         bool            `json:"is_sub_unit"`
	EffectiveQuantity decimal.Decimal `json:"effective_quantity"`
	PreviousStock     decimal.Decimal `json:"previous_stock"`
	AppliedDelta      decimal.Decimal `json:"applied_delta"`
}

// StockEntryResponse asiento del libro de stock.
type StockEntryResponse struct {
	ID        string                   `json:"id"`
	Type      string                   `json:"type"`
	Items     []StockEntryItemResponse `json:"items"`
	Notes     string                   `json:"notes,omitempty"`
	BillID    string                   `json:"bill_id,omitempty"`
	CreatedBy string                   `json:"created_by"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// StockEntryListResponse lista paginada de asientos.
type StockEntryListResponse struct {
	Items []StockEntryResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// StockReversalItem efecto de la reversión sobre un producto.
type StockReversalItem struct {
	ProductID     string          `json:"product_id"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
}

// DeleteStockEntryResponse confirmación del borrado de un asiento.
// Reverted es false para ADJUSTMENT: los ajustes no se deshacen.
type DeleteStockEntryResponse struct {
	ID       string              `json:"id"`
	Type     string              `json:"type"`
	Reverted bool                `json:"reverted"`
	Items    []StockReversalItem `json:"items"`
}
