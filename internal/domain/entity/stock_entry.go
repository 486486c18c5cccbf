package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de stock.
const (
	MovementTypeIN         = "IN"         // entrada
	MovementTypeOUT        = "OUT"        // salida
	MovementTypeADJUSTMENT = "ADJUSTMENT" // fija el stock a un valor absoluto
)

// IsValidMovementType indica si t es un tipo de movimiento conocido.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeADJUSTMENT:
		return true
	}
	return false
}

// StockEntry es un asiento inmutable del libro de stock. Type e Items no cambian tras persistir;
// la corrección se hace borrando el asiento (lo que revierte su efecto) y creando otro.
type StockEntry struct {
	ID        string
	Type      string
	Items     []StockEntryItem
	Notes     string
	BillID    string // vacío si el asiento no proviene de una factura
	CreatedBy string // UserID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockEntryItem línea de un asiento. Quantity está en la unidad indicada por IsSubUnit.
// EffectiveQuantity, PreviousStock y AppliedDelta se calculan al aplicar el movimiento
// (unidad principal) y se guardan para poder revertirlo.
type StockEntryItem struct {
	ProductID         string
	Quantity          decimal.Decimal
	IsSubUnit         bool
	EffectiveQuantity decimal.Decimal
	PreviousStock     decimal.Decimal
	AppliedDelta      decimal.Decimal
}
