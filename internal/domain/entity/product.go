package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida admitidas (unidad principal y sub-unidad).
const (
	UnitPieces    = "PCS"
	UnitBoxes     = "BOX"
	UnitBags      = "BAG"
	UnitRolls     = "ROLL"
	UnitPipes     = "PIPE"
	UnitKilograms = "KG"
	UnitLitres    = "LTR"
	UnitMetres    = "MTR"
	UnitSets      = "SET"
	UnitPackets   = "PKT"
)

var validUnits = map[string]struct{}{
	UnitPieces: {}, UnitBoxes: {}, UnitBags: {}, UnitRolls: {}, UnitPipes: {},
	UnitKilograms: {}, UnitLitres: {}, UnitMetres: {}, UnitSets: {}, UnitPackets: {},
}

// IsValidUnit indica si u es una unidad conocida.
func IsValidUnit(u string) bool {
	_, ok := validUnits[u]
	return ok
}

// SubUnit relación fija con la unidad principal: 1 unidad principal = ConversionRate sub-unidades.
type SubUnit struct {
	Unit           string
	ConversionRate decimal.Decimal
}

// Product representa un artículo del inventario de la tienda.
// CurrentStock está siempre expresado en la unidad principal y solo lo muta el libro de stock
// (o el ajuste administrativo directo).
type Product struct {
	ID                string
	SKU               string
	Name              string
	HSNCode           string
	Unit              string
	HasSubUnit        bool
	SubUnit           *SubUnit // presente si y solo si HasSubUnit
	CurrentStock      decimal.Decimal
	Price             decimal.Decimal // precio de venta por unidad principal, sin GST
	GSTRate           decimal.Decimal // porcentaje: 0, 5, 12, 18, 28
	LowStockThreshold decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLowStock indica si el stock actual está en o por debajo del umbral configurado.
func (p *Product) IsLowStock() bool {
	return p.LowStockThreshold.GreaterThan(decimal.Zero) && p.CurrentStock.LessThanOrEqual(p.LowStockThreshold)
}
