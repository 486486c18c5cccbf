// Package ledger contiene el motor del libro de stock: conversión de unidades, validación
// de movimientos, cálculo de la mutación y de su reversión. No tiene efectos secundarios;
// la persistencia la hace la capa de aplicación dentro de una transacción.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
)

// SubUnitScale decimales con que se redondea el stock al expresarlo en sub-unidades. Dividir
// por tasas como 6 o 7 no es exacto; el stock guardado arrastra un error en el dígito 16 que
// este redondeo absorbe.
const SubUnitScale = 8

// ToMainUnitQuantity traduce quantity a la unidad principal del producto.
// Con isSubUnit=false devuelve quantity sin cambios; con isSubUnit=true divide por ConversionRate.
func ToMainUnitQuantity(p *entity.Product, quantity decimal.Decimal, isSubUnit bool) (decimal.Decimal, error) {
	if !isSubUnit {
		return quantity, nil
	}
	rate, err := subUnitRate(p)
	if err != nil {
		return decimal.Zero, err
	}
	return quantity.Div(rate), nil
}

// ToSubUnitQuantity inversa de ToMainUnitQuantity para productos con sub-unidad.
func ToSubUnitQuantity(p *entity.Product, mainQuantity decimal.Decimal) (decimal.Decimal, error) {
	rate, err := subUnitRate(p)
	if err != nil {
		return decimal.Zero, err
	}
	return mainQuantity.Mul(rate).Round(SubUnitScale), nil
}

// subUnitGrid tasa del producto si los movimientos deben calcularse en sub-unidades.
func subUnitGrid(p *entity.Product) (decimal.Decimal, bool) {
	if !p.HasSubUnit || p.SubUnit == nil || !p.SubUnit.ConversionRate.IsPositive() {
		return decimal.Zero, false
	}
	return p.SubUnit.ConversionRate, true
}

// stockAndRequest expresa el stock actual y la cantidad pedida en la misma escala. Para
// productos con sub-unidad ambos van en sub-unidades (stock redondeado a SubUnitScale); si no,
// en unidad principal.
func stockAndRequest(p *entity.Product, quantity decimal.Decimal, isSubUnit bool) (stock, request decimal.Decimal) {
	rate, ok := subUnitGrid(p)
	if !ok {
		return p.CurrentStock, quantity
	}
	stock = p.CurrentStock.Mul(rate).Round(SubUnitScale)
	if isSubUnit {
		return stock, quantity
	}
	return stock, quantity.Mul(rate)
}

// fromGrid devuelve a unidad principal un valor calculado por stockAndRequest.
func fromGrid(p *entity.Product, v decimal.Decimal) decimal.Decimal {
	rate, ok := subUnitGrid(p)
	if !ok || v.IsZero() {
		return v
	}
	return v.Div(rate)
}

// snapStock ajusta un stock en unidad principal a la rejilla de sub-unidades del producto.
func snapStock(p *entity.Product, stock decimal.Decimal) decimal.Decimal {
	rate, ok := subUnitGrid(p)
	if !ok {
		return stock
	}
	return fromGrid(p, stock.Mul(rate).Round(SubUnitScale))
}

func subUnitRate(p *entity.Product) (decimal.Decimal, error) {
	if !p.HasSubUnit || p.SubUnit == nil {
		return decimal.Zero, &ValidationError{Field: "is_sub_unit", Reason: "el producto " + p.ID + " no tiene sub-unidad"}
	}
	if !p.SubUnit.ConversionRate.GreaterThan(decimal.Zero) {
		return decimal.Zero, &ValidationError{Field: "conversion_rate", Reason: "tasa de conversión no positiva en el producto " + p.ID}
	}
	return p.SubUnit.ConversionRate, nil
}
