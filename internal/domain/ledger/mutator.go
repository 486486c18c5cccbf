package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
)

// AppliedDelta resultado de aplicar (o revertir) una línea sobre un producto, en unidad principal.
type AppliedDelta struct {
	ProductID         string
	EffectiveQuantity decimal.Decimal
	PreviousStock     decimal.Decimal
	NewStock          decimal.Decimal
	Delta             decimal.Decimal
}

// PlanMovement calcula el nuevo stock de cada línea. Debe llamarse después de ValidateMovement.
// IN suma, OUT resta y ADJUSTMENT fija el valor convertido a unidad principal. En productos
// con sub-unidad la cuenta se hace en sub-unidades y el resultado vuelve a unidad principal,
// así vender las 6 piezas de una caja de 6 deja el stock en cero exacto.
func PlanMovement(movementType string, items []Item, productsByID map[string]*entity.Product) ([]AppliedDelta, error) {
	out := make([]AppliedDelta, 0, len(items))
	for _, it := range items {
		p, ok := productsByID[it.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{IDs: []string{it.ProductID}}
		}
		eff, err := ToMainUnitQuantity(p, it.Quantity, it.IsSubUnit)
		if err != nil {
			return nil, err
		}
		stock, req := stockAndRequest(p, it.Quantity, it.IsSubUnit)
		var next decimal.Decimal
		switch movementType {
		case entity.MovementTypeIN:
			next = fromGrid(p, stock.Add(req))
		case entity.MovementTypeOUT:
			next = fromGrid(p, stock.Sub(req))
		case entity.MovementTypeADJUSTMENT:
			next = fromGrid(p, req)
		default:
			return nil, &ValidationError{Field: "type", Reason: "tipo de movimiento desconocido"}
		}
		out = append(out, AppliedDelta{
			ProductID:         p.ID,
			EffectiveQuantity: eff,
			PreviousStock:     p.CurrentStock,
			NewStock:          next,
			Delta:             next.Sub(p.CurrentStock),
		})
	}
	return out, nil
}

// IsReversible indica si borrar un asiento de este tipo revierte su efecto.
// Los ajustes son correcciones de registro y no se deshacen.
func IsReversible(movementType string) bool {
	return movementType == entity.MovementTypeIN || movementType == entity.MovementTypeOUT
}

// PlanReversal calcula la mutación inversa de un asiento a partir del stock actual de los
// productos, restando el delta registrado y acotando a cero. Los productos que ya no existen
// se omiten. Para ADJUSTMENT devuelve nil.
func PlanReversal(e *entity.StockEntry, productsByID map[string]*entity.Product) []AppliedDelta {
	if !IsReversible(e.Type) {
		return nil
	}
	out := make([]AppliedDelta, 0, len(e.Items))
	for _, it := range e.Items {
		p, ok := productsByID[it.ProductID]
		if !ok {
			continue
		}
		delta := it.AppliedDelta
		if delta.IsZero() {
			// asientos sin delta registrado: se deduce de la cantidad efectiva
			delta = it.EffectiveQuantity
			if e.Type == entity.MovementTypeOUT {
				delta = delta.Neg()
			}
		}
		next := snapStock(p, p.CurrentStock.Sub(delta))
		if next.IsNegative() {
			next = decimal.Zero
		}
		out = append(out, AppliedDelta{
			ProductID:         p.ID,
			EffectiveQuantity: it.EffectiveQuantity,
			PreviousStock:     p.CurrentStock,
			NewStock:          next,
			Delta:             next.Sub(p.CurrentStock),
		})
	}
	return out
}
