package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
)

// Item línea de un movimiento tal como llega del cliente.
type Item struct {
	ProductID string
	Quantity  decimal.Decimal
	IsSubUnit bool
}

// ValidateShape revisa la forma del movimiento sin consultar productos: tipo conocido,
// al menos una línea, ids no vacíos, cantidades válidas y ningún producto repetido.
func ValidateShape(movementType string, items []Item) error {
	if !entity.IsValidMovementType(movementType) {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("tipo de movimiento desconocido %q", movementType)}
	}
	if len(items) == 0 {
		return &ValidationError{Field: "items", Reason: "se requiere al menos una línea"}
	}
	for i, it := range items {
		if it.ProductID == "" {
			return &ValidationError{Field: fmt.Sprintf("items[%d].product_id", i), Reason: "requerido"}
		}
		if movementType == entity.MovementTypeADJUSTMENT {
			if it.Quantity.IsNegative() {
				return &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Reason: "no puede ser negativa"}
			}
			continue
		}
		if !it.Quantity.IsPositive() {
			return &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Reason: "debe ser mayor que cero"}
		}
	}
	return CheckDuplicates(items)
}

// CheckDuplicates rechaza movimientos donde un producto aparece dos veces.
func CheckDuplicates(items []Item) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			return &DuplicateProductError{ProductID: it.ProductID}
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

// ProductIDs ids referenciados por las líneas, en orden y sin repetir.
func ProductIDs(items []Item) []string {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}

// ValidateMovement valida el movimiento completo contra los productos cargados.
// Todas las comprobaciones ocurren antes de cualquier mutación; no modifica nada.
func ValidateMovement(movementType string, items []Item, productsByID map[string]*entity.Product) error {
	if err := ValidateShape(movementType, items); err != nil {
		return err
	}

	var missing []string
	for _, it := range items {
		if _, ok := productsByID[it.ProductID]; !ok {
			missing = append(missing, it.ProductID)
		}
	}
	if len(missing) > 0 {
		return &ProductNotFoundError{IDs: missing}
	}

	for _, it := range items {
		p := productsByID[it.ProductID]
		eff, err := ToMainUnitQuantity(p, it.Quantity, it.IsSubUnit)
		if err != nil {
			return err
		}
		if movementType != entity.MovementTypeOUT {
			continue
		}
		available, requested := stockAndRequest(p, it.Quantity, it.IsSubUnit)
		if available.LessThan(requested) {
			e := &InsufficientStockError{
				ProductID:         p.ID,
				ProductName:       p.Name,
				Unit:              p.Unit,
				CurrentStock:      p.CurrentStock,
				RequestedQuantity: eff,
			}
			if it.IsSubUnit {
				e.IsSubUnit = true
				e.SubUnitQuantity = it.Quantity
				e.SubUnit = p.SubUnit.Unit
				e.ConversionRate = p.SubUnit.ConversionRate
			}
			return e
		}
	}
	return nil
}
