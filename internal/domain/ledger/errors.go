package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gst-shop-api/internal/domain"
)

// ValidationError entrada mal formada. Se compara con errors.Is(err, domain.ErrInvalidInput).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", domain.ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", domain.ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

// Details datos para la respuesta de error.
func (e *ValidationError) Details() map[string]any {
	return map[string]any{"field": e.Field, "reason": e.Reason}
}

// ProductNotFoundError uno o más productos referenciados no existen.
type ProductNotFoundError struct {
	IDs []string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", domain.ErrProductNotFound, strings.Join(e.IDs, ", "))
}

func (e *ProductNotFoundError) Unwrap() error { return domain.ErrProductNotFound }

func (e *ProductNotFoundError) Details() map[string]any {
	return map[string]any{"missing_product_ids": e.IDs}
}

// DuplicateProductError el mismo producto aparece en más de una línea.
type DuplicateProductError struct {
	ProductID string
}

func (e *DuplicateProductError) Error() string {
	return fmt.Sprintf("%s: %s", domain.ErrDuplicateProduct, e.ProductID)
}

func (e *DuplicateProductError) Unwrap() error { return domain.ErrDuplicateProduct }

func (e *DuplicateProductError) Details() map[string]any {
	return map[string]any{"product_id": e.ProductID}
}

// InsufficientStockError una salida dejaría el stock por debajo de cero.
// Lleva lo necesario para que el cliente arme el mensaje sin recalcular.
type InsufficientStockError struct {
	ProductID         string
	ProductName       string
	Unit              string
	CurrentStock      decimal.Decimal
	RequestedQuantity decimal.Decimal // en unidad principal
	IsSubUnit         bool
	SubUnitQuantity   decimal.Decimal
	SubUnit           string
	ConversionRate    decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	if e.IsSubUnit {
		return fmt.Sprintf("%s: %s (%s) disponible %s %s, solicitado %s %s (= %s %s, 1 %s = %s %s)",
			domain.ErrInsufficientStock, e.ProductName, e.ProductID,
			e.CurrentStock.String(), e.Unit,
			e.SubUnitQuantity.String(), e.SubUnit,
			e.RequestedQuantity.String(), e.Unit,
			e.Unit, e.ConversionRate.String(), e.SubUnit)
	}
	return fmt.Sprintf("%s: %s (%s) disponible %s %s, solicitado %s %s",
		domain.ErrInsufficientStock, e.ProductName, e.ProductID,
		e.CurrentStock.String(), e.Unit, e.RequestedQuantity.String(), e.Unit)
}

func (e *InsufficientStockError) Unwrap() error { return domain.ErrInsufficientStock }

func (e *InsufficientStockError) Details() map[string]any {
	d := map[string]any{
		"product_id":         e.ProductID,
		"product_name":       e.ProductName,
		"unit":               e.Unit,
		"current_stock":      e.CurrentStock,
		"requested_quantity": e.RequestedQuantity,
	}
	if e.IsSubUnit {
		d["sub_unit"] = e.SubUnit
		d["sub_unit_quantity"] = e.SubUnitQuantity
		d["conversion_rate"] = e.ConversionRate
	}
	return d
}
