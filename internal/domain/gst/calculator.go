// Package gst implementa el cálculo de impuestos GST (India) para las líneas de factura:
// CGST + SGST dentro del mismo estado, IGST entre estados.
package gst

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)

	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	statePattern = regexp.MustCompile(`^[0-9]{2}$`)
)

// Tasas GST admitidas (porcentaje).
var validRates = []decimal.Decimal{
	decimal.Zero,
	decimal.NewFromInt(5),
	decimal.NewFromInt(12),
	decimal.NewFromInt(18),
	decimal.NewFromInt(28),
}

// IsValidRate indica si rate es una tasa GST del catálogo.
func IsValidRate(rate decimal.Decimal) bool {
	for _, r := range validRates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}

// IsValidGSTIN valida el formato de un GSTIN de 15 caracteres.
func IsValidGSTIN(gstin string) bool {
	return gstinPattern.MatchString(gstin)
}

// IsValidStateCode valida un código de estado de 2 dígitos.
func IsValidStateCode(code string) bool {
	return statePattern.MatchString(code)
}

// StateCodeFromGSTIN devuelve los 2 primeros dígitos del GSTIN (código de estado).
func StateCodeFromGSTIN(gstin string) string {
	if len(gstin) < 2 {
		return ""
	}
	return gstin[:2]
}

// IsInterState true si el cliente está en otro estado. Sin estado conocido se asume venta local.
func IsInterState(shopState, partyState string) bool {
	return partyState != "" && shopState != "" && partyState != shopState
}

// Line resultado del cálculo de una línea.
type Line struct {
	Taxable decimal.Decimal
	CGST    decimal.Decimal
	SGST    decimal.Decimal
	IGST    decimal.Decimal
	Total   decimal.Decimal
}

// Tax total de impuestos de la línea.
func (l Line) Tax() decimal.Decimal {
	return l.CGST.Add(l.SGST).Add(l.IGST)
}

// ComputeLine calcula base imponible e impuestos: base = qty * precio * (1 - descuento/100),
// redondeada a 2 decimales; impuesto = base * tasa/100. En venta local el impuesto se divide
// en CGST y SGST (SGST absorbe el centavo de redondeo).
func ComputeLine(quantity, unitPrice, discountPercent, rate decimal.Decimal, interState bool) Line {
	return ComputeLineFromGross(quantity.Mul(unitPrice), discountPercent, rate, interState)
}

// ComputeLineFromGross igual que ComputeLine pero a partir del importe bruto sin redondear.
func ComputeLineFromGross(gross, discountPercent, rate decimal.Decimal, interState bool) Line {
	if discountPercent.IsPositive() {
		gross = gross.Mul(hundred.Sub(discountPercent)).Div(hundred)
	}
	taxable := gross.Round(2)
	tax := taxable.Mul(rate).Div(hundred).Round(2)

	l := Line{Taxable: taxable}
	if interState {
		l.IGST = tax
	} else {
		l.CGST = tax.Div(two).Round(2)
		l.SGST = tax.Sub(l.CGST)
	}
	l.Total = taxable.Add(tax)
	return l
}

// Totals totales de factura.
type Totals struct {
	Taxable    decimal.Decimal
	CGST       decimal.Decimal
	SGST       decimal.Decimal
	IGST       decimal.Decimal
	TotalTax   decimal.Decimal
	RoundOff   decimal.Decimal
	GrandTotal decimal.Decimal
}

// Summarize suma las líneas y redondea el total a la rupia más cercana (RoundOff lleva la diferencia).
func Summarize(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.Taxable = t.Taxable.Add(l.Taxable)
		t.CGST = t.CGST.Add(l.CGST)
		t.SGST = t.SGST.Add(l.SGST)
		t.IGST = t.IGST.Add(l.IGST)
	}
	t.TotalTax = t.CGST.Add(t.SGST).Add(t.IGST)
	exact := t.Taxable.Add(t.TotalTax)
	t.GrandTotal = exact.Round(0)
	t.RoundOff = t.GrandTotal.Sub(exact)
	return t
}
