package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill cabecera de una factura GST. StockEntryID referencia el asiento OUT que descontó el stock.
type Bill struct {
	ID            string
	Number        string
	PartyID       string
	Date          time.Time
	IsInterState  bool
	TaxableAmount decimal.Decimal
	CGST          decimal.Decimal
	SGST          decimal.Decimal
	IGST          decimal.Decimal
	TotalTax      decimal.Decimal
	RoundOff      decimal.Decimal
	GrandTotal    decimal.Decimal
	Notes         string
	StockEntryID  string
	CreatedBy     string
	Items         []BillItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BillItem línea de factura. Quantity está en la unidad indicada por IsSubUnit y UnitPrice
// es el precio por esa misma unidad.
type BillItem struct {
	ProductID       string
	ProductName     string
	HSNCode         string
	Quantity        decimal.Decimal
	IsSubUnit       bool
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxableAmount   decimal.Decimal
	GSTRate         decimal.Decimal
	CGST            decimal.Decimal
	SGST            decimal.Decimal
	IGST            decimal.Decimal
	Total           decimal.Decimal
}
