package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePartyRequest body para POST /api/parties.
type CreatePartyRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Email     string `json:"email" validate:"omitempty,email"`
	Address   string `json:"address" validate:"max=500"`
	GSTIN     string `json:"gstin" validate:"omitempty,len=15"`
	StateCode string `json:"state_code" validate:"omitempty,len=2,numeric"`
}

// UpdatePartyRequest body para PUT /api/parties/:id.
type UpdatePartyRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Address   *string `json:"address" validate:"omitempty,max=500"`
	GSTIN     *string `json:"gstin" validate:"omitempty,len=15"`
	StateCode *string `json:"state_code" validate:"omitempty,len=2,numeric"`
}

// PartyResponse cliente en respuestas.
type PartyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	GSTIN     string    `json:"gstin,omitempty"`
	StateCode string    `json:"state_code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateBillRequest body para POST /api/bills.
type CreateBillRequest struct {
	PartyID string            `json:"party_id" validate:"required"`
	Items   []BillItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes   string            `json:"notes" validate:"max=500"`
}

// BillItemRequest línea de factura. unit_price opcional: si falta se usa el precio del producto;
// si viene (incluso 0) manda.
type BillItemRequest struct {
	ProductID       string           `json:"product_id" validate:"required"`
	Quantity        decimal.Decimal  `json:"quantity"`
	IsSubUnit       bool             `json:"is_sub_unit"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
}

// BillItemResponse línea de factura calculada.
type BillItemResponse struct {
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	HSNCode         string          `json:"hsn_code,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	IsSubUnit       bool            `json:"is_sub_unit"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxableAmount   decimal.Decimal `json:"taxable_amount"`
	GSTRate         decimal.Decimal `json:"gst_rate"`
	CGST            decimal.Decimal `json:"cgst"`
	SGST            decimal.Decimal `json:"sgst"`
	IGST            decimal.Decimal `json:"igst"`
	Total           decimal.Decimal `json:"total"`
}

// BillResponse factura GST con detalle.
type BillResponse struct {
	ID            string             `json:"id"`
	Number        string             `json:"number"`
	PartyID       string             `json:"party_id"`
	PartyName     string             `json:"party_name,omitempty"`
	Date          string             `json:"date"`
	IsInterState  bool               `json:"is_inter_state"`
	TaxableAmount decimal.Decimal    `json:"taxable_amount"`
	CGST          decimal.Decimal    `json:"cgst"`
	SGST          decimal.Decimal    `json:"sgst"`
	IGST          decimal.Decimal    `json:"igst"`
	TotalTax      decimal.Decimal    `json:"total_tax"`
	RoundOff      decimal.Decimal    `json:"round_off"`
	GrandTotal    decimal.Decimal    `json:"grand_total"`
	Notes         string             `json:"notes,omitempty"`
	StockEntryID  string             `json:"stock_entry_id"`
	Items         []BillItemResponse `json:"items"`
}

// BillListResponse lista paginada de facturas.
type BillListResponse struct {
	Items []BillResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
