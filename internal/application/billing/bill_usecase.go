package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/gst-shop-api/internal/application/dto"
	"github.com/jhoicas/gst-shop-api/internal/application/inventory"
	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/domain/gst"
	"github.com/jhoicas/gst-shop-api/internal/domain/ledger"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
	"github.com/jhoicas/gst-shop-api/pkg/logger"
)

var tracer = otel.Tracer("gst-shop-api/billing")

var hundred = decimal.NewFromInt(100)

// BillUseCase crea facturas GST y descuenta el stock en una sola transacción.
type BillUseCase struct {
	txRunner  BillingTxRunner
	ledger    StockLedger
	partyRepo repository.PartyRepository
	billRepo  repository.BillRepository
	shop      ShopProfile
	log       *logger.Logger
	now       func() time.Time
}

// NewBillUseCase construye el caso de uso.
func NewBillUseCase(
	txRunner BillingTxRunner,
	ledger StockLedger,
	partyRepo repository.PartyRepository,
	billRepo repository.BillRepository,
	shop ShopProfile,
	log *logger.Logger,
) *BillUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &BillUseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		partyRepo: partyRepo,
		billRepo:  billRepo,
		shop:      shop,
		log:       log.Component("billing"),
		now:       time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *BillUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// CreateBill registra la salida de stock (asiento OUT ligado a la factura), calcula GST por
// línea y guarda cabecera y líneas. Si falta stock para cualquier línea no se crea nada.
func (uc *BillUseCase) CreateBill(ctx context.Context, userID string, in dto.CreateBillRequest) (*dto.BillResponse, error) {
	if in.PartyID == "" {
		return nil, &ledger.ValidationError{Field: "party_id", Reason: "requerido"}
	}
	items := make([]ledger.Item, 0, len(in.Items))
	for i, it := range in.Items {
		if it.DiscountPercent.IsNegative() || it.DiscountPercent.GreaterThan(hundred) {
			return nil, &ledger.ValidationError{Field: fmt.Sprintf("items[%d].discount_percent", i), Reason: "debe estar entre 0 y 100"}
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, &ledger.ValidationError{Field: fmt.Sprintf("items[%d].unit_price", i), Reason: "no puede ser negativo"}
		}
		items = append(items, ledger.Item{ProductID: it.ProductID, Quantity: it.Quantity, IsSubUnit: it.IsSubUnit})
	}
	if err := ledger.ValidateShape(entity.MovementTypeOUT, items); err != nil {
		return nil, err
	}

	party, err := uc.partyRepo.GetByID(ctx, in.PartyID)
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, in.PartyID)
	}
	interState := gst.IsInterState(uc.shop.StateCode, party.StateCode)

	ctx, span := tracer.Start(ctx, "billing.create_bill", trace.WithAttributes(
		attribute.String("billing.party_id", party.ID),
		attribute.Int("billing.items", len(items)),
		attribute.Bool("billing.inter_state", interState),
	))
	defer span.End()

	now := uc.now()
	billID := uuid.New().String()
	var bill *entity.Bill

	err = uc.txRunner.RunBilling(ctx, func(
		ctx context.Context,
		entryRepo repository.StockEntryRepository,
		productRepo repository.ProductRepository,
		billRepo repository.BillRepository,
	) error {
		// 1) Salida de stock por el motor del libro: bloquea, valida y aplica todas las líneas.
		entry, err := uc.ledger.ApplyInTx(ctx, entryRepo, productRepo, inventory.MovementInput{
			Type:   entity.MovementTypeOUT,
			Items:  items,
			Notes:  "factura " + billID,
			BillID: billID,
			UserID: userID,
		})
		if err != nil {
			return err
		}

		// 2) Productos (ya bloqueados) para precio, HSN y tasa
		products, err := productRepo.FindByIDs(ctx, ledger.ProductIDs(items))
		if err != nil {
			return fmt.Errorf("cargar productos: %w", err)
		}
		byID := make(map[string]*entity.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		// 3) Líneas y totales GST
		lines := make([]gst.Line, 0, len(in.Items))
		billItems := make([]entity.BillItem, 0, len(in.Items))
		for _, it := range in.Items {
			p := byID[it.ProductID]
			price, gross, err := linePricing(p, it)
			if err != nil {
				return err
			}
			line := gst.ComputeLineFromGross(gross, it.DiscountPercent, p.GSTRate, interState)
			lines = append(lines, line)
			billItems = append(billItems, entity.BillItem{
				ProductID:       p.ID,
				ProductName:     p.Name,
				HSNCode:         p.HSNCode,
				Quantity:        it.Quantity,
				IsSubUnit:       it.IsSubUnit,
				UnitPrice:       price,
				DiscountPercent: it.DiscountPercent,
				TaxableAmount:   line.Taxable,
				GSTRate:         p.GSTRate,
				CGST:            line.CGST,
				SGST:            line.SGST,
				IGST:            line.IGST,
				Total:           line.Total,
			})
		}
		totals := gst.Summarize(lines)

		// 4) Consecutivo y cabecera
		seq, err := billRepo.NextNumber(ctx)
		if err != nil {
			return fmt.Errorf("consecutivo de factura: %w", err)
		}
		bill = &entity.Bill{
			ID:            billID,
			Number:        FormatBillNumber(uc.shop.BillPrefix, seq),
			PartyID:       party.ID,
			Date:          now,
			IsInterState:  interState,
			TaxableAmount: totals.Taxable,
			CGST:          totals.CGST,
			SGST:          totals.SGST,
			IGST:          totals.IGST,
			TotalTax:      totals.TotalTax,
			RoundOff:      totals.RoundOff,
			GrandTotal:    totals.GrandTotal,
			Notes:         in.Notes,
			StockEntryID:  entry.ID,
			CreatedBy:     userID,
			Items:         billItems,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := billRepo.Create(ctx, bill); err != nil {
			return fmt.Errorf("guardar factura: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.log.Info().
		Str("bill_id", bill.ID).
		Str("number", bill.Number).
		Str("party_id", party.ID).
		Str("grand_total", bill.GrandTotal.StringFixed(2)).
		Msg("factura creada")
	return toBillResponse(bill, party), nil
}

// linePricing precio unitario de la línea y su importe bruto (cantidad x precio). Un
// unit_price explícito manda aunque sea cero. Sin él se usa el precio del producto; en
// sub-unidades el bruto se calcula como cantidad x precio / tasa antes de redondear, así 6
// piezas de una caja de 6 suman exactamente el precio de la caja.
func linePricing(p *entity.Product, it dto.BillItemRequest) (unit, gross decimal.Decimal, err error) {
	if it.UnitPrice != nil {
		return *it.UnitPrice, it.Quantity.Mul(*it.UnitPrice), nil
	}
	if !it.IsSubUnit {
		return p.Price, it.Quantity.Mul(p.Price), nil
	}
	if _, err := ledger.ToMainUnitQuantity(p, decimal.NewFromInt(1), true); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	rate := p.SubUnit.ConversionRate
	return p.Price.Div(rate).Round(2), it.Quantity.Mul(p.Price).Div(rate), nil
}

// FormatBillNumber prefijo + consecutivo con 5 dígitos (INV00042).
func FormatBillNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s%05d", prefix, seq)
}

// GetBill obtiene una factura con sus líneas.
func (uc *BillUseCase) GetBill(ctx context.Context, id string) (*dto.BillResponse, error) {
	bill, err := uc.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, domain.ErrNotFound
	}
	party, err := uc.partyRepo.GetByID(ctx, bill.PartyID)
	if err != nil {
		return nil, err
	}
	return toBillResponse(bill, party), nil
}

// ListBills lista facturas por cliente y rango de fechas.
func (uc *BillUseCase) ListBills(ctx context.Context, filter repository.BillFilter) (*dto.BillListResponse, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, &ledger.ValidationError{Field: "to", Reason: "debe ser posterior a from"}
	}
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset

	bills, total, err := uc.billRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.BillListResponse{
		Items: make([]dto.BillResponse, 0, len(bills)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, b := range bills {
		out.Items = append(out.Items, *toBillResponse(b, nil))
	}
	return out, nil
}

// DeleteBill anula la factura y revierte su asiento de stock en la misma transacción.
func (uc *BillUseCase) DeleteBill(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "billing.delete_bill", trace.WithAttributes(attribute.String("billing.bill_id", id)))
	defer span.End()

	var number string
	err := uc.txRunner.RunBilling(ctx, func(
		ctx context.Context,
		entryRepo repository.StockEntryRepository,
		productRepo repository.ProductRepository,
		billRepo repository.BillRepository,
	) error {
		bill, err := billRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("cargar factura: %w", err)
		}
		if bill == nil {
			return domain.ErrNotFound
		}
		number = bill.Number
		// primero la factura: bills.stock_entry_id referencia al asiento
		if err := billRepo.Delete(ctx, id); err != nil {
			return err
		}
		entry, err := entryRepo.GetByID(ctx, bill.StockEntryID)
		if err != nil {
			return fmt.Errorf("cargar asiento: %w", err)
		}
		if entry == nil {
			return nil
		}
		_, err = uc.ledger.RevertInTx(ctx, entryRepo, productRepo, entry)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	uc.log.Info().Str("bill_id", id).Str("number", number).Msg("factura anulada")
	return nil
}

func toBillResponse(b *entity.Bill, party *entity.Party) *dto.BillResponse {
	out := &dto.BillResponse{
		ID:            b.ID,
		Number:        b.Number,
		PartyID:       b.PartyID,
		Date:          b.Date.Format("2006-01-02"),
		IsInterState:  b.IsInterState,
		TaxableAmount: b.TaxableAmount,
		CGST:          b.CGST,
		SGST:          b.SGST,
		IGST:          b.IGST,
		TotalTax:      b.TotalTax,
		RoundOff:      b.RoundOff,
		GrandTotal:    b.GrandTotal,
		Notes:         b.Notes,
		StockEntryID:  b.StockEntryID,
		Items:         make([]dto.BillItemResponse, 0, len(b.Items)),
	}
	if party != nil {
		out.PartyName = party.Name
	}
	for _, it := range b.Items {
		out.Items = append(out.Items, dto.BillItemResponse{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			HSNCode:         it.HSNCode,
			Quantity:        it.Quantity,
			IsSubUnit:       it.IsSubUnit,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			TaxableAmount:   it.TaxableAmount,
			GSTRate:         it.GSTRate,
			CGST:            it.CGST,
			SGST:            it.SGST,
			IGST:            it.IGST,
			Total:           it.Total,
		})
	}
	return out
}
