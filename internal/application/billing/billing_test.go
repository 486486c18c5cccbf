package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gst-shop-api/internal/application/billing"
	"github.com/jhoicas/gst-shop-api/internal/application/dto"
	"github.com/jhoicas/gst-shop-api/internal/application/inventory"
	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
	"github.com/jhoicas/gst-shop-api/internal/infrastructure/memory"
	"github.com/jhoicas/gst-shop-api/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type env struct {
	store   *memory.Store
	ledger  *inventory.StockLedgerUseCase
	bills   *billing.BillUseCase
	parties *billing.PartyUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	ledgerUC := inventory.NewStockLedgerUseCase(runner, store.StockEntries(), store.Products(), logger.Nop())
	billUC := billing.NewBillUseCase(runner, ledgerUC, store.Parties(), store.Bills(),
		billing.ShopProfile{StateCode: "29", BillPrefix: "INV"}, logger.Nop())
	billUC.SetClock(func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) })

	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "pipe", SKU: "PVC-1", Name: "Tubo PVC", HSNCode: "3917", Unit: entity.UnitBoxes,
		HasSubUnit: true, SubUnit: &entity.SubUnit{Unit: entity.UnitPipes, ConversionRate: d("12")},
		CurrentStock: d("10"), Price: d("120"), GSTRate: d("18"),
	}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "cement", SKU: "CEM-50", Name: "Cemento 50kg", HSNCode: "2523", Unit: entity.UnitBags,
		CurrentStock: d("5"), Price: d("400"), GSTRate: d("28"),
	}))
	return &env{store: store, ledger: ledgerUC, bills: billUC, parties: billing.NewPartyUseCase(store.Parties())}
}

func (e *env) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	p, err := e.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.CurrentStock
}

func (e *env) party(t *testing.T, gstin string) string {
	t.Helper()
	p, err := e.parties.Create(context.Background(), dto.CreatePartyRequest{Name: "Ferretería " + gstin, GSTIN: gstin})
	require.NoError(t, err)
	return p.ID
}

func TestCreateBill_IntraStateSplitsTax(t *testing.T) {
	e := newEnv(t)
	partyID := e.party(t, "29ABCDE1234F1Z5")

	bill, err := e.bills.CreateBill(context.Background(), "u1", dto.CreateBillRequest{
		PartyID: partyID,
		Items: []dto.BillItemRequest{
			{ProductID: "pipe", Quantity: d("2"), DiscountPercent: d("10")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV00001", bill.Number)
	assert.False(t, bill.IsInterState)
	assert.Equal(t, "2026-08-01", bill.Date)
	assert.Equal(t, "216", bill.TaxableAmount.String())
	assert.Equal(t, "19.44", bill.CGST.String())
	assert.Equal(t, "19.44", bill.SGST.String())
	assert.True(t, bill.IGST.IsZero())
	assert.Equal(t, "255", bill.GrandTotal.String())
	assert.Equal(t, "0.12", bill.RoundOff.String())
	require.Len(t, bill.Items, 1)
	assert.Equal(t, "3917", bill.Items[0].HSNCode)

	assert.True(t, e.stock(t, "pipe").Equal(d("8")))
	entry, err := e.ledger.GetEntry(context.Background(), bill.StockEntryID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeOUT, entry.Type)
	assert.Equal(t, entry.BillID, bill.ID)
}

func TestCreateBill_InterStateUsesIGSTAndSubUnitPrice(t *testing.T) {
	e := newEnv(t)
	partyID := e.party(t, "27AAPFU0939F1ZV")

	bill, err := e.bills.CreateBill(context.Background(), "u1", dto.CreateBillRequest{
		PartyID: partyID,
		Items: []dto.BillItemRequest{
			{ProductID: "pipe", Quantity: d("6"), IsSubUnit: true},
			{ProductID: "cement", Quantity: d("1")},
		},
	})
	require.NoError(t, err)

	assert.True(t, bill.IsInterState)
	assert.True(t, bill.CGST.IsZero())
	assert.True(t, bill.SGST.IsZero())
	// 6 tubos a 10.00 = 60.00 (IGST 10.80) + 1 saco 400.00 (IGST 112.00)
	assert.Equal(t, "10", bill.Items[0].UnitPrice.String())
	assert.Equal(t, "460", bill.TaxableAmount.String())
	assert.Equal(t, "122.8", bill.IGST.String())
	assert.Equal(t, "583", bill.GrandTotal.String())

	assert.True(t, e.stock(t, "pipe").Equal(d("9.5")))
	assert.True(t, e.stock(t, "cement").Equal(d("4")))
}

func TestCreateBill_SubUnitLinesAddUpToBoxPrice(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.store.Products().Create(context.Background(), &entity.Product{
		ID: "pack", SKU: "PK-6", Name: "Pack 6", Unit: entity.UnitBoxes,
		HasSubUnit: true, SubUnit: &entity.SubUnit{Unit: entity.UnitPieces, ConversionRate: d("6")},
		CurrentStock: d("1"), Price: d("100"), GSTRate: d("0"),
	}))
	partyID := e.party(t, "29ABCDE1234F1Z5")

	bill, err := e.bills.CreateBill(context.Background(), "u1", dto.CreateBillRequest{
		PartyID: partyID,
		Items:   []dto.BillItemRequest{{ProductID: "pack", Quantity: d("6"), IsSubUnit: true}},
	})
	require.NoError(t, err)

	assert.Equal(t, "16.67", bill.Items[0].UnitPrice.String())
	assert.Equal(t, "100", bill.Items[0].TaxableAmount.String())
	assert.Equal(t, "100", bill.GrandTotal.String())
	assert.True(t, e.stock(t, "pack").IsZero())
}

func TestCreateBill_ExplicitZeroPriceIsFree(t *testing.T) {
	e := newEnv(t)
	partyID := e.party(t, "29ABCDE1234F1Z5")
	zero := decimal.Zero

	bill, err := e.bills.CreateBill(context.Background(), "u1", dto.CreateBillRequest{
		PartyID: partyID,
		Items: []dto.BillItemRequest{
			{ProductID: "cement", Quantity: d("1"), UnitPrice: &zero},
		},
	})
	require.NoError(t, err)

	assert.True(t, bill.Items[0].UnitPrice.IsZero())
	assert.True(t, bill.TaxableAmount.IsZero())
	assert.True(t, bill.GrandTotal.IsZero())
	assert.True(t, e.stock(t, "cement").Equal(d("4")), "la línea gratis igual descuenta stock")
}

func TestCreateBill_InsufficientStockCreatesNothing(t *testing.T) {
	e := newEnv(t)
	partyID := e.party(t, "")

	_, err := e.bills.CreateBill(context.Background(), "u1", dto.CreateBillRequest{
		PartyID: partyID,
		Items: []dto.BillItemRequest{
			{ProductID: "pipe", Quantity: d("1")},
			{ProductID: "cement", Quantity: d("6")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, e.stock(t, "pipe").Equal(d("10")))
	assert.True(t, e.stock(t, "cement").Equal(d("5")))
	list, err := e.bills.ListBills(context.Background(), repository.BillFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	entries, err := e.ledger.ListEntries(context.Background(), repository.StockEntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries.Items)
}

func TestCreateBill_Rejections(t *testing.T) {
	e := newEnv(t)
	partyID := e.party(t, "")

	_, err := e.bills.CreateBill(context.Background(), "u1", dto.CreateBillRequest{
		PartyID: partyID,
		Items:   []dto.BillItemRequest{{ProductID: "pipe", Quantity: d("1")}, {ProductID: "pipe", Quantity: d("2")}},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateProduct)

	_, err = e.bills.CreateBill(context.Background(), "u1", dto.CreateBillRequest{
		PartyID: "ghost",
		Items:   []dto.BillItemRequest{{ProductID: "pipe", Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.bills.CreateBill(context.Background(), "u1", dto.CreateBillRequest{
		PartyID: partyID,
		Items:   []dto.BillItemRequest{{ProductID: "pipe", Quantity: d("1"), DiscountPercent: d("120")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.bills.CreateBill(context.Background(), "u1", dto.CreateBillRequest{
		PartyID: partyID,
		Items:   []dto.BillItemRequest{{ProductID: "ghost", Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.True(t, e.stock(t, "pipe").Equal(d("10")))
}

func TestCreateBill_BillInsertFailureRollsBackStock(t *testing.T) {
	e := newEnv(t)
	partyID := e.party(t, "")
	e.store.SetFault(func(op, _ string) error {
		if op == "bills.create" {
			return errors.New("insert falló")
		}
		return nil
	})

	_, err := e.bills.CreateBill(context.Background(), "u1", dto.CreateBillRequest{
		PartyID: partyID,
		Items:   []dto.BillItemRequest{{ProductID: "cement", Quantity: d("2")}},
	})
	require.Error(t, err)
	e.store.SetFault(nil)
	assert.True(t, e.stock(t, "cement").Equal(d("5")))
}

func TestDeleteBill_RevertsStock(t *testing.T) {
	e := newEnv(t)
	partyID := e.party(t, "")

	bill, err := e.bills.CreateBill(context.Background(), "u1", dto.CreateBillRequest{
		PartyID: partyID,
		Items:   []dto.BillItemRequest{{ProductID: "cement", Quantity: d("3")}},
	})
	require.NoError(t, err)
	assert.True(t, e.stock(t, "cement").Equal(d("2")))

	// el asiento de la factura no se borra directamente
	_, err = e.ledger.DeleteEntry(context.Background(), bill.StockEntryID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, e.bills.DeleteBill(context.Background(), bill.ID))
	assert.True(t, e.stock(t, "cement").Equal(d("5")))

	_, err = e.bills.GetBill(context.Background(), bill.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.ledger.GetEntry(context.Background(), bill.StockEntryID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, e.bills.DeleteBill(context.Background(), bill.ID), domain.ErrNotFound)
}

func TestBillNumbersAreSequential(t *testing.T) {
	e := newEnv(t)
	partyID := e.party(t, "")
	for i, want := range []string{"INV00001", "INV00002"} {
		bill, err := e.bills.CreateBill(context.Background(), "u1", dto.CreateBillRequest{
			PartyID: partyID,
			Items:   []dto.BillItemRequest{{ProductID: "cement", Quantity: d("1")}},
		})
		require.NoError(t, err, "factura %d", i)
		assert.Equal(t, want, bill.Number)
	}
	got, err := e.bills.GetBill(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPartyUseCase(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.parties.Create(ctx, dto.CreatePartyRequest{Name: " Sharma Traders ", GSTIN: "29abcde1234f1z5"})
	require.NoError(t, err)
	assert.Equal(t, "Sharma Traders", p.Name)
	assert.Equal(t, "29ABCDE1234F1Z5", p.GSTIN)
	assert.Equal(t, "29", p.StateCode)

	_, err = e.parties.Create(ctx, dto.CreatePartyRequest{Name: "Otro", GSTIN: "29ABCDE1234F1Z5"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = e.parties.Create(ctx, dto.CreatePartyRequest{Name: "Malo", GSTIN: "XX"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.parties.Create(ctx, dto.CreatePartyRequest{Name: "Incoherente", GSTIN: "27AAPFU0939F1ZV", StateCode: "29"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	phone := "9876543210"
	updated, err := e.parties.Update(ctx, p.ID, dto.UpdatePartyRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "29ABCDE1234F1Z5", updated.GSTIN)

	list, err := e.parties.List(ctx, "sharma", 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = e.parties.Get(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
