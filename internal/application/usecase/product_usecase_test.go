package usecase_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gst-shop-api/internal/application/dto"
	"github.com/jhoicas/gst-shop-api/internal/application/usecase"
	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/infrastructure/memory"
	"github.com/jhoicas/gst-shop-api/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func boxReq(sku string) dto.CreateProductRequest {
	return dto.CreateProductRequest{
		SKU: sku, Name: "Bisagra " + sku, HSNCode: "8302", Unit: entity.UnitBoxes,
		HasSubUnit: true, SubUnit: &dto.SubUnitDTO{Unit: entity.UnitPieces, ConversionRate: d("24")},
		InitialStock: d("3"), Price: d("480"), GSTRate: d("18"), LowStockThreshold: d("5"),
	}
}

func TestProductCreateAndGet(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Products(), logger.Nop())
	ctx := context.Background()

	p, err := uc.Create(ctx, boxReq("HNG-1"))
	require.NoError(t, err)
	assert.True(t, p.HasSubUnit)
	assert.True(t, p.LowStock)
	require.NotNil(t, p.CurrentStockInSub)
	assert.True(t, p.CurrentStockInSub.Equal(d("72")))

	got, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "HNG-1", got.SKU)

	_, err = uc.Create(ctx, boxReq("HNG-1"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductCreate_Validation(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Products(), logger.Nop())
	ctx := context.Background()

	mutate := []struct {
		name string
		fn   func(r *dto.CreateProductRequest)
	}{
		{"unidad desconocida", func(r *dto.CreateProductRequest) { r.Unit = "DOZEN" }},
		{"sub-unidad sin flag", func(r *dto.CreateProductRequest) { r.HasSubUnit = false }},
		{"flag sin sub-unidad", func(r *dto.CreateProductRequest) { r.SubUnit = nil }},
		{"sub-unidad igual a la principal", func(r *dto.CreateProductRequest) { r.SubUnit.Unit = entity.UnitBoxes }},
		{"tasa de conversión cero", func(r *dto.CreateProductRequest) { r.SubUnit.ConversionRate = decimal.Zero }},
		{"tasa GST fuera de catálogo", func(r *dto.CreateProductRequest) { r.GSTRate = d("19") }},
		{"stock inicial negativo", func(r *dto.CreateProductRequest) { r.InitialStock = d("-1") }},
		{"sin nombre", func(r *dto.CreateProductRequest) { r.Name = "  " }},
	}
	for _, tc := range mutate {
		t.Run(tc.name, func(t *testing.T) {
			r := boxReq("X-" + tc.name)
			tc.fn(&r)
			_, err := uc.Create(ctx, r)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestProductUpdateKeepsStock(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewProductUseCase(store.Products(), logger.Nop())
	ctx := context.Background()
	p, err := uc.Create(ctx, boxReq("HNG-2"))
	require.NoError(t, err)

	price := d("500")
	updated, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.True(t, updated.CurrentStock.Equal(d("3")))

	bad := d("7")
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{GSTRate: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOverrideStockLogsAndSets(t *testing.T) {
	var buf bytes.Buffer
	uc := usecase.NewProductUseCase(memory.NewStore().Products(), logger.NewWithWriter(&buf, "info"))
	ctx := context.Background()
	p, err := uc.Create(ctx, boxReq("HNG-3"))
	require.NoError(t, err)

	out, err := uc.OverrideStock(ctx, p.ID, "admin-1", dto.OverrideStockRequest{CurrentStock: d("40"), Reason: "conteo físico"})
	require.NoError(t, err)
	assert.True(t, out.CurrentStock.Equal(d("40")))
	assert.False(t, out.LowStock)
	assert.Contains(t, buf.String(), "stock fijado manualmente")
	assert.Contains(t, buf.String(), `"actor_id":"admin-1"`)

	_, err = uc.OverrideStock(ctx, p.ID, "admin-1", dto.OverrideStockRequest{CurrentStock: d("-1"), Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductListAndLowStock(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Products(), logger.Nop())
	ctx := context.Background()
	_, err := uc.Create(ctx, boxReq("LOW-1"))
	require.NoError(t, err)
	r := boxReq("OK-1")
	r.InitialStock = d("100")
	_, err = uc.Create(ctx, r)
	require.NoError(t, err)

	all, err := uc.List(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	found, err := uc.List(ctx, "ok-", 10, 0)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "OK-1", found.Items[0].SKU)

	low, err := uc.LowStock(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, low.Items, 1)
	assert.Equal(t, "LOW-1", low.Items[0].SKU)
}
