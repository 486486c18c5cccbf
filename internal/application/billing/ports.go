package billing

import (
	"context"

	"github.com/jhoicas/gst-shop-api/internal/application/inventory"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye repos del libro de stock y facturación.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		ctx context.Context,
		entryRepo repository.StockEntryRepository,
		productRepo repository.ProductRepository,
		billRepo repository.BillRepository,
	) error) error
}

// StockLedger interfaz para integrar facturación con el libro de stock.
// Ambos métodos usan los repositorios del caller (misma transacción); si retornan error
// (ej: ErrInsufficientStock) el caller debe hacer rollback.
type StockLedger interface {
	ApplyInTx(
		ctx context.Context,
		entryRepo repository.StockEntryRepository,
		productRepo repository.ProductRepository,
		in inventory.MovementInput,
	) (*entity.StockEntry, error)
	RevertInTx(
		ctx context.Context,
		entryRepo repository.StockEntryRepository,
		productRepo repository.ProductRepository,
		entry *entity.StockEntry,
	) (*inventory.ReversalResult, error)
}

// ShopProfile datos del emisor necesarios para facturar.
type ShopProfile struct {
	StateCode  string
	BillPrefix string
}
