package inventory

import (
	"context"

	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback y ningún cambio queda persistido.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		entryRepo repository.StockEntryRepository,
		productRepo repository.ProductRepository,
	) error) error
}
