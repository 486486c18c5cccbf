package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search       string // coincide con nombre o SKU
	LowStockOnly bool
	Limit        int
	Offset       int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// FindByIDs carga los productos existentes de ids; los ausentes simplemente no aparecen.
	FindByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	// FindByIDsForUpdate igual que FindByIDs pero bloquea las filas (SELECT ... FOR UPDATE) en orden de id.
	// Solo tiene efecto dentro de una transacción.
	FindByIDsForUpdate(ctx context.Context, ids []string) ([]*entity.Product, error)
	// Update actualiza los datos maestros; nunca toca current_stock.
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, productID string, newStock decimal.Decimal, at time.Time) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
}
