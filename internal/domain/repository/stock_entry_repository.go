package repository

import (
	"context"
	"time"

	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
)

// StockEntryFilter filtros del listado del libro de stock.
type StockEntryFilter struct {
	Type      string
	ProductID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockEntryRepository define el puerto de persistencia para los asientos del libro de stock.
// Los asientos no se actualizan: solo se insertan y se borran.
type StockEntryRepository interface {
	Create(ctx context.Context, entry *entity.StockEntry) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.StockEntry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter StockEntryFilter) ([]*entity.StockEntry, int, error)
}
