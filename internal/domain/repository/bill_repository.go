package repository

import (
	"context"
	"time"

	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
)

// BillFilter filtros del listado de facturas.
type BillFilter struct {
	PartyID string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// BillRepository define el puerto de persistencia para facturas GST y sus líneas.
type BillRepository interface {
	// NextNumber devuelve el siguiente consecutivo de factura.
	NextNumber(ctx context.Context) (int64, error)
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, bill *entity.Bill) error
	// GetByID devuelve la factura con sus líneas, (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Bill, error)
	List(ctx context.Context, filter BillFilter) ([]*entity.Bill, int, error)
	Delete(ctx context.Context, id string) error
}
