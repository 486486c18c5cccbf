package repository

import (
	"context"

	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
)

// PartyRepository define el puerto de persistencia para Party (clientes de facturación).
type PartyRepository interface {
	Create(ctx context.Context, party *entity.Party) error
	GetByID(ctx context.Context, id string) (*entity.Party, error)
	GetByGSTIN(ctx context.Context, gstin string) (*entity.Party, error)
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Party, error)
	Update(ctx context.Context, party *entity.Party) error
}
