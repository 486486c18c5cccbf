package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
)

var _ repository.PartyRepository = (*PartyRepo)(nil)

const partySelect = `
	SELECT id, name, phone, email, address, gstin, state_code, created_at, updated_at
	FROM parties`

// PartyRepo implementación del puerto PartyRepository sobre PostgreSQL.
type PartyRepo struct {
	q Querier
}

// NewPartyRepository construye el adaptador de persistencia para clientes.
func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *PartyRepo) Create(ctx context.Context, p *entity.Party) error {
	query := `
		INSERT INTO parties (id, name, phone, email, address, gstin, state_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Phone, p.Email, p.Address, p.GSTIN, p.StateCode, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert party: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *PartyRepo) GetByID(ctx context.Context, id string) (*entity.Party, error) {
	return r.scanOne(r.q.QueryRow(ctx, partySelect+` WHERE id = $1`, id))
}

// GetByGSTIN obtiene un cliente por GSTIN.
func (r *PartyRepo) GetByGSTIN(ctx context.Context, gstin string) (*entity.Party, error) {
	return r.scanOne(r.q.QueryRow(ctx, partySelect+` WHERE gstin = $1 AND gstin <> ''`, gstin))
}

// List lista clientes por nombre; search filtra por nombre, GSTIN o teléfono.
func (r *PartyRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Party, error) {
	query := partySelect + `
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR gstin ILIKE '%' || $1 || '%' OR phone LIKE '%' || $1 || '%'
		ORDER BY name, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	defer rows.Close()
	var list []*entity.Party
	for rows.Next() {
		var p entity.Party
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.Address, &p.GSTIN, &p.StateCode, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Update actualiza los datos del cliente.
func (r *PartyRepo) Update(ctx context.Context, p *entity.Party) error {
	query := `
		UPDATE parties
		SET name = $2, phone = $3, email = $4, address = $5, gstin = $6, state_code = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Phone, p.Email, p.Address, p.GSTIN, p.StateCode, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update party: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PartyRepo) scanOne(row pgx.Row) (*entity.Party, error) {
	var p entity.Party
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.Address, &p.GSTIN, &p.StateCode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get party: %w", err)
	}
	return &p, nil
}
