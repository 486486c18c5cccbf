package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
)

var _ repository.StockEntryRepository = (*StockEntryRepo)(nil)

const (
	stockEntriesTable    = "stock_entries"
	stockEntryItemsTable = "stock_entry_items"
)

var stockEntryColumns = []string{"id", "type", "notes", "bill_id", "created_by", "created_at", "updated_at"}

var stockEntryItemColumns = []string{
	"entry_id", "line_no", "product_id", "quantity", "is_sub_unit",
	"effective_quantity", "previous_stock", "applied_delta",
}

type stockEntryRow struct {
	ID        string    `db:"id"`
	Type      string    `db:"type"`
	Notes     string    `db:"notes"`
	BillID    *string   `db:"bill_id"`
	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type stockEntryItemRow struct {
	EntryID           string          `db:"entry_id"`
	LineNo            int             `db:"line_no"`
	ProductID         string          `db:"product_id"`
	Quantity          decimal.Decimal `db:"quantity"`
	IsSubUnit         bool            `db:"is_sub_unit"`
	EffectiveQuantity decimal.Decimal `db:"effective_quantity"`
	PreviousStock     decimal.Decimal `db:"previous_stock"`
	AppliedDelta      decimal.Decimal `db:"applied_delta"`
}

func (r stockEntryRow) toEntity() *entity.StockEntry {
	e := &entity.StockEntry{
		ID:        r.ID,
		Type:      r.Type,
		Notes:     r.Notes,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.BillID != nil {
		e.BillID = *r.BillID
	}
	return e
}

func (r stockEntryItemRow) toEntity() entity.StockEntryItem {
	return entity.StockEntryItem{
		ProductID:         r.ProductID,
		Quantity:          r.Quantity,
		IsSubUnit:         r.IsSubUnit,
		EffectiveQuantity: r.EffectiveQuantity,
		PreviousStock:     r.PreviousStock,
		AppliedDelta:      r.AppliedDelta,
	}
}

// StockEntryRepo asientos del libro de stock y sus líneas.
type StockEntryRepo struct {
	q Querier
}

// NewStockEntryRepository construye el adaptador. Pasar pool o tx (Querier); Create debe ir en tx.
func NewStockEntryRepository(q Querier) *StockEntryRepo {
	return &StockEntryRepo{q: q}
}

// Create inserta cabecera y líneas.
func (r *StockEntryRepo) Create(ctx context.Context, e *entity.StockEntry) error {
	var billID *string
	if e.BillID != "" {
		billID = &e.BillID
	}
	sql, args, err := psql.Insert(stockEntriesTable).Columns(stockEntryColumns...).
		Values(e.ID, e.Type, e.Notes, billID, e.CreatedBy, e.CreatedAt, e.UpdatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock entry: %w", err)
	}
	if len(e.Items) == 0 {
		return nil
	}

	ins := psql.Insert(stockEntryItemsTable).Columns(stockEntryItemColumns...)
	for i, it := range e.Items {
		ins = ins.Values(e.ID, i+1, it.ProductID, it.Quantity, it.IsSubUnit, it.EffectiveQuantity, it.PreviousStock, it.AppliedDelta)
	}
	sql, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert stock entry items: %w", err)
	}
	return nil
}

// GetByID obtiene el asiento con sus líneas en orden.
func (r *StockEntryRepo) GetByID(ctx context.Context, id string) (*entity.StockEntry, error) {
	sql, args, err := psql.Select(stockEntryColumns...).From(stockEntriesTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var row stockEntryRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock entry: %w", err)
	}
	entry := row.toEntity()
	items, err := r.itemsFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	entry.Items = items[id]
	return entry, nil
}

// Delete borra el asiento (las líneas caen por ON DELETE CASCADE).
func (r *StockEntryRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_entries WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete stock entry: %w", err)
	}
	// un borrado concurrente ya lo eliminó: la tx del perdedor debe abortar
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List filtra por tipo, producto y rango de fechas; el más reciente primero.
func (r *StockEntryRepo) List(ctx context.Context, f repository.StockEntryFilter) ([]*entity.StockEntry, int, error) {
	where := squirrel.And{}
	if f.Type != "" {
		where = append(where, squirrel.Eq{"type": f.Type})
	}
	if f.ProductID != "" {
		where = append(where, squirrel.Expr(
			"EXISTS (SELECT 1 FROM stock_entry_items i WHERE i.entry_id = stock_entries.id AND i.product_id = ?)", f.ProductID))
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.LtOrEq{"created_at": *f.To})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From(stockEntriesTable).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock entries: %w", err)
	}

	q := psql.Select(stockEntryColumns...).From(stockEntriesTable).Where(where).OrderBy("created_at DESC", "id")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}
	var rows []stockEntryRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list stock entries: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*entity.StockEntry, 0, len(rows))
	for _, row := range rows {
		e := row.toEntity()
		e.Items = items[row.ID]
		out = append(out, e)
	}
	return out, total, nil
}

func (r *StockEntryRepo) itemsFor(ctx context.Context, entryIDs []string) (map[string][]entity.StockEntryItem, error) {
	out := make(map[string][]entity.StockEntryItem, len(entryIDs))
	if len(entryIDs) == 0 {
		return out, nil
	}
	sql, args, err := psql.Select(stockEntryItemColumns...).From(stockEntryItemsTable).
		Where(squirrel.Eq{"entry_id": entryIDs}).OrderBy("entry_id", "line_no").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}
	var rows []stockEntryItemRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select stock entry items: %w", err)
	}
	for _, row := range rows {
		out[row.EntryID] = append(out[row.EntryID], row.toEntity())
	}
	return out, nil
}
