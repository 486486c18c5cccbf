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

var _ repository.BillRepository = (*BillRepo)(nil)

var billColumns = []string{
	"id", "number", "party_id", "bill_date", "is_inter_state", "taxable_amount", "cgst", "sgst", "igst",
	"total_tax", "round_off", "grand_total", "notes", "stock_entry_id", "created_by", "created_at", "updated_at",
}

var billItemColumns = []string{
	"bill_id", "line_no", "product_id", "product_name", "hsn_code", "quantity", "is_sub_unit", "unit_price",
	"discount_percent", "taxable_amount", "gst_rate", "cgst", "sgst", "igst", "total",
}

type billRow struct {
	ID            string          `db:"id"`
	Number        string          `db:"number"`
	PartyID       string          `db:"party_id"`
	BillDate      time.Time       `db:"bill_date"`
	IsInterState  bool            `db:"is_inter_state"`
	TaxableAmount decimal.Decimal `db:"taxable_amount"`
	CGST          decimal.Decimal `db:"cgst"`
	SGST          decimal.Decimal `db:"sgst"`
	IGST          decimal.Decimal `db:"igst"`
	TotalTax      decimal.Decimal `db:"total_tax"`
	RoundOff      decimal.Decimal `db:"round_off"`
	GrandTotal    decimal.Decimal `db:"grand_total"`
	Notes         string          `db:"notes"`
	StockEntryID  string          `db:"stock_entry_id"`
	CreatedBy     string          `db:"created_by"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type billItemRow struct {
	BillID          string          `db:"bill_id"`
	LineNo          int             `db:"line_no"`
	ProductID       string          `db:"product_id"`
	ProductName     string          `db:"product_name"`
	HSNCode         string          `db:"hsn_code"`
	Quantity        decimal.Decimal `db:"quantity"`
	IsSubUnit       bool            `db:"is_sub_unit"`
	UnitPrice       decimal.Decimal `db:"unit_price"`
	DiscountPercent decimal.Decimal `db:"discount_percent"`
	TaxableAmount   decimal.Decimal `db:"taxable_amount"`
	GSTRate         decimal.Decimal `db:"gst_rate"`
	CGST            decimal.Decimal `db:"cgst"`
	SGST            decimal.Decimal `db:"sgst"`
	IGST            decimal.Decimal `db:"igst"`
	Total           decimal.Decimal `db:"total"`
}

func (r billRow) toEntity() *entity.Bill {
	return &entity.Bill{
		ID:            r.ID,
		Number:        r.Number,
		PartyID:       r.PartyID,
		Date:          r.BillDate,
		IsInterState:  r.IsInterState,
		TaxableAmount: r.TaxableAmount,
		CGST:          r.CGST,
		SGST:          r.SGST,
		IGST:          r.IGST,
		TotalTax:      r.TotalTax,
		RoundOff:      r.RoundOff,
		GrandTotal:    r.GrandTotal,
		Notes:         r.Notes,
		StockEntryID:  r.StockEntryID,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (r billItemRow) toEntity() entity.BillItem {
	return entity.BillItem{
		ProductID:       r.ProductID,
		ProductName:     r.ProductName,
		HSNCode:         r.HSNCode,
		Quantity:        r.Quantity,
		IsSubUnit:       r.IsSubUnit,
		UnitPrice:       r.UnitPrice,
		DiscountPercent: r.DiscountPercent,
		TaxableAmount:   r.TaxableAmount,
		GSTRate:         r.GSTRate,
		CGST:            r.CGST,
		SGST:            r.SGST,
		IGST:            r.IGST,
		Total:           r.Total,
	}
}

// BillRepo facturas GST y sus líneas.
type BillRepo struct {
	q Querier
}

// NewBillRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBillRepository(q Querier) *BillRepo {
	return &BillRepo{q: q}
}

// NextNumber siguiente valor de bill_number_seq. Los huecos por rollback son esperables.
func (r *BillRepo) NextNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('bill_number_seq')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("nextval bill_number_seq: %w", err)
	}
	return n, nil
}

// Create inserta cabecera y líneas.
func (r *BillRepo) Create(ctx context.Context, b *entity.Bill) error {
	sql, args, err := psql.Insert("bills").Columns(billColumns...).Values(
		b.ID, b.Number, b.PartyID, b.Date, b.IsInterState, b.TaxableAmount, b.CGST, b.SGST, b.IGST,
		b.TotalTax, b.RoundOff, b.GrandTotal, b.Notes, b.StockEntryID, b.CreatedBy, b.CreatedAt, b.UpdatedAt,
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert bill: %w", err)
	}
	if len(b.Items) == 0 {
		return nil
	}
	ins := psql.Insert("bill_items").Columns(billItemColumns...)
	for i, it := range b.Items {
		ins = ins.Values(b.ID, i+1, it.ProductID, it.ProductName, it.HSNCode, it.Quantity, it.IsSubUnit, it.UnitPrice,
			it.DiscountPercent, it.TaxableAmount, it.GSTRate, it.CGST, it.SGST, it.IGST, it.Total)
	}
	sql, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert bill items: %w", err)
	}
	return nil
}

// GetByID obtiene la factura con sus líneas.
func (r *BillRepo) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	sql, args, err := psql.Select(billColumns...).From("bills").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var row billRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bill: %w", err)
	}
	bill := row.toEntity()

	sql, args, err = psql.Select(billItemColumns...).From("bill_items").
		Where(squirrel.Eq{"bill_id": id}).OrderBy("line_no").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}
	var items []billItemRow
	if err := pgxscan.Select(ctx, r.q, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select bill items: %w", err)
	}
	for _, it := range items {
		bill.Items = append(bill.Items, it.toEntity())
	}
	return bill, nil
}

// List cabeceras filtradas por cliente y fechas (sin líneas).
func (r *BillRepo) List(ctx context.Context, f repository.BillFilter) ([]*entity.Bill, int, error) {
	where := squirrel.And{}
	if f.PartyID != "" {
		where = append(where, squirrel.Eq{"party_id": f.PartyID})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"bill_date": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.LtOrEq{"bill_date": *f.To})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("bills").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bills: %w", err)
	}

	q := psql.Select(billColumns...).From("bills").Where(where).OrderBy("bill_date DESC", "number DESC")
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
	var rows []billRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list bills: %w", err)
	}
	out := make([]*entity.Bill, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, total, nil
}

// Delete borra la factura y sus líneas (CASCADE).
func (r *BillRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
