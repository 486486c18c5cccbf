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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productsTable = "products"

var productColumns = []string{
	"id", "sku", "name", "hsn_code", "unit", "has_sub_unit", "sub_unit", "conversion_rate",
	"current_stock", "price", "gst_rate", "low_stock_threshold", "created_at", "updated_at",
}

// productRow fila de products tal como la escanea pgxscan.
type productRow struct {
	ID                string              `db:"id"`
	SKU               string              `db:"sku"`
	Name              string              `db:"name"`
	HSNCode           string              `db:"hsn_code"`
	Unit              string              `db:"unit"`
	HasSubUnit        bool                `db:"has_sub_unit"`
	SubUnit           *string             `db:"sub_unit"`
	ConversionRate    decimal.NullDecimal `db:"conversion_rate"`
	CurrentStock      decimal.Decimal     `db:"current_stock"`
	Price             decimal.Decimal     `db:"price"`
	GSTRate           decimal.Decimal     `db:"gst_rate"`
	LowStockThreshold decimal.Decimal     `db:"low_stock_threshold"`
	CreatedAt         time.Time           `db:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at"`
}

func (r productRow) toEntity() *entity.Product {
	p := &entity.Product{
		ID:                r.ID,
		SKU:               r.SKU,
		Name:              r.Name,
		HSNCode:           r.HSNCode,
		Unit:              r.Unit,
		HasSubUnit:        r.HasSubUnit,
		CurrentStock:      r.CurrentStock,
		Price:             r.Price,
		GSTRate:           r.GSTRate,
		LowStockThreshold: r.LowStockThreshold,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.HasSubUnit && r.SubUnit != nil {
		p.SubUnit = &entity.SubUnit{Unit: *r.SubUnit, ConversionRate: r.ConversionRate.Decimal}
	}
	return p
}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto con su stock de apertura.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	var subUnit *string
	var rate decimal.NullDecimal
	if p.SubUnit != nil {
		subUnit = &p.SubUnit.Unit
		rate = decimal.NewNullDecimal(p.SubUnit.ConversionRate)
	}
	query := `
		INSERT INTO products (id, sku, name, hsn_code, unit, has_sub_unit, sub_unit, conversion_rate,
			current_stock, price, gst_rate, low_stock_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.Name, p.HSNCode, p.Unit, p.HasSubUnit, subUnit, rate,
		p.CurrentStock, p.Price, p.GSTRate, p.LowStockThreshold, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetBySKU obtiene un producto por SKU (sin distinguir mayúsculas).
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, squirrel.Expr("lower(sku) = lower(?)", sku))
}

func (r *ProductRepo) getOne(ctx context.Context, where squirrel.Sqlizer) (*entity.Product, error) {
	sql, args, err := psql.Select(productColumns...).From(productsTable).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var row productRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return row.toEntity(), nil
}

// FindByIDs carga los productos existentes entre ids, ordenados por id.
func (r *ProductRepo) FindByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	return r.findByIDs(ctx, ids, false)
}

// FindByIDsForUpdate bloquea las filas en orden de id para que dos movimientos concurrentes
// sobre los mismos productos no se bloqueen mutuamente.
func (r *ProductRepo) FindByIDsForUpdate(ctx context.Context, ids []string) ([]*entity.Product, error) {
	return r.findByIDs(ctx, ids, true)
}

func (r *ProductRepo) findByIDs(ctx context.Context, ids []string, lock bool) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := psql.Select(productColumns...).From(productsTable).Where(squirrel.Eq{"id": ids}).OrderBy("id")
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []productRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return toProducts(rows), nil
}

// Update actualiza datos maestros (nombre, HSN, precio, tasa, umbral). No toca stock ni unidades.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, hsn_code = $3, price = $4, gst_rate = $5, low_stock_threshold = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.Name, p.HSNCode, p.Price, p.GSTRate, p.LowStockThreshold, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock escribe el nuevo stock. La violación de products_current_stock_check se
// traduce a ErrInsufficientStock.
func (r *ProductRepo) UpdateStock(ctx context.Context, productID string, newStock decimal.Decimal, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET current_stock = $2, updated_at = $3 WHERE id = $1`,
		productID, newStock, at,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos con búsqueda por nombre/SKU y filtro de stock bajo.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	q := psql.Select(productColumns...).From(productsTable).OrderBy("name", "id")
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where(squirrel.Or{squirrel.ILike{"name": pattern}, squirrel.ILike{"sku": pattern}})
	}
	if f.LowStockOnly {
		q = q.Where("low_stock_threshold > 0 AND current_stock <= low_stock_threshold")
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []productRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return toProducts(rows), nil
}

func toProducts(rows []productRow) []*entity.Product {
	out := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out
}
