package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/gst-shop-api/internal/application/billing"
	"github.com/jhoicas/gst-shop-api/internal/application/inventory"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
)

var tracer = otel.Tracer("gst-shop-api/postgres")

// Ensure TxRunner implements inventory.TxRunner and billing.BillingTxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED; la
// serialización por producto la dan los SELECT ... FOR UPDATE).
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	entryRepo repository.StockEntryRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.inTx(ctx, "tx.ledger", func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, NewStockEntryRepository(tx), NewProductRepository(tx))
	})
}

// RunBilling inicia una transacción con repos del libro de stock y facturación (para CreateBill).
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	ctx context.Context,
	entryRepo repository.StockEntryRepository,
	productRepo repository.ProductRepository,
	billRepo repository.BillRepository,
) error) error {
	return r.inTx(ctx, "tx.billing", func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, NewStockEntryRepository(tx), NewProductRepository(tx), NewBillRepository(tx))
	})
}

func (r *TxRunner) inTx(ctx context.Context, name string, fn func(ctx context.Context, tx pgx.Tx) error) error {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("tx.isolation", string(pgx.ReadCommitted)),
	))
	defer span.End()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		span.SetStatus(codes.Error, "begin")
		return fmt.Errorf("begin transaction: %w", err)
	}
	// rollback con contexto propio: debe completarse aunque ctx se haya cancelado
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := fn(ctx, tx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rollback")
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		span.SetStatus(codes.Error, "commit")
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
