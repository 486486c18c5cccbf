package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
)

// fakeQuerier devuelve respuestas fijas y registra el SQL recibido.
type fakeQuerier struct {
	execTag pgconn.CommandTag
	execErr error
	rowVal  int64
	sqls    []string
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.sqls = append(f.sqls, sql)
	return f.execTag, f.execErr
}

func (f *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.sqls = append(f.sqls, sql)
	return nil, errors.New("no soportado")
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.sqls = append(f.sqls, sql)
	return fakeRow{v: f.rowVal}
}

type fakeRow struct{ v int64 }

func (r fakeRow) Scan(dest ...any) error {
	if p, ok := dest[0].(*int64); ok {
		*p = r.v
		return nil
	}
	return errors.New("tipo inesperado")
}

func TestHasCode(t *testing.T) {
	unique := &pgconn.PgError{Code: codeUniqueViolation}

	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", unique)))
	assert.False(t, isForeignKeyViolation(unique))
	assert.True(t, isCheckViolation(errors.New("ERROR: new row violates check (SQLSTATE 23514)")))
	assert.False(t, isCheckViolation(errors.New("connection refused")))
}

func TestRepos_MapPgErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unique en usuario", func(t *testing.T) {
		q := &fakeQuerier{execErr: &pgconn.PgError{Code: codeUniqueViolation}}
		err := NewUserRepository(q).Create(ctx, &entity.User{ID: "u1", Email: "a@b.in"})
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("check de stock", func(t *testing.T) {
		q := &fakeQuerier{execErr: &pgconn.PgError{Code: codeCheckViolation}}
		err := NewProductRepository(q).UpdateStock(ctx, "p1", decimal.NewFromInt(-1), time.Now())
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	})

	t.Run("producto inexistente", func(t *testing.T) {
		q := &fakeQuerier{execTag: pgconn.NewCommandTag("UPDATE 0")}
		err := NewProductRepository(q).UpdateStock(ctx, "p1", decimal.NewFromInt(1), time.Now())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("entrada referenciada por factura", func(t *testing.T) {
		q := &fakeQuerier{execErr: &pgconn.PgError{Code: codeForeignKeyViolation}}
		err := NewStockEntryRepository(q).Delete(ctx, "e1")
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("factura ya borrada", func(t *testing.T) {
		q := &fakeQuerier{execTag: pgconn.NewCommandTag("DELETE 0")}
		assert.ErrorIs(t, NewBillRepository(q).Delete(ctx, "b1"), domain.ErrNotFound)
	})

	t.Run("factura con parte inexistente", func(t *testing.T) {
		q := &fakeQuerier{execErr: &pgconn.PgError{Code: codeForeignKeyViolation}}
		err := NewBillRepository(q).Create(ctx, &entity.Bill{ID: "b1", Number: "INV00001"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.Len(t, q.sqls, 1)
		assert.True(t, strings.HasPrefix(q.sqls[0], "INSERT INTO bills"))
	})

	t.Run("otro error se envuelve", func(t *testing.T) {
		q := &fakeQuerier{execErr: errors.New("conn reset")}
		err := NewBillRepository(q).Delete(ctx, "b1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "delete bill")
	})
}

func TestBillRepo_NextNumber(t *testing.T) {
	q := &fakeQuerier{rowVal: 42}
	n, err := NewBillRepository(q).NextNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.Contains(t, q.sqls[0], "bill_number_seq")
}

func TestSchema(t *testing.T) {
	ddl := Schema()
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE TABLE IF NOT EXISTS stock_entries",
		"CREATE TABLE IF NOT EXISTS stock_entry_items",
		"CREATE TABLE IF NOT EXISTS bills",
		"CREATE SEQUENCE IF NOT EXISTS bill_number_seq",
	} {
		assert.Contains(t, ddl, want)
	}
}
