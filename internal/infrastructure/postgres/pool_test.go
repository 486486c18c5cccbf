package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gst-shop-api/pkg/config"
)

func TestNewPoolConfig(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db.local", Port: 5432, User: "app", Password: "x", DBName: "shop", SSLMode: "disable",
		MaxConns: 8, MinConns: 1, MaxConnLifetime: 10 * time.Minute, MaxConnIdleTime: 2 * time.Minute,
	}
	pc, err := newPoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns)
	assert.Equal(t, 10*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, 2*time.Minute, pc.MaxConnIdleTime)
	// el host no se resuelve al configurar: nada de DNS antes de conectar
	assert.Equal(t, "db.local", pc.ConnConfig.Host)
	assert.IsType(t, queryTracer{}, pc.ConnConfig.Tracer)
	assert.NotNil(t, pc.AfterConnect)
}

func TestNewPoolConfig_DatabaseURL(t *testing.T) {
	pc, err := newPoolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@pg.example:6543/gst?sslmode=disable", MaxConns: 3})
	require.NoError(t, err)
	assert.Equal(t, "pg.example", pc.ConnConfig.Host)
	assert.Equal(t, uint16(6543), pc.ConnConfig.Port)

	_, err = newPoolConfig(config.DBConfig{DatabaseURL: "postgres://%zz"})
	assert.Error(t, err)
}

func TestQueryTracer(t *testing.T) {
	assert.Equal(t, "select", sqlOperation("\n\t SELECT id FROM products"))
	assert.Equal(t, "query", sqlOperation("  "))

	qt := queryTracer{}
	ctx := qt.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "UPDATE products SET x = 1"})
	require.NotNil(t, ctx)
	assert.NotPanics(t, func() {
		qt.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("UPDATE 1")})
		qt.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{Err: context.Canceled})
	})
}
