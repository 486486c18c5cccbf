package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "s3cr3t")

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StorageDriverPostgres, cfg.App.StorageDriver)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 60, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "INV", cfg.Shop.BillPrefix)
}

func TestFromViper_StateCodeDesdeGSTIN(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "x")
	v.Set("SHOP_GSTIN", "27aapfu0939f1zv")
	v.Set("DB_PORT", "6543")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "27AAPFU0939F1ZV", cfg.Shop.GSTIN)
	assert.Equal(t, "27", cfg.Shop.StateCode)
	assert.Equal(t, 6543, cfg.DB.Port)
}

func TestFromViper_SecretObligatorio(t *testing.T) {
	_, err := FromViper(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestFromViper_DriverDesconocido(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "x")
	v.Set("STORAGE_DRIVER", "mongo")
	_, err := FromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w", DBName: "shop", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw@db:5432/shop?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestFromViper_PoolDeConexiones(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "x")
	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.DB.MinConns)
	assert.Equal(t, time.Hour, cfg.DB.MaxConnLifetime)
	assert.Equal(t, 30*time.Minute, cfg.DB.MaxConnIdleTime)
	assert.False(t, cfg.DB.PreferIPv4)

	v.Set("DB_MAX_CONNS", "4")
	v.Set("DB_MIN_CONNS", "5")
	_, err = FromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MIN_CONNS")
}
