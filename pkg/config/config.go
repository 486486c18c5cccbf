package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Drivers de almacenamiento admitidos.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Shop      ShopConfig
	RateLimit RateLimitConfig
	Seed      SeedConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env           string // development, staging, production
	Name          string
	LogLevel      string
	StorageDriver string // postgres (por defecto) o memory
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL     string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	PreferIPv4      bool // resuelve el host a IPv4 con el resolver del sistema (contenedores sin IPv6)
	AutoMigrate     bool // aplica el esquema embebido al arrancar
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ShopConfig datos fiscales de la tienda (emisor de las facturas GST).
type ShopConfig struct {
	Name       string
	GSTIN      string
	StateCode  string // si está vacío se toma de GSTIN
	BillPrefix string
}

// RateLimitConfig límite de peticiones por IP en login y rutas de escritura.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

// SeedConfig credenciales del primer administrador (cmd/seed).
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

// FromViper construye la configuración a partir de una instancia de Viper ya cargada.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:           getString(v, "APP_ENV", "development"),
			Name:          getString(v, "APP_NAME", "gst-shop-api"),
			LogLevel:      getString(v, "LOG_LEVEL", "info"),
			StorageDriver: strings.ToLower(getString(v, "STORAGE_DRIVER", StorageDriverPostgres)),
		},
		DB: DBConfig{
			DatabaseURL:     getString(v, "DATABASE_URL", ""),
			Host:            getString(v, "DB_HOST", "localhost"),
			Port:            getInt(v, "DB_PORT", 5432),
			User:            getString(v, "DB_USER", "postgres"),
			Password:        getString(v, "DB_PASSWORD", ""),
			DBName:          getString(v, "DB_NAME", "gst_shop"),
			SSLMode:         getString(v, "DB_SSLMODE", "disable"),
			MaxConns:        getInt(v, "DB_MAX_CONNS", 25),
			MinConns:        getInt(v, "DB_MIN_CONNS", 2),
			MaxConnLifetime: time.Duration(getInt(v, "DB_MAX_CONN_LIFETIME_MINUTES", 60)) * time.Minute,
			MaxConnIdleTime: time.Duration(getInt(v, "DB_MAX_CONN_IDLE_MINUTES", 30)) * time.Minute,
			PreferIPv4:      getBool(v, "DB_PREFER_IPV4", false),
			AutoMigrate:     getBool(v, "DB_AUTO_MIGRATE", false),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "gst-shop-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Shop: ShopConfig{
			Name:       getString(v, "SHOP_NAME", "Mi Tienda"),
			GSTIN:      strings.ToUpper(getString(v, "SHOP_GSTIN", "")),
			StateCode:  getString(v, "SHOP_STATE_CODE", ""),
			BillPrefix: getString(v, "BILL_PREFIX", "INV"),
		},
		RateLimit: RateLimitConfig{
			Max:    getInt(v, "RATE_LIMIT_MAX", 60),
			Window: time.Duration(getInt(v, "RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		},
		Seed: SeedConfig{
			AdminEmail:    getString(v, "ADMIN_EMAIL", ""),
			AdminPassword: getString(v, "ADMIN_PASSWORD", ""),
			AdminName:     getString(v, "ADMIN_NAME", "Administrador"),
		},
	}
	if cfg.Shop.StateCode == "" && len(cfg.Shop.GSTIN) >= 2 {
		cfg.Shop.StateCode = cfg.Shop.GSTIN[:2]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate comprueba los valores que no tienen un default razonable.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET es obligatorio"))
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX y RATE_LIMIT_WINDOW_SECONDS deben ser positivos"))
	}
	if c.DB.MaxConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_CONNS debe ser positivo"))
	}
	if c.DB.MinConns < 0 || c.DB.MinConns > c.DB.MaxConns {
		errs = append(errs, errors.New("DB_MIN_CONNS debe estar entre 0 y DB_MAX_CONNS"))
	}
	if c.App.StorageDriver != StorageDriverPostgres && c.App.StorageDriver != StorageDriverMemory {
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER desconocido: %q", c.App.StorageDriver))
	}
	return errors.Join(errs...)
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
