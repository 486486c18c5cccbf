// seed prepara una base nueva: aplica el esquema, crea el primer ADMIN (ADMIN_EMAIL /
// ADMIN_PASSWORD) y opcionalmente carga el catálogo de productos desde un CSV.
//
// Uso: go run ./cmd/seed [-products catalogo.csv] [-charset windows-1252]
// Columnas del CSV: sku,name,unit (obligatorias) y hsn_code,price,gst_rate,initial_stock,
// sub_unit,conversion_rate,low_stock_threshold.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/gst-shop-api/internal/application/auth"
	"github.com/jhoicas/gst-shop-api/internal/application/dto"
	"github.com/jhoicas/gst-shop-api/internal/application/usecase"
	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/infrastructure/catalog"
	"github.com/jhoicas/gst-shop-api/internal/infrastructure/postgres"
	"github.com/jhoicas/gst-shop-api/pkg/config"
	"github.com/jhoicas/gst-shop-api/pkg/logger"
)

func main() {
	productsPath := flag.String("products", "", "CSV con el catálogo inicial")
	charset := flag.String("charset", "utf-8", "codificación del CSV: utf-8, windows-1252, iso-8859-1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}
	log.Info().Msg("esquema aplicado")

	if err := seedAdmin(ctx, cfg, postgres.NewUserRepository(pool), log); err != nil {
		log.Fatal().Err(err).Msg("crear administrador")
	}

	if *productsPath == "" {
		return
	}
	if err := seedProducts(ctx, *productsPath, *charset, usecase.NewProductUseCase(postgres.NewProductRepository(pool), log), log); err != nil {
		log.Fatal().Err(err).Msg("cargar catálogo")
	}
}

func seedAdmin(ctx context.Context, cfg *config.Config, users *postgres.UserRepo, log *logger.Logger) error {
	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		log.Warn().Msg("ADMIN_EMAIL o ADMIN_PASSWORD vacíos: no se crea administrador")
		return nil
	}
	uc := auth.NewAuthUseCase(users, auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer})
	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		Name:     cfg.Seed.AdminName,
		Role:     entity.RoleAdmin,
	})
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		log.Info().Str("email", cfg.Seed.AdminEmail).Msg("el administrador ya existe")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("administrador creado")
	return nil
}

func seedProducts(ctx context.Context, path, charset string, uc *usecase.ProductUseCase, log *logger.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reqs, err := catalog.ParseProducts(f, charset)
	if err != nil {
		return err
	}
	var created, skipped int
	for _, req := range reqs {
		_, err := uc.Create(ctx, req)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
		default:
			return fmt.Errorf("producto %s: %w", req.SKU, err)
		}
	}
	log.Info().Int("created", created).Int("skipped", skipped).Str("file", path).Msg("catálogo cargado")
	return nil
}
