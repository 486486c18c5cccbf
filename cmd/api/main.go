// @title                       gst-shop-api
// @version                     1.0
// @description                 Libro de stock, productos con sub-unidad y facturación GST de una tienda.
// @host                        localhost:8080
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/swaggo/swag"

	"github.com/jhoicas/gst-shop-api/docs"
	"github.com/jhoicas/gst-shop-api/internal/application/auth"
	"github.com/jhoicas/gst-shop-api/internal/application/billing"
	"github.com/jhoicas/gst-shop-api/internal/application/inventory"
	"github.com/jhoicas/gst-shop-api/internal/application/usecase"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
	"github.com/jhoicas/gst-shop-api/internal/infrastructure/memory"
	"github.com/jhoicas/gst-shop-api/internal/infrastructure/postgres"
	"github.com/jhoicas/gst-shop-api/internal/infrastructure/ratelimit"
	httpRouter "github.com/jhoicas/gst-shop-api/internal/interfaces/http"
	"github.com/jhoicas/gst-shop-api/pkg/config"
	"github.com/jhoicas/gst-shop-api/pkg/logger"
)

// stores repositorios y runner de transacciones del driver elegido.
type stores struct {
	users    repository.UserRepository
	products repository.ProductRepository
	entries  repository.StockEntryRepository
	parties  repository.PartyRepository
	bills    repository.BillRepository
	ledgerTx inventory.TxRunner
	billTx   billing.BillingTxRunner
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	ledgerUC := inventory.NewStockLedgerUseCase(st.ledgerTx, st.entries, st.products, log)
	productUC := usecase.NewProductUseCase(st.products, log)
	userUC := usecase.NewUserUseCase(st.users)
	partyUC := billing.NewPartyUseCase(st.parties)
	billUC := billing.NewBillUseCase(st.billTx, ledgerUC, st.parties, st.bills, billing.ShopProfile{
		StateCode:  cfg.Shop.StateCode,
		BillPrefix: cfg.Shop.BillPrefix,
	}, log)
	authUC := auth.NewAuthUseCase(st.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Contadores del limitador: en memoria del proceso, con barrido de claves vencidas.
	limiterStorage := ratelimit.NewStorage(cfg.RateLimit.Window)
	defer func() { _ = limiterStorage.Close() }()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))
	app.Use(compress.New())

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Title = cfg.App.Name
	app.Get("/swagger/doc.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(doc)
	})
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    cfg.App.Name + " API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.StorageDriver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		UserUC:    userUC,
		ProductUC: productUC,
		LedgerUC:  ledgerUC,
		PartyUC:   partyUC,
		BillUC:    billUC,
		JWTSecret: cfg.JWT.Secret,
		RateLimit: httpRouter.NewRateLimiter(limiterStorage, cfg.RateLimit.Max, cfg.RateLimit.Window),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.App.StorageDriver == config.StorageDriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		runner := memory.NewTxRunner(store)
		return &stores{
			users:    store.Users(),
			products: store.Products(),
			entries:  store.StockEntries(),
			parties:  store.Parties(),
			bills:    store.Bills(),
			ledgerTx: runner,
			billTx:   runner,
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema aplicado")
	}
	runner := postgres.NewTxRunner(pool)
	return &stores{
		users:    postgres.NewUserRepository(pool),
		products: postgres.NewProductRepository(pool),
		entries:  postgres.NewStockEntryRepository(pool),
		parties:  postgres.NewPartyRepository(pool),
		bills:    postgres.NewBillRepository(pool),
		ledgerTx: runner,
		billTx:   runner,
		close:    pool.Close,
	}, nil
}
