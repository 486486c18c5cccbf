package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gst-shop-api/internal/application/auth"
	"github.com/jhoicas/gst-shop-api/internal/application/billing"
	"github.com/jhoicas/gst-shop-api/internal/application/inventory"
	"github.com/jhoicas/gst-shop-api/internal/application/usecase"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	UserUC    *usecase.UserUseCase
	ProductUC *usecase.ProductUseCase
	LedgerUC  *inventory.StockLedgerUseCase
	PartyUC   *billing.PartyUseCase
	BillUC    *billing.BillUseCase
	JWTSecret string
	// RateLimit se aplica a login y a las rutas de escritura. nil = sin límite.
	RateLimit fiber.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	limit := deps.RateLimit
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}
	writers := RequireRole(entity.RoleAdmin, entity.RoleOperator)
	admin := RequireRole(entity.RoleAdmin)

	api := app.Group("/api")

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	api.Post("/auth/login", limit, authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/register", limit, admin, authHandler.Register)
	protected.Get("/users", admin, authHandler.ListUsers)
	protected.Get("/users/:id", admin, authHandler.GetUser)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.LedgerUC)
	products.Post("/", limit, writers, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", limit, writers, productHandler.Update)
	products.Put("/:id/stock", limit, admin, productHandler.OverrideStock)
	products.Get("/:id/history", productHandler.History)

	// Libro de stock
	entries := protected.Group("/stock/entries")
	stockHandler := NewStockHandler(deps.LedgerUC)
	entries.Post("/", limit, writers, stockHandler.CreateEntry)
	entries.Get("/", stockHandler.ListEntries)
	entries.Get("/:id", stockHandler.GetEntry)
	entries.Delete("/:id", limit, admin, stockHandler.DeleteEntry)

	// Clientes
	parties := protected.Group("/parties")
	partyHandler := NewPartyHandler(deps.PartyUC)
	parties.Post("/", limit, writers, partyHandler.Create)
	parties.Get("/", partyHandler.List)
	parties.Get("/:id", partyHandler.GetByID)
	parties.Put("/:id", limit, writers, partyHandler.Update)

	// Facturas
	bills := protected.Group("/bills")
	billHandler := NewBillHandler(deps.BillUC)
	bills.Post("/", limit, writers, billHandler.Create)
	bills.Get("/", billHandler.List)
	bills.Get("/:id", billHandler.GetByID)
	bills.Delete("/:id", limit, admin, billHandler.Delete)
}
