package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fibermemory "github.com/gofiber/storage/memory/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/gst-shop-api/internal/application/auth"
	"github.com/jhoicas/gst-shop-api/internal/application/billing"
	"github.com/jhoicas/gst-shop-api/internal/application/dto"
	"github.com/jhoicas/gst-shop-api/internal/application/inventory"
	"github.com/jhoicas/gst-shop-api/internal/application/usecase"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/infrastructure/memory"
	"github.com/jhoicas/gst-shop-api/internal/infrastructure/ratelimit"
	apphttp "github.com/jhoicas/gst-shop-api/internal/interfaces/http"
	"github.com/jhoicas/gst-shop-api/pkg/logger"
)

type apiEnv struct {
	app    *fiber.App
	store  *memory.Store
	authUC *auth.AuthUseCase
}

func newAPI(t *testing.T, rateLimit fiber.Handler) *apiEnv {
	t.Helper()
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	log := logger.Nop()

	ledgerUC := inventory.NewStockLedgerUseCase(runner, store.StockEntries(), store.Products(), log)
	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	authUC.SetHashCost(bcrypt.MinCost)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Use(requestid.New())
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    authUC,
		UserUC:    usecase.NewUserUseCase(store.Users()),
		ProductUC: usecase.NewProductUseCase(store.Products(), log),
		LedgerUC:  ledgerUC,
		PartyUC:   billing.NewPartyUseCase(store.Parties()),
		BillUC: billing.NewBillUseCase(runner, ledgerUC, store.Parties(), store.Bills(),
			billing.ShopProfile{StateCode: "29", BillPrefix: "INV"}, log),
		JWTSecret: testJWTSecret,
		RateLimit: rateLimit,
	})

	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: "pipe", SKU: "PVC-1", Name: "Tubo PVC", HSNCode: "3917", Unit: entity.UnitBoxes,
		HasSubUnit: true, SubUnit: &entity.SubUnit{Unit: entity.UnitPipes, ConversionRate: decimal.NewFromInt(12)},
		CurrentStock: decimal.NewFromInt(10), Price: decimal.NewFromInt(120), GSTRate: decimal.NewFromInt(18),
	}))
	return &apiEnv{app: app, store: store, authUC: authUC}
}

// call hace la petición y decodifica el cuerpo JSON (si lo hay) en un mapa.
func (e *apiEnv) call(t *testing.T, method, path, role string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (e *apiEnv) stock(t *testing.T, id string) string {
	t.Helper()
	p, err := e.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.CurrentStock.String()
}

func entryBody(typ string, items ...map[string]any) map[string]any {
	return map[string]any{"type": typ, "items": items}
}

func item(productID, qty string, sub bool) map[string]any {
	return map[string]any{"product_id": productID, "quantity": qty, "is_sub_unit": sub}
}

func TestStockEntries_OutBySubUnitThenInsufficient(t *testing.T) {
	e := newAPI(t, nil)

	status, body := e.call(t, http.MethodPost, "/api/stock/entries", "OPERATOR", entryBody("out", item("pipe", "6", true)))
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "OUT", body["type"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "0.5", items[0].(map[string]any)["effective_quantity"])
	assert.Equal(t, "9.5", e.stock(t, "pipe"))

	status, body = e.call(t, http.MethodPost, "/api/stock/entries", "OPERATOR", entryBody("OUT", item("pipe", "20", false)))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "pipe", details["product_id"])
	assert.Equal(t, "9.5", details["current_stock"])
	assert.Equal(t, "20", details["requested_quantity"])
	assert.Equal(t, "9.5", e.stock(t, "pipe"))
}

func TestStockEntries_RolePermissions(t *testing.T) {
	e := newAPI(t, nil)

	status, body := e.call(t, http.MethodPost, "/api/stock/entries", "USER", entryBody("IN", item("pipe", "1", false)))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	status, body = e.call(t, http.MethodPost, "/api/stock/entries", "OPERATOR", entryBody("IN", item("pipe", "5", false)))
	require.Equal(t, http.StatusCreated, status)
	id := body["id"].(string)
	assert.Equal(t, "15", e.stock(t, "pipe"))

	// cualquier rol autenticado lee
	status, _ = e.call(t, http.MethodGet, "/api/stock/entries/"+id, "USER", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = e.call(t, http.MethodDelete, "/api/stock/entries/"+id, "OPERATOR", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = e.call(t, http.MethodDelete, "/api/stock/entries/"+id, "ADMIN", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["reverted"])
	assert.Equal(t, "10", e.stock(t, "pipe"))

	status, body = e.call(t, http.MethodDelete, "/api/stock/entries/"+id, "ADMIN", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestStockEntries_ErrorMapping(t *testing.T) {
	e := newAPI(t, nil)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"producto repetido", entryBody("IN", item("pipe", "1", false), item("pipe", "2", false)), http.StatusBadRequest, "DUPLICATE_PRODUCT"},
		{"producto inexistente", entryBody("ADJUSTMENT", item("ghost", "1", false)), http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"json inválido", `{"type":`, http.StatusBadRequest, "INVALID_BODY"},
		{"sin items", map[string]any{"type": "IN"}, http.StatusBadRequest, "VALIDATION"},
		{"tipo desconocido", entryBody("TRANSFER", item("pipe", "1", false)), http.StatusBadRequest, "VALIDATION"},
		{"cantidad cero en IN", entryBody("IN", item("pipe", "0", false)), http.StatusBadRequest, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := e.call(t, http.MethodPost, "/api/stock/entries", "ADMIN", tt.body)
			assert.Equal(t, tt.status, status, body)
			assert.Equal(t, tt.code, body["code"])
		})
	}
	assert.Equal(t, "10", e.stock(t, "pipe"), "ningún intento fallido debe tocar el stock")
}

func TestStockEntries_DetailsOnMissingProducts(t *testing.T) {
	e := newAPI(t, nil)

	_, body := e.call(t, http.MethodPost, "/api/stock/entries", "ADMIN",
		entryBody("IN", item("ghost", "1", false), item("pipe", "1", false)))
	details := body["details"].(map[string]any)
	assert.Equal(t, []any{"ghost"}, details["missing_product_ids"])

	_, body = e.call(t, http.MethodPost, "/api/stock/entries", "ADMIN", map[string]any{"type": "IN"})
	assert.Equal(t, "items", body["details"].(map[string]any)["field"])
}

func TestStockEntries_RequiresToken(t *testing.T) {
	e := newAPI(t, nil)
	status, body := e.call(t, http.MethodGet, "/api/stock/entries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}

func TestStockEntries_ListInvalidDate(t *testing.T) {
	e := newAPI(t, nil)
	status, body := e.call(t, http.MethodGet, "/api/stock/entries?from=ayer", "USER", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestBills_EntryConflictAndDeleteReverts(t *testing.T) {
	e := newAPI(t, nil)

	status, party := e.call(t, http.MethodPost, "/api/parties", "OPERATOR",
		map[string]any{"name": "Ferretería Sur", "gstin": "29ABCDE1234F1Z5"})
	require.Equal(t, http.StatusCreated, status, party)

	status, bill := e.call(t, http.MethodPost, "/api/bills", "OPERATOR", map[string]any{
		"party_id": party["id"],
		"items":    []any{item("pipe", "2", false)},
	})
	require.Equal(t, http.StatusCreated, status, bill)
	assert.Equal(t, "INV00001", bill["number"])
	assert.Equal(t, "8", e.stock(t, "pipe"))

	entryID := bill["stock_entry_id"].(string)
	status, body := e.call(t, http.MethodDelete, "/api/stock/entries/"+entryID, "ADMIN", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])

	status, _ = e.call(t, http.MethodDelete, "/api/bills/"+bill["id"].(string), "OPERATOR", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.call(t, http.MethodDelete, "/api/bills/"+bill["id"].(string), "ADMIN", nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, "10", e.stock(t, "pipe"))

	status, _ = e.call(t, http.MethodGet, "/api/stock/entries/"+entryID, "ADMIN", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProducts_OverrideStockAdminOnly(t *testing.T) {
	e := newAPI(t, nil)
	body := map[string]any{"current_stock": "3", "reason": "conteo físico"}

	status, _ := e.call(t, http.MethodPut, "/api/products/pipe/stock", "OPERATOR", body)
	assert.Equal(t, http.StatusForbidden, status)

	status, out := e.call(t, http.MethodPut, "/api/products/pipe/stock", "ADMIN", body)
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "3", out["current_stock"])
	assert.Equal(t, "36", out["current_stock_in_sub_unit"])
}

func TestAuth_Login(t *testing.T) {
	e := newAPI(t, nil)
	_, err := e.authUC.RegisterUser(context.Background(), dto.RegisterRequest{
		Email: "admin@shop.in", Password: "secreto123", Role: entity.RoleAdmin,
	})
	require.NoError(t, err)

	status, body := e.call(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "ADMIN@shop.in", "password": "secreto123"})
	require.Equal(t, http.StatusOK, status, body)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "ADMIN", body["user"].(map[string]any)["role"])

	status, body = e.call(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "admin@shop.in", "password": "otra-cosa"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	status, _ = e.call(t, http.MethodPost, "/api/auth/register", "OPERATOR",
		map[string]any{"email": "op@shop.in", "password": "secreto123"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = e.call(t, http.MethodPost, "/api/auth/register", "ADMIN",
		map[string]any{"email": "admin@shop.in", "password": "secreto123"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", body["code"])
}

func TestRateLimit_LoginReturns429(t *testing.T) {
	storage := &countingStorage{Storage: ratelimit.NewStorage(time.Minute)}
	defer storage.Close()
	e := newAPI(t, apphttp.NewRateLimiter(storage, 2, time.Minute))

	creds := map[string]any{"email": "nadie@shop.in", "password": "x"}
	for i := 0; i < 2; i++ {
		status, _ := e.call(t, http.MethodPost, "/api/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, status)
	}
	status, body := e.call(t, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", body["code"])
	assert.Positive(t, storage.sets)
}

// countingStorage cuenta las escrituras del limitador sobre el almacén inyectado.
type countingStorage struct {
	*fibermemory.Storage
	sets int
}

func (s *countingStorage) Set(key string, val []byte, exp time.Duration) error {
	s.sets++
	return s.Storage.Set(key, val, exp)
}

func TestUnknownRoute_NotFound(t *testing.T) {
	e := newAPI(t, nil)
	status, body := e.call(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}
