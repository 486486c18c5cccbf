package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/gst-shop-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/gst-shop-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "gst-shop-api-test"
	testExpMin    = 60
)

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// Matriz de permisos sobre las rutas reales del router. Las peticiones permitidas pueden
// fallar después (cuerpo vacío, id inexistente); lo que se comprueba es que pasen el RBAC.
func TestRouter_RolePermissions(t *testing.T) {
	e := newAPI(t, nil)

	cases := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"user no borra asientos", http.MethodDelete, "/api/stock/entries/e-1", "USER", http.StatusForbidden},
		{"operator no borra asientos", http.MethodDelete, "/api/stock/entries/e-1", "OPERATOR", http.StatusForbidden},
		{"admin borra asientos", http.MethodDelete, "/api/stock/entries/e-1", "ADMIN", http.StatusNotFound},
		{"operator no fija stock", http.MethodPut, "/api/products/pipe/stock", "OPERATOR", http.StatusForbidden},
		{"user no fija stock", http.MethodPut, "/api/products/pipe/stock", "USER", http.StatusForbidden},
		{"user no registra movimientos", http.MethodPost, "/api/stock/entries", "USER", http.StatusForbidden},
		{"operator registra movimientos", http.MethodPost, "/api/stock/entries", "OPERATOR", http.StatusBadRequest},
		{"user no crea productos", http.MethodPost, "/api/products", "USER", http.StatusForbidden},
		{"user no edita clientes", http.MethodPut, "/api/parties/x", "USER", http.StatusForbidden},
		{"user no factura", http.MethodPost, "/api/bills", "USER", http.StatusForbidden},
		{"operator no anula facturas", http.MethodDelete, "/api/bills/b-1", "OPERATOR", http.StatusForbidden},
		{"admin anula facturas", http.MethodDelete, "/api/bills/b-1", "ADMIN", http.StatusNotFound},
		{"operator no lista usuarios", http.MethodGet, "/api/users", "OPERATOR", http.StatusForbidden},
		{"user no registra usuarios", http.MethodPost, "/api/auth/register", "USER", http.StatusForbidden},
		{"user lee asientos", http.MethodGet, "/api/stock/entries", "USER", http.StatusOK},
		{"user lee productos", http.MethodGet, "/api/products/pipe", "USER", http.StatusOK},
		{"user lee historial", http.MethodGet, "/api/products/pipe/history", "USER", http.StatusOK},
		{"sin token", http.MethodGet, "/api/products", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := e.call(t, tc.method, tc.path, tc.role, nil)
			assert.Equal(t, tc.want, status, "%v", body)
			if tc.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", body["code"])
			}
		})
	}
}

// roleApp ruta mínima protegida por AuthMiddleware + RequireRole.
func roleApp(roles ...string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Get("/x", apphttp.AuthMiddleware(testJWTSecret), apphttp.RequireRole(roles...), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
	})
	return app
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	noRole, err := pkgjwt.Generate(testJWTSecret, testUserID, "", testIssuer, testExpMin)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, "ADMIN", testIssuer, -1)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otro-secreto", testUserID, "ADMIN", testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"sin cabecera", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"esquema basic", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token malformado", "Bearer a.b.c", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token vencido", "Bearer " + expired, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"otro secreto", "Bearer " + foreign, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"sin rol", "Bearer " + noRole, http.StatusUnauthorized, "MISSING_ROLE"},
	}
	app := roleApp("ADMIN")
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			raw, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(raw), tc.code)
		})
	}
}

func TestAuthMiddleware_CargaClaims(t *testing.T) {
	app := roleApp("ADMIN", "OPERATOR")
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", tokenForRole(t, "OPERATOR"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, "OPERATOR", body["role"])
}

func TestJWT_GenerateParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "USER", testIssuer, testExpMin)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
	assert.Equal(t, "USER", role)
}
