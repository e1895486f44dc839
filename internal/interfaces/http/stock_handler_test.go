package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/kardex-core/internal/application/kardex"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	apphttp "github.com/tu-usuario/kardex-core/internal/interfaces/http"
	pkgjwt "github.com/tu-usuario/kardex-core/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "kardex-core-test"
	testExpMin    = 60
)

// stubProductRepo catálogo fijo en memoria para los tests del handler.
type stubProductRepo struct {
	products map[string]*entity.Product
}

func (s *stubProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	if p, ok := s.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (s *stubProductRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *stubProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return s.GetByID(ctx, id)
}

func (s *stubProductRepo) UpdateStock(_ context.Context, _ string, _ int64) error {
	return nil
}

func buildStockApp(t *testing.T) *fiber.App {
	t.Helper()
	repo := &stubProductRepo{products: map[string]*entity.Product{
		"p1": {ID: "p1", Name: "Café 500g", Price: decimal.RequireFromString("2500"), Stock: 5},
	}}
	queries := kardex.NewStockQueryService(repo, decimal.NewFromInt(19))
	handler := apphttp.NewStockHandler(queries)

	app := fiber.New()
	app.Get("/api/products/:id/stock", apphttp.AuthMiddleware(testJWTSecret), handler.Availability)
	return app
}

func bearer(t *testing.T) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func getAvailability(t *testing.T, app *fiber.App, path, auth string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeAvailability(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// El contrato de disponibilidad es camelCase: hasEnoughStock y currentStock.
func TestAvailability_StockSuficiente(t *testing.T) {
	app := buildStockApp(t)
	resp := getAvailability(t, app, "/api/products/p1/stock?quantity=4", bearer(t))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeAvailability(t, resp)
	assert.Equal(t, true, body["hasEnoughStock"])
	assert.Equal(t, float64(5), body["currentStock"])
	_, hasMessage := body["message"]
	assert.False(t, hasMessage, "con stock suficiente no debe haber message")
}

func TestAvailability_StockInsuficiente(t *testing.T) {
	app := buildStockApp(t)
	resp := getAvailability(t, app, "/api/products/p1/stock?quantity=6", bearer(t))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeAvailability(t, resp)
	assert.Equal(t, false, body["hasEnoughStock"])
	assert.Equal(t, float64(5), body["currentStock"])
	assert.Equal(t, "stock insuficiente", body["message"])
}

func TestAvailability_ProductoInexistente(t *testing.T) {
	app := buildStockApp(t)
	resp := getAvailability(t, app, "/api/products/nope/stock", bearer(t))
	defer resp.Body.Close()

	// producto inexistente no es error HTTP: responde con stock 0
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeAvailability(t, resp)
	assert.Equal(t, false, body["hasEnoughStock"])
	assert.Equal(t, float64(0), body["currentStock"])
	assert.Equal(t, "producto no encontrado", body["message"])
}

func TestAvailability_CantidadInvalida(t *testing.T) {
	app := buildStockApp(t)
	resp := getAvailability(t, app, "/api/products/p1/stock?quantity=cero", bearer(t))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAvailability_SinToken_Retorna401(t *testing.T) {
	app := buildStockApp(t)
	resp := getAvailability(t, app, "/api/products/p1/stock", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAvailability_TokenInvalido_Retorna401(t *testing.T) {
	app := buildStockApp(t)
	resp := getAvailability(t, app, "/api/products/p1/stock", "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJWT_GenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testIssuer, testExpMin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testIssuer, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testJWTSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testIssuer, testExpMin)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}
