package kardex_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/kardex-core/internal/application/kardex"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
)

const testActor = "user-1"

func setupStore() *fakeStore {
	store := newFakeStore()
	store.users[testActor] = true
	return store
}

// TestApplyDiscount_Exitoso — stock=10, descuento de 4: stockBefore=10,
// stockAfter=6, el stock del producto queda en 6 y se crea exactamente un
// asiento con quantity=4.
func TestApplyDiscount_Exitoso(t *testing.T) {
	store := setupStore()
	store.addProduct("p1", 10, "2500.00")
	engine, _, _ := buildEngine(store)

	out, err := engine.ApplyDiscount(context.Background(), kardex.DiscountInput{
		ProductID: "p1", Quantity: 4, UserID: testActor, Reason: "venta mostrador",
	})
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, int64(10), out.StockBefore)
	assert.Equal(t, int64(6), out.StockAfter)
	assert.Equal(t, int64(4), out.QuantityApplied)
	assert.NotEmpty(t, out.EntryID)

	assert.Equal(t, int64(6), store.products["p1"].Stock)
	entries := entriesFor(store, "p1")
	require.Len(t, entries, 1)
	assert.Equal(t, entity.MovementTypeSALE, entries[0].MovementType)
	assert.Equal(t, int64(4), entries[0].Quantity)
	assert.Equal(t, "venta mostrador", entries[0].Reason)
}

// TestApplyDiscount_StockInsuficiente — stock=3, descuento de 5: falla como
// valor, el stock permanece en 3 y no se crea ningún asiento.
func TestApplyDiscount_StockInsuficiente(t *testing.T) {
	store := setupStore()
	store.addProduct("p1", 3, "100")
	engine, _, _ := buildEngine(store)

	out, err := engine.ApplyDiscount(context.Background(), kardex.DiscountInput{
		ProductID: "p1", Quantity: 5, UserID: testActor,
	})
	require.NoError(t, err)

	assert.False(t, out.Success)
	assert.Equal(t, kardex.FailureInsufficientStock, out.Code)
	assert.Equal(t, int64(3), store.products["p1"].Stock)
	assert.Empty(t, entriesFor(store, "p1"))
}

func TestApplyDiscount_CantidadInvalida(t *testing.T) {
	store := setupStore()
	store.addProduct("p1", 3, "100")
	engine, _, _ := buildEngine(store)

	for _, qty := range []int64{0, -2} {
		out, err := engine.ApplyDiscount(context.Background(), kardex.DiscountInput{
			ProductID: "p1", Quantity: qty, UserID: testActor,
		})
		require.NoError(t, err)
		assert.False(t, out.Success)
		assert.Equal(t, kardex.FailureInvalidQuantity, out.Code)
	}
	assert.Empty(t, entriesFor(store, "p1"))
}

func TestApplyDiscount_ProductoInexistente(t *testing.T) {
	store := setupStore()
	engine, _, _ := buildEngine(store)

	out, err := engine.ApplyDiscount(context.Background(), kardex.DiscountInput{
		ProductID: "nope", Quantity: 1, UserID: testActor,
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, kardex.FailureProductNotFound, out.Code)
}

func TestApplyDiscount_ActorInexistente(t *testing.T) {
	store := setupStore()
	store.addProduct("p1", 3, "100")
	engine, _, _ := buildEngine(store)

	out, err := engine.ApplyDiscount(context.Background(), kardex.DiscountInput{
		ProductID: "p1", Quantity: 1, UserID: "ghost",
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, kardex.FailureActorNotFound, out.Code)
	assert.Equal(t, int64(3), store.products["p1"].Stock)
}

// TestApplyDiscount_CostoPorDefecto — unitCost omitido: el motor usa
// product.Price y aplica las reglas de redondeo del servicio de montos.
func TestApplyDiscount_CostoPorDefecto(t *testing.T) {
	store := setupStore()
	store.addProduct("p1", 10, "2500.00")
	engine, _, _ := buildEngine(store)

	out, err := engine.ApplyDiscount(context.Background(), kardex.DiscountInput{
		ProductID: "p1", Quantity: 4, UserID: testActor,
	})
	require.NoError(t, err)
	require.True(t, out.Success)

	entries := entriesFor(store, "p1")
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "2500.000000", e.UnitCost.StringFixed(6))
	assert.Equal(t, "10000.000000", e.Subtotal.StringFixed(6))
	assert.Equal(t, "1900.00", e.TaxAmount.StringFixed(2))
	assert.Equal(t, "11900.00", e.Total.StringFixed(2))
	assert.True(t, e.TaxRate.Equal(decimal.NewFromInt(19)))
}

// TestApplyDiscount_CostoExplicito — unitCost proporcionado tiene prioridad
// sobre el precio del producto.
func TestApplyDiscount_CostoExplicito(t *testing.T) {
	store := setupStore()
	store.addProduct("p1", 10, "2500.00")
	engine, _, _ := buildEngine(store)

	cost := decimal.RequireFromString("1800.50")
	out, err := engine.ApplyDiscount(context.Background(), kardex.DiscountInput{
		ProductID: "p1", Quantity: 2, UserID: testActor, UnitCost: &cost,
	})
	require.NoError(t, err)
	require.True(t, out.Success)

	e := entriesFor(store, "p1")[0]
	assert.Equal(t, "1800.500000", e.UnitCost.StringFixed(6))
	assert.Equal(t, "3601.000000", e.Subtotal.StringFixed(6))
}

// TestApplyDiscount_ErrorInfraRevierte — un error de infraestructura al
// escribir el asiento revierte también la escritura de stock (ambos o ninguno).
func TestApplyDiscount_ErrorInfraRevierte(t *testing.T) {
	store := setupStore()
	store.addProduct("p1", 10, "100")
	store.failAppend = errors.New("conexión perdida")
	engine, _, _ := buildEngine(store)

	_, err := engine.ApplyDiscount(context.Background(), kardex.DiscountInput{
		ProductID: "p1", Quantity: 4, UserID: testActor,
	})
	require.Error(t, err)
	assert.Equal(t, int64(10), store.products["p1"].Stock)
	assert.Empty(t, entriesFor(store, "p1"))
}

func TestApplyRestock_SumaStock(t *testing.T) {
	store := setupStore()
	store.addProduct("p1", 2, "100")
	engine, _, _ := buildEngine(store)

	cost := decimal.RequireFromString("60")
	out, err := engine.ApplyRestock(context.Background(), kardex.RestockInput{
		ProductID: "p1", Quantity: 8, UserID: testActor, Reason: "compra proveedor", UnitCost: &cost,
	})
	require.NoError(t, err)
	require.True(t, out.Success)
	assert.Equal(t, int64(2), out.StockBefore)
	assert.Equal(t, int64(10), out.StockAfter)
	assert.Equal(t, int64(10), store.products["p1"].Stock)

	e := entriesFor(store, "p1")[0]
	assert.Equal(t, entity.MovementTypePURCHASE, e.MovementType)
	assert.Equal(t, int64(8), e.Quantity)
}

func TestApplyAdjustment_DeltaNegativoBajoCero(t *testing.T) {
	store := setupStore()
	store.addProduct("p1", 3, "100")
	engine, _, _ := buildEngine(store)

	out, err := engine.ApplyAdjustment(context.Background(), kardex.AdjustmentInput{
		ProductID: "p1", Delta: -5, UserID: testActor, Reason: "merma",
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, kardex.FailureInsufficientStock, out.Code)
	assert.Equal(t, int64(3), store.products["p1"].Stock)
}

func TestApplyAdjustment_DeltaPositivo(t *testing.T) {
	store := setupStore()
	store.addProduct("p1", 3, "100")
	engine, _, _ := buildEngine(store)

	out, err := engine.ApplyAdjustment(context.Background(), kardex.AdjustmentInput{
		ProductID: "p1", Delta: 7, UserID: testActor, Reason: "conteo físico",
	})
	require.NoError(t, err)
	require.True(t, out.Success)
	assert.Equal(t, int64(10), store.products["p1"].Stock)
	assert.Equal(t, entity.MovementTypeADJUSTMENT, entriesFor(store, "p1")[0].MovementType)
	assert.Equal(t, int64(7), entriesFor(store, "p1")[0].Quantity)
}

// TestCadenaConsistente — tras una serie de movimientos, reproducir la cadena
// stockBefore -> stockAfter desde cero devuelve exactamente el stock actual,
// y el stock del producto coincide con el stockAfter del último asiento.
func TestCadenaConsistente(t *testing.T) {
	store := setupStore()
	store.addProduct("p1", 0, "50")
	engine, _, _ := buildEngine(store)
	ctx := context.Background()

	_, err := engine.ApplyRestock(ctx, kardex.RestockInput{ProductID: "p1", Quantity: 20, UserID: testActor})
	require.NoError(t, err)
	_, err = engine.ApplyDiscount(ctx, kardex.DiscountInput{ProductID: "p1", Quantity: 5, UserID: testActor})
	require.NoError(t, err)
	_, err = engine.ApplyAdjustment(ctx, kardex.AdjustmentInput{ProductID: "p1", Delta: -3, UserID: testActor})
	require.NoError(t, err)
	// intento que debe fallar sin romper la cadena
	out, err := engine.ApplyDiscount(ctx, kardex.DiscountInput{ProductID: "p1", Quantity: 99, UserID: testActor})
	require.NoError(t, err)
	require.False(t, out.Success)
	_, err = engine.ApplyDiscount(ctx, kardex.DiscountInput{ProductID: "p1", Quantity: 2, UserID: testActor})
	require.NoError(t, err)

	entries := entriesFor(store, "p1")
	require.Len(t, entries, 4)
	final, ok := replayChain(entries)
	assert.True(t, ok, "cada stockBefore debe encadenar con el stockAfter anterior")
	assert.Equal(t, store.products["p1"].Stock, final)
	assert.Equal(t, store.products["p1"].Stock, entries[len(entries)-1].StockAfter)

	// ninguna fila con stockAfter negativo
	for _, e := range entries {
		assert.GreaterOrEqual(t, e.StockAfter, int64(0))
	}
}
