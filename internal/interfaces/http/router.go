package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/kardex-core/internal/application/kardex"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements *kardex.MovementUseCase
	Bulk      *kardex.BulkDiscountUseCase
	Ledger    *kardex.LedgerQueryService
	Queries   *kardex.StockQueryService
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todas las rutas del kardex requieren Bearer Token: cada asiento
	// registra el actor que lo originó.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Movimientos y libro kardex
	kardexGroup := protected.Group("/kardex")
	kardexHandler := NewKardexHandler(deps.Movements, deps.Bulk, deps.Ledger)
	kardexGroup.Post("/discounts", kardexHandler.Discount)
	kardexGroup.Post("/discounts/bulk", kardexHandler.BulkDiscount)
	kardexGroup.Post("/restocks", kardexHandler.Restock)
	kardexGroup.Post("/adjustments", kardexHandler.Adjustment)
	kardexGroup.Get("/latest", kardexHandler.Latest)
	kardexGroup.Get("/products/:id/history", kardexHandler.History)
	kardexGroup.Get("/", kardexHandler.List)

	// Consultas de stock
	stockHandler := NewStockHandler(deps.Queries)
	protected.Get("/products/:id/stock", stockHandler.Availability)
	stockGroup := protected.Group("/stock")
	stockGroup.Post("/check", stockHandler.Check)
	stockGroup.Post("/preview-tax", stockHandler.PreviewTax)
	stockGroup.Get("/current", stockHandler.Current)
}
