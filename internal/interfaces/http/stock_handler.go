package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/kardex-core/internal/application/dto"
	"github.com/tu-usuario/kardex-core/internal/application/kardex"
)

// StockHandler maneja las consultas de stock de solo lectura (protegido).
type StockHandler struct {
	queries *kardex.StockQueryService
}

// NewStockHandler construye el handler.
func NewStockHandler(queries *kardex.StockQueryService) *StockHandler {
	return &StockHandler{queries: queries}
}

// Availability godoc
// @Summary      Verificar disponibilidad de stock de un producto
// @Description  Responde si el producto tiene stock suficiente para la
// @Description  cantidad pedida. Producto inexistente responde 200 con
// @Description  hasEnoughStock=false y un mensaje.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "ID del producto"
// @Param        quantity  query  int     false  "Cantidad requerida (default 1)"
// @Success      200  {object}  dto.StockAvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *StockHandler) Availability(c *fiber.Ctx) error {
	quantity := int64(1)
	if raw := c.Query("quantity"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity debe ser un entero positivo"})
		}
		quantity = n
	}

	check, err := h.queries.CheckStock(c.Context(), c.Params("id"), quantity)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	resp := dto.StockAvailabilityResponse{
		HasEnoughStock: check.HasStock,
		CurrentStock:   check.CurrentStock,
	}
	switch {
	case !check.Found:
		resp.Message = "producto no encontrado"
	case !check.HasStock:
		resp.Message = "stock insuficiente"
	}
	return c.JSON(resp)
}

// Check godoc
// @Summary      Verificar stock de varios productos
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockCheckRequest  true  "items"
// @Success      200  {array}   kardex.StockCheck
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/check [post]
func (h *StockHandler) Check(c *fiber.Ctx) error {
	var in dto.StockCheckRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]kardex.StockCheckItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, kardex.StockCheckItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	checks, err := h.queries.CheckManyStock(c.Context(), items)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(checks)
}

// PreviewTax godoc
// @Summary      Vista previa del impuesto por ítem
// @Description  Calcula base * cantidad * tarifa / 100 con la tarifa fija
// @Description  configurada, sin registrar ningún movimiento.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockCheckRequest  true  "items"
// @Success      200  {array}   kardex.TaxPreview
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/preview-tax [post]
func (h *StockHandler) PreviewTax(c *fiber.Ctx) error {
	var in dto.StockCheckRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]kardex.StockCheckItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, kardex.StockCheckItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	previews, err := h.queries.PreviewTax(c.Context(), items)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(previews)
}

// Current godoc
// @Summary      Stock actual de varios productos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        ids  query  string  true  "IDs separados por coma"
// @Success      200  {array}   kardex.ProductStock
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/current [get]
func (h *StockHandler) Current(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("ids"))
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ids requerido"})
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	stocks, err := h.queries.CurrentStockMany(c.Context(), ids)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(stocks)
}
