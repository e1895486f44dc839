package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/kardex-core/internal/application/dto"
	"github.com/tu-usuario/kardex-core/internal/application/kardex"
	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

// KardexHandler maneja las peticiones HTTP de movimientos y del libro kardex (protegido).
type KardexHandler struct {
	movements *kardex.MovementUseCase
	bulk      *kardex.BulkDiscountUseCase
	ledger    *kardex.LedgerQueryService
}

// NewKardexHandler construye el handler.
func NewKardexHandler(movements *kardex.MovementUseCase, bulk *kardex.BulkDiscountUseCase, ledger *kardex.LedgerQueryService) *KardexHandler {
	return &KardexHandler{movements: movements, bulk: bulk, ledger: ledger}
}

// Discount godoc
// @Summary      Descontar stock (venta)
// @Tags         kardex
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DiscountRequest  true  "product_id, quantity, reason opcional, unit_cost opcional"
// @Success      201  {object}  kardex.MovementOutcome
// @Failure      400  {object}  kardex.MovementOutcome
// @Failure      404  {object}  kardex.MovementOutcome
// @Failure      409  {object}  kardex.MovementOutcome
// @Router       /api/kardex/discounts [post]
func (h *KardexHandler) Discount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.DiscountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.movements.ApplyDiscount(c.Context(), kardex.DiscountInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UserID:    userID,
		Reason:    in.Reason,
		UnitCost:  in.UnitCost,
	})
	return respondOutcome(c, out, err)
}

// Restock godoc
// @Summary      Reponer stock (compra)
// @Tags         kardex
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestockRequest  true  "product_id, quantity, reason opcional, unit_cost opcional"
// @Success      201  {object}  kardex.MovementOutcome
// @Failure      400  {object}  kardex.MovementOutcome
// @Failure      404  {object}  kardex.MovementOutcome
// @Router       /api/kardex/restocks [post]
func (h *KardexHandler) Restock(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.movements.ApplyRestock(c.Context(), kardex.RestockInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UserID:    userID,
		Reason:    in.Reason,
		UnitCost:  in.UnitCost,
	})
	return respondOutcome(c, out, err)
}

// Adjustment godoc
// @Summary      Ajustar stock (conteo físico, merma)
// @Tags         kardex
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "product_id, delta con signo, reason opcional"
// @Success      201  {object}  kardex.MovementOutcome
// @Failure      400  {object}  kardex.MovementOutcome
// @Failure      404  {object}  kardex.MovementOutcome
// @Failure      409  {object}  kardex.MovementOutcome
// @Router       /api/kardex/adjustments [post]
func (h *KardexHandler) Adjustment(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.movements.ApplyAdjustment(c.Context(), kardex.AdjustmentInput{
		ProductID: in.ProductID,
		Delta:     in.Delta,
		UserID:    userID,
		Reason:    in.Reason,
		UnitCost:  in.UnitCost,
	})
	return respondOutcome(c, out, err)
}

// BulkDiscount godoc
// @Summary      Descontar stock en lote
// @Description  Procesa todas las líneas en una sola transacción. Las líneas
// @Description  que fallan por reglas de negocio no escriben nada y se
// @Description  reportan en failed; las demás quedan confirmadas.
// @Tags         kardex
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkDiscountRequest  true  "items"
// @Success      200  {object}  kardex.BulkOutcome
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/kardex/discounts/bulk [post]
func (h *KardexHandler) BulkDiscount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.BulkDiscountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]kardex.BulkDiscountItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, kardex.BulkDiscountItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Reason:    it.Reason,
			UnitCost:  it.UnitCost,
		})
	}
	out, err := h.bulk.ApplyDiscounts(c.Context(), items, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar el libro kardex
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        product_id     query  string  false  "Filtrar por producto"
// @Param        user_id        query  string  false  "Filtrar por actor"
// @Param        movement_type  query  string  false  "SALE | PURCHASE | ADJUSTMENT"
// @Param        from           query  string  false  "Desde (RFC3339)"
// @Param        to             query  string  false  "Hasta (RFC3339)"
// @Param        search         query  string  false  "Búsqueda sobre reason"
// @Param        exclude_deleted query bool    false  "Omitir filas soft-deleted"
// @Param        sort_by        query  string  false  "created_at | total | quantity"
// @Param        sort_dir       query  string  false  "asc | desc"
// @Success      200  {object}  dto.KardexPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/kardex [get]
func (h *KardexHandler) List(c *fiber.Ctx) error {
	in, err := parseListRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query params inválidos"})
	}
	page, err := h.ledger.Page(c.Context(), in)
	return respondPage(c, in, page, err)
}

// Latest godoc
// @Summary      Último asiento por producto
// @Description  Devuelve la fila más reciente del libro para cada producto,
// @Description  resuelta y paginada en la base de datos.
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.KardexPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/kardex/latest [get]
func (h *KardexHandler) Latest(c *fiber.Ctx) error {
	in, err := parseListRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query params inválidos"})
	}
	page, err := h.ledger.LatestPerProduct(c.Context(), in)
	return respondPage(c, in, page, err)
}

// History godoc
// @Summary      Cadena completa de un producto
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {array}   dto.KardexEntryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/kardex/products/{id}/history [get]
func (h *KardexHandler) History(c *fiber.Ctx) error {
	entries, err := h.ledger.History(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.KardexEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.FromKardexEntry(e))
	}
	return c.JSON(out)
}

func parseListRequest(c *fiber.Ctx) (kardex.LedgerListInput, error) {
	var q dto.KardexListRequest
	if err := c.QueryParser(&q); err != nil {
		return kardex.LedgerListInput{}, err
	}
	q.DefaultPage()
	return kardex.LedgerListInput{
		ProductID:    q.ProductID,
		UserID:       q.UserID,
		MovementType: q.MovementType,
		From:         q.From,
		To:           q.To,
		Search:         q.Search,
		ExcludeDeleted: q.ExcludeDeleted,
		SortBy:         q.SortBy,
		SortDir:        q.SortDir,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}, nil
}

func respondPage(c *fiber.Ctx, in kardex.LedgerListInput, page *repository.KardexPage, err error) error {
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	entries := make([]dto.KardexEntryDTO, 0, len(page.Entries))
	for _, e := range page.Entries {
		entries = append(entries, dto.FromKardexEntry(e))
	}
	return c.JSON(dto.KardexPageResponse{
		Entries: entries,
		Page: dto.PageResponse{
			Limit:   in.Limit,
			Offset:  in.Offset,
			Matched: page.MatchedCount,
			Total:   page.TotalCount,
		},
	})
}

// respondOutcome traduce el resultado de un movimiento a HTTP. El resultado
// viaja siempre como cuerpo; solo cambia el status según el código de falla.
func respondOutcome(c *fiber.Ctx, out kardex.MovementOutcome, err error) error {
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out.Success {
		return c.Status(fiber.StatusCreated).JSON(out)
	}
	switch out.Code {
	case kardex.FailureProductNotFound, kardex.FailureActorNotFound:
		return c.Status(fiber.StatusNotFound).JSON(out)
	case kardex.FailureInsufficientStock:
		return c.Status(fiber.StatusConflict).JSON(out)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(out)
	}
}
