package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/kardex-core/internal/domain/entity"
)

// DiscountRequest body para POST /api/kardex/discounts.
type DiscountRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	Reason    string           `json:"reason,omitempty"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// BulkDiscountRequest body para POST /api/kardex/discounts/bulk.
type BulkDiscountRequest struct {
	Items []BulkDiscountItemRequest `json:"items"`
}

// BulkDiscountItemRequest una línea del lote de descuentos.
type BulkDiscountItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	Reason    string           `json:"reason,omitempty"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// RestockRequest body para POST /api/kardex/restocks.
type RestockRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	Reason    string           `json:"reason,omitempty"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// AdjustmentRequest body para POST /api/kardex/adjustments.
// Delta es con signo: positivo suma stock, negativo resta.
type AdjustmentRequest struct {
	ProductID string           `json:"product_id"`
	Delta     int64            `json:"delta"`
	Reason    string           `json:"reason,omitempty"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// KardexListRequest query params para los listados del libro.
type KardexListRequest struct {
	PageRequest
	ProductID    string `query:"product_id"`
	UserID       string `query:"user_id"`
	MovementType string `query:"movement_type"`
	From         string `query:"from"` // RFC3339
	To           string `query:"to"`   // RFC3339
	Search         string `query:"search"`
	ExcludeDeleted bool   `query:"exclude_deleted"` // omitir filas soft-deleted
	SortBy         string `query:"sort_by"`         // created_at | total | quantity
	SortDir        string `query:"sort_dir"`        // asc | desc
}

// KardexEntryDTO asiento del libro en respuestas.
type KardexEntryDTO struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	UserID       string          `json:"user_id"`
	MovementType string          `json:"movement_type"`
	Quantity     int64           `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	Total        decimal.Decimal `json:"total"`
	StockBefore  int64           `json:"stock_before"`
	StockAfter   int64           `json:"stock_after"`
	Reason       string          `json:"reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// FromKardexEntry mapea la entidad al DTO de respuesta.
func FromKardexEntry(e *entity.KardexEntry) KardexEntryDTO {
	return KardexEntryDTO{
		ID:           e.ID,
		ProductID:    e.ProductID,
		UserID:       e.UserID,
		MovementType: e.MovementType,
		Quantity:     e.Quantity,
		UnitCost:     e.UnitCost,
		Subtotal:     e.Subtotal,
		TaxRate:      e.TaxRate,
		TaxAmount:    e.TaxAmount,
		Total:        e.Total,
		StockBefore:  e.StockBefore,
		StockAfter:   e.StockAfter,
		Reason:       e.Reason,
		CreatedAt:    e.CreatedAt,
	}
}

// KardexPageResponse página del libro.
type KardexPageResponse struct {
	Entries []KardexEntryDTO `json:"entries"`
	Page    PageResponse     `json:"page"`
}

// StockAvailabilityResponse respuesta de GET /api/products/:id/stock.
// Mantiene en camelCase el contrato que los clientes del POS ya consumen.
type StockAvailabilityResponse struct {
	HasEnoughStock bool   `json:"hasEnoughStock"`
	CurrentStock   int64  `json:"currentStock"`
	Message        string `json:"message,omitempty"`
}

// StockCheckRequest body para POST /api/stock/check (consulta por lote).
type StockCheckRequest struct {
	Items []StockCheckItemRequest `json:"items"`
}

// StockCheckItemRequest producto y cantidad requerida a verificar.
type StockCheckItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}
