package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del kardex.
const (
	MovementTypeSALE       = "SALE"       // salida por venta/descuento de stock
	MovementTypePURCHASE   = "PURCHASE"   // entrada por compra/reposición
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste manual (delta con signo)
)

// KardexEntry es una fila inmutable del libro de movimientos de inventario.
// Se crea únicamente como efecto de un movimiento exitoso; nunca se actualiza
// ni se borra (DeletedAt existe por compatibilidad hacia adelante, este núcleo
// jamás lo asigna).
type KardexEntry struct {
	ID           string
	ProductID    string
	UserID       string
	MovementType string
	Quantity     int64 // magnitud, siempre positiva
	UnitCost     decimal.Decimal
	Subtotal     decimal.Decimal
	TaxRate      decimal.Decimal
	TaxAmount    decimal.Decimal
	Total        decimal.Decimal
	StockBefore  int64
	StockAfter   int64
	Reason       string
	CreatedAt    time.Time
	DeletedAt    *time.Time
}
