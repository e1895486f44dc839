package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product es la vista del catálogo que necesita el núcleo de kardex.
// El catálogo (nombre, marca, categoría, plantilla) es un colaborador externo;
// este núcleo solo lee el producto y muta exclusivamente Stock vía movimientos.
type Product struct {
	ID        string
	SKU       string
	Name      string
	Price     decimal.Decimal // precio de venta; costo unitario por defecto en movimientos
	TaxRate   decimal.Decimal // % IVA del producto (ver KardexConfig: la tarifa aplicada es configurable)
	Stock     int64           // nunca negativo; solo el motor de movimientos lo escribe
	CreatedAt time.Time
	UpdatedAt time.Time
}
