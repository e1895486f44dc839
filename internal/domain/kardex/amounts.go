package kardex

import "github.com/shopspring/decimal"

// Precisión de redondeo de los campos monetarios de una fila de kardex.
const (
	CostPrecision   = 6 // unit_cost y subtotal
	AmountPrecision = 2 // tax_amount y total
)

// Amounts agrupa los campos monetarios calculados de un movimiento.
type Amounts struct {
	UnitCost  decimal.Decimal
	Subtotal  decimal.Decimal
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeAmounts calcula los montos de un movimiento (servicio de dominio).
//
//	Subtotal  = round(quantity * unitCost, 6)
//	TaxAmount = round(Subtotal * taxRatePct / 100, 2)
//	Total     = round(Subtotal + TaxAmount, 2)
//
// taxRatePct es un porcentaje (19 = 19%). El redondeo es determinista:
// mismo input, mismos montos.
func ComputeAmounts(quantity int64, unitCost, taxRatePct decimal.Decimal) Amounts {
	qty := decimal.NewFromInt(quantity)
	cost := unitCost.Round(CostPrecision)
	subtotal := qty.Mul(cost).Round(CostPrecision)
	taxAmount := subtotal.Mul(taxRatePct).Div(decimal.NewFromInt(100)).Round(AmountPrecision)
	total := subtotal.Add(taxAmount).Round(AmountPrecision)
	return Amounts{
		UnitCost:  cost,
		Subtotal:  subtotal,
		TaxRate:   taxRatePct,
		TaxAmount: taxAmount,
		Total:     total,
	}
}

// TaxValue calcula el impuesto de una vista previa: base * cantidad * tarifa / 100,
// redondeado a 2 decimales. Usado por el servicio de consultas (previewTax).
func TaxValue(basePrice decimal.Decimal, quantity int64, taxRatePct decimal.Decimal) decimal.Decimal {
	return basePrice.
		Mul(decimal.NewFromInt(quantity)).
		Mul(taxRatePct).
		Div(decimal.NewFromInt(100)).
		Round(AmountPrecision)
}
