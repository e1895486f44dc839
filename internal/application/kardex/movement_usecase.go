package kardex

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	domainkardex "github.com/tu-usuario/kardex-core/internal/domain/kardex"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

// MovementUseCase es el motor de movimientos de stock: valida, calcula los
// montos y persiste el nuevo stock junto con el asiento del kardex en una
// sola transacción, con bloqueo de fila (SELECT FOR UPDATE) sobre el producto
// para evitar lost-updates entre llamadas concurrentes.
//
// taxRatePct es la tarifa fija de impuesto aplicada a los movimientos.
// Nota: el sistema original aplicaba una tarifa fija en lugar del tax_rate
// del producto; aquí la tarifa es configuración explícita (KARDEX_TAX_RATE_PERCENT)
// para que la semántica elegida sea visible y testeable.
type MovementUseCase struct {
	txRunner   TxRunner
	userRepo   repository.UserRepository
	taxRatePct decimal.Decimal
}

// NewMovementUseCase construye el motor.
func NewMovementUseCase(txRunner TxRunner, userRepo repository.UserRepository, taxRatePct decimal.Decimal) *MovementUseCase {
	return &MovementUseCase{txRunner: txRunner, userRepo: userRepo, taxRatePct: taxRatePct}
}

// DiscountInput entrada para descontar stock (venta). UnitCost nil usa product.Price.
type DiscountInput struct {
	ProductID string
	Quantity  int64
	UserID    string
	Reason    string
	UnitCost  *decimal.Decimal
}

// RestockInput entrada para reponer stock (compra).
type RestockInput struct {
	ProductID string
	Quantity  int64
	UserID    string
	Reason    string
	UnitCost  *decimal.Decimal
}

// AdjustmentInput entrada para un ajuste manual. Delta con signo; un delta
// negativo que deje el stock bajo cero se rechaza igual que un descuento.
type AdjustmentInput struct {
	ProductID string
	Delta     int64
	UserID    string
	Reason    string
	UnitCost  *decimal.Decimal
}

// movementParams parámetros internos compartidos por todos los tipos de movimiento.
type movementParams struct {
	productID string
	delta     int64 // negativo descuenta, positivo repone
	movType   string
	userID    string
	reason    string
	unitCost  *decimal.Decimal
}

// ApplyDiscount descuenta stock de un producto y registra el asiento SALE.
// Las fallas de negocio (cantidad no positiva, actor o producto inexistente,
// stock insuficiente) regresan como outcome con Success=false y sin ninguna
// escritura; solo errores de infraestructura regresan como error.
func (uc *MovementUseCase) ApplyDiscount(ctx context.Context, in DiscountInput) (MovementOutcome, error) {
	if in.Quantity <= 0 {
		return failedOutcome(in.ProductID, FailureInvalidQuantity, "la cantidad debe ser mayor que cero"), nil
	}
	return uc.apply(ctx, movementParams{
		productID: in.ProductID,
		delta:     -in.Quantity,
		movType:   entity.MovementTypeSALE,
		userID:    in.UserID,
		reason:    in.Reason,
		unitCost:  in.UnitCost,
	})
}

// ApplyRestock suma stock a un producto y registra el asiento PURCHASE.
func (uc *MovementUseCase) ApplyRestock(ctx context.Context, in RestockInput) (MovementOutcome, error) {
	if in.Quantity <= 0 {
		return failedOutcome(in.ProductID, FailureInvalidQuantity, "la cantidad debe ser mayor que cero"), nil
	}
	return uc.apply(ctx, movementParams{
		productID: in.ProductID,
		delta:     in.Quantity,
		movType:   entity.MovementTypePURCHASE,
		userID:    in.UserID,
		reason:    in.Reason,
		unitCost:  in.UnitCost,
	})
}

// ApplyAdjustment aplica un ajuste manual con delta con signo.
func (uc *MovementUseCase) ApplyAdjustment(ctx context.Context, in AdjustmentInput) (MovementOutcome, error) {
	if in.Delta == 0 {
		return failedOutcome(in.ProductID, FailureInvalidQuantity, "el delta no puede ser cero"), nil
	}
	return uc.apply(ctx, movementParams{
		productID: in.ProductID,
		delta:     in.Delta,
		movType:   entity.MovementTypeADJUSTMENT,
		userID:    in.UserID,
		reason:    in.Reason,
		unitCost:  in.UnitCost,
	})
}

// apply valida el actor y ejecuta el movimiento dentro de una transacción.
func (uc *MovementUseCase) apply(ctx context.Context, p movementParams) (MovementOutcome, error) {
	ok, err := uc.userRepo.Exists(ctx, p.userID)
	if err != nil {
		return MovementOutcome{}, fmt.Errorf("verificar actor: %w", err)
	}
	if !ok {
		return failedOutcome(p.productID, FailureActorNotFound, "usuario no encontrado"), nil
	}

	var out MovementOutcome
	err = uc.txRunner.Run(ctx, func(
		kardexRepo repository.KardexRepository,
		productRepo repository.ProductRepository,
	) error {
		out, err = applyMovement(ctx, kardexRepo, productRepo, p, uc.taxRatePct, time.Now())
		return err
	})
	if err != nil {
		return MovementOutcome{}, err
	}
	return out, nil
}

// applyMovement ejecuta un movimiento contra repositorios ya atados a una tx.
// Bloquea la fila del producto, verifica que el stock resultante no sea
// negativo y hace las dos escrituras (stock + asiento). Compartido por el
// motor unitario y el coordinador de lotes.
func applyMovement(
	ctx context.Context,
	kardexRepo repository.KardexRepository,
	productRepo repository.ProductRepository,
	p movementParams,
	taxRatePct decimal.Decimal,
	now time.Time,
) (MovementOutcome, error) {
	product, err := productRepo.GetForUpdate(ctx, p.productID)
	if err != nil {
		return MovementOutcome{}, err
	}
	if product == nil {
		return failedOutcome(p.productID, FailureProductNotFound, "producto no encontrado"), nil
	}

	stockBefore := product.Stock
	stockAfter := stockBefore + p.delta
	if stockAfter < 0 {
		return failedOutcome(p.productID, FailureInsufficientStock,
			fmt.Sprintf("stock insuficiente: disponible %d, solicitado %d", stockBefore, -p.delta)), nil
	}

	quantity := p.delta
	if quantity < 0 {
		quantity = -quantity
	}
	unitCost := product.Price
	if p.unitCost != nil {
		unitCost = *p.unitCost
	}
	amounts := domainkardex.ComputeAmounts(quantity, unitCost, taxRatePct)

	if err := productRepo.UpdateStock(ctx, p.productID, stockAfter); err != nil {
		return MovementOutcome{}, err
	}
	entry := &entity.KardexEntry{
		ID:           uuid.New().String(),
		ProductID:    p.productID,
		UserID:       p.userID,
		MovementType: p.movType,
		Quantity:     quantity,
		UnitCost:     amounts.UnitCost,
		Subtotal:     amounts.Subtotal,
		TaxRate:      amounts.TaxRate,
		TaxAmount:    amounts.TaxAmount,
		Total:        amounts.Total,
		StockBefore:  stockBefore,
		StockAfter:   stockAfter,
		Reason:       p.reason,
		CreatedAt:    now,
	}
	if err := kardexRepo.Append(ctx, entry); err != nil {
		return MovementOutcome{}, err
	}

	return MovementOutcome{
		ProductID:       p.productID,
		Success:         true,
		StockBefore:     stockBefore,
		StockAfter:      stockAfter,
		QuantityApplied: quantity,
		EntryID:         entry.ID,
	}, nil
}
