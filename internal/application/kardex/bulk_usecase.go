package kardex

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

// BulkDiscountUseCase secuencia muchos descuentos dentro de una sola
// transacción, recolectando resultados independientes por ítem.
type BulkDiscountUseCase struct {
	txRunner   TxRunner
	userRepo   repository.UserRepository
	taxRatePct decimal.Decimal
}

// NewBulkDiscountUseCase construye el coordinador de lotes.
func NewBulkDiscountUseCase(txRunner TxRunner, userRepo repository.UserRepository, taxRatePct decimal.Decimal) *BulkDiscountUseCase {
	return &BulkDiscountUseCase{txRunner: txRunner, userRepo: userRepo, taxRatePct: taxRatePct}
}

// BulkDiscountItem una línea del lote. UnitCost nil usa product.Price.
type BulkDiscountItem struct {
	ProductID string
	Quantity  int64
	Reason    string
	UnitCost  *decimal.Decimal
}

// ApplyDiscounts aplica el lote. El actor se valida una sola vez para todo el
// lote. Cada ítem verifica precondiciones y stock de forma independiente: una
// falla de negocio se anexa a Failed y el lote continúa con el siguiente ítem.
//
// Las fallas de negocio nunca escriben, así que no pueden envenenar la
// transacción compartida. Un error de infraestructura revierte el lote entero
// y la llamada devuelve (nil, error): jamás se reporta un ítem como confirmado
// que luego resulte revertido.
func (uc *BulkDiscountUseCase) ApplyDiscounts(ctx context.Context, items []BulkDiscountItem, actorID string) (*BulkOutcome, error) {
	out := &BulkOutcome{
		Successful: []MovementOutcome{},
		Failed:     []MovementOutcome{},
	}

	ok, err := uc.userRepo.Exists(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("verificar actor: %w", err)
	}
	if !ok {
		// Actor inexistente: todo el lote falla como valor, sin abrir transacción.
		for _, it := range items {
			out.Failed = append(out.Failed, failedOutcome(it.ProductID, FailureActorNotFound, "usuario no encontrado"))
		}
		uc.tally(out, len(items))
		return out, nil
	}

	err = uc.txRunner.Run(ctx, func(
		kardexRepo repository.KardexRepository,
		productRepo repository.ProductRepository,
	) error {
		now := time.Now()
		for _, it := range items {
			if it.Quantity <= 0 {
				out.Failed = append(out.Failed, failedOutcome(it.ProductID, FailureInvalidQuantity, "la cantidad debe ser mayor que cero"))
				continue
			}
			res, err := applyMovement(ctx, kardexRepo, productRepo, movementParams{
				productID: it.ProductID,
				delta:     -it.Quantity,
				movType:   entity.MovementTypeSALE,
				userID:    actorID,
				reason:    it.Reason,
				unitCost:  it.UnitCost,
			}, uc.taxRatePct, now)
			if err != nil {
				// Infraestructura: aborta y revierte el lote completo.
				return err
			}
			if res.Success {
				out.Successful = append(out.Successful, res)
			} else {
				out.Failed = append(out.Failed, res)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.tally(out, len(items))
	return out, nil
}

func (uc *BulkDiscountUseCase) tally(out *BulkOutcome, processed int) {
	out.TotalProcessed = processed
	out.TotalSuccessful = len(out.Successful)
	out.TotalFailed = len(out.Failed)
}
