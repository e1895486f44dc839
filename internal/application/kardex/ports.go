package kardex

import (
	"context"

	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la escritura de stock y el
// asiento del kardex sean una sola unidad atómica (ambos o ninguno).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		kardexRepo repository.KardexRepository,
		productRepo repository.ProductRepository,
	) error) error
}
