package repository

import (
	"context"

	"github.com/tu-usuario/kardex-core/internal/domain/entity"
)

// ProductRepository define el puerto hacia el catálogo (colaborador externo).
// Este núcleo solo lee productos y escribe exclusivamente la columna stock.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs trae varios productos en un solo viaje (join en memoria en los
	// lectores batch; evita N consultas individuales).
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT ... FOR UPDATE) durante
	// la transacción del movimiento; evita lost-updates entre llamadas concurrentes.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// UpdateStock escribe el nuevo stock. Única mutación permitida sobre Product.
	UpdateStock(ctx context.Context, id string, stock int64) error
}
