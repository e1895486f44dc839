package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/kardex-core/internal/domain/entity"
)

// KardexFilters filtros del listado del libro de movimientos.
// Search busca texto libre únicamente sobre el campo reason.
type KardexFilters struct {
	ProductID      string
	UserID         string
	MovementType   string
	From           *time.Time
	To             *time.Time
	Search         string
	ExcludeDeleted bool // por defecto se incluyen filas soft-deleted (compatibilidad hacia adelante)
}

// KardexSort orden del listado. Campos permitidos: created_at, total, quantity.
// Por defecto: created_at descendente (más reciente primero).
type KardexSort struct {
	Field string
	Asc   bool
}

// Page paginación límite/desplazamiento.
type Page struct {
	Limit  int
	Offset int
}

// KardexPage página de resultados del libro.
// MatchedCount cuenta tras aplicar filtros; TotalCount es el universo sin filtrar.
type KardexPage struct {
	Entries      []*entity.KardexEntry
	MatchedCount int64
	TotalCount   int64
}

// KardexRepository define el puerto de persistencia append-only del kardex.
// Las filas jamás se actualizan ni se borran; solo se insertan.
type KardexRepository interface {
	Append(ctx context.Context, entry *entity.KardexEntry) error
	// AppendMany inserta un lote de filas (flujos multi-línea, ej. una venta)
	// por la misma ruta de escritura que preserva invariantes.
	AppendMany(ctx context.Context, entries []*entity.KardexEntry) error
	Page(ctx context.Context, f KardexFilters, s KardexSort, p Page) (*KardexPage, error)
	// LatestPerProduct proyección "estado actual por producto": la fila más
	// reciente de cada producto, con filtros/búsqueda/orden/paginación
	// resueltos en la base de datos.
	LatestPerProduct(ctx context.Context, f KardexFilters, s KardexSort, p Page) (*KardexPage, error)
	// ListByProduct devuelve la cadena completa de un producto en orden de
	// creación ascendente (replay de la cadena stockBefore -> stockAfter).
	ListByProduct(ctx context.Context, productID string) ([]*entity.KardexEntry, error)
}
