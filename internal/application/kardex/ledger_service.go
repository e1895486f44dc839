package kardex

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

// LedgerListInput parámetros crudos de un listado del libro, tal como llegan
// del borde (query params). El servicio los valida y normaliza.
type LedgerListInput struct {
	ProductID    string
	UserID       string
	MovementType string
	From         string // RFC3339, opcional
	To           string // RFC3339, opcional
	Search       string
	// ExcludeDeleted omite filas soft-deleted; por defecto se incluyen
	// (este núcleo nunca marca deleted_at, el flag es compatibilidad).
	ExcludeDeleted bool
	SortBy         string // created_at | total | quantity
	SortDir        string // asc | desc
	Limit          int
	Offset         int
}

// LedgerQueryService consultas de solo lectura sobre el libro kardex.
type LedgerQueryService struct {
	kardexRepo repository.KardexRepository
}

// NewLedgerQueryService construye el servicio de consulta del libro.
func NewLedgerQueryService(kardexRepo repository.KardexRepository) *LedgerQueryService {
	return &LedgerQueryService{kardexRepo: kardexRepo}
}

// Page devuelve una página del libro según los filtros dados.
func (s *LedgerQueryService) Page(ctx context.Context, in LedgerListInput) (*repository.KardexPage, error) {
	f, sort, page, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	return s.kardexRepo.Page(ctx, f, sort, page)
}

// LatestPerProduct devuelve el asiento más reciente de cada producto,
// filtrado y paginado en la base.
func (s *LedgerQueryService) LatestPerProduct(ctx context.Context, in LedgerListInput) (*repository.KardexPage, error) {
	f, sort, page, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	return s.kardexRepo.LatestPerProduct(ctx, f, sort, page)
}

// History devuelve la cadena completa de un producto en orden ascendente.
func (s *LedgerQueryService) History(ctx context.Context, productID string) ([]*entity.KardexEntry, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	return s.kardexRepo.ListByProduct(ctx, productID)
}

func (s *LedgerQueryService) normalize(in LedgerListInput) (repository.KardexFilters, repository.KardexSort, repository.Page, error) {
	var zero repository.KardexFilters

	f := repository.KardexFilters{
		ProductID:      in.ProductID,
		UserID:         in.UserID,
		Search:         in.Search,
		ExcludeDeleted: in.ExcludeDeleted,
	}

	switch in.MovementType {
	case "", entity.MovementTypeSALE, entity.MovementTypePURCHASE, entity.MovementTypeADJUSTMENT:
		f.MovementType = in.MovementType
	default:
		return zero, repository.KardexSort{}, repository.Page{}, fmt.Errorf("%w: movement_type desconocido: %s", domain.ErrInvalidInput, in.MovementType)
	}

	if in.From != "" {
		t, err := time.Parse(time.RFC3339, in.From)
		if err != nil {
			return zero, repository.KardexSort{}, repository.Page{}, fmt.Errorf("%w: from debe ser RFC3339", domain.ErrInvalidInput)
		}
		f.From = &t
	}
	if in.To != "" {
		t, err := time.Parse(time.RFC3339, in.To)
		if err != nil {
			return zero, repository.KardexSort{}, repository.Page{}, fmt.Errorf("%w: to debe ser RFC3339", domain.ErrInvalidInput)
		}
		f.To = &t
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return zero, repository.KardexSort{}, repository.Page{}, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}

	sort := repository.KardexSort{Field: in.SortBy, Asc: in.SortDir == "asc"}

	limit := in.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	return f, sort, repository.Page{Limit: limit, Offset: offset}, nil
}
