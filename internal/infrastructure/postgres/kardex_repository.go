package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

var _ repository.KardexRepository = (*KardexRepo)(nil)

// KardexRepo persistencia append-only del libro de movimientos sobre
// PostgreSQL (usable con pool o tx). Las filas jamás se actualizan ni se
// borran desde este núcleo.
type KardexRepo struct {
	q Querier
}

// NewKardexRepository construye el adaptador. Pasar pool o tx (Querier).
func NewKardexRepository(q Querier) *KardexRepo {
	return &KardexRepo{q: q}
}

const kardexColumns = `id, product_id, user_id, movement_type, quantity, unit_cost, subtotal, tax_rate, tax_amount, total, stock_before, stock_after, reason, created_at, deleted_at`

const kardexInsert = `
	INSERT INTO kardex_entries (` + kardexColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

// Append persiste un asiento del kardex.
func (r *KardexRepo) Append(ctx context.Context, e *entity.KardexEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, kardexInsert, insertArgs(e)...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("append kardex entry: %w", err)
	}
	return nil
}

// AppendMany inserta un lote de asientos en un solo round-trip (pgx.Batch).
// Usado por flujos multi-línea (ej. una venta con varios renglones) que
// pasan por la misma ruta de escritura del libro.
func (r *KardexRepo) AppendMany(ctx context.Context, entries []*entity.KardexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		batch.Queue(kardexInsert, insertArgs(e)...)
	}
	results := r.q.SendBatch(ctx, batch)
	defer results.Close()
	for range entries {
		if _, err := results.Exec(); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return fmt.Errorf("append kardex entries: %w", err)
		}
	}
	return results.Close()
}

func insertArgs(e *entity.KardexEntry) []any {
	return []any{
		e.ID, e.ProductID, e.UserID, e.MovementType, e.Quantity,
		e.UnitCost, e.Subtotal, e.TaxRate, e.TaxAmount, e.Total,
		e.StockBefore, e.StockAfter, e.Reason, e.CreatedAt, e.DeletedAt,
	}
}

// Page devuelve una página del libro: filas filtradas y ordenadas, el conteo
// tras filtros (MatchedCount) y el universo sin filtrar (TotalCount).
// Orden por defecto: más reciente primero. Search busca solo sobre reason.
func (r *KardexRepo) Page(ctx context.Context, f repository.KardexFilters, s repository.KardexSort, p repository.Page) (*repository.KardexPage, error) {
	where, args := buildKardexWhere(f)

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM kardex_entries`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count kardex entries: %w", err)
	}

	var matched int64
	countQuery := `SELECT count(*) FROM kardex_entries` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&matched); err != nil {
		return nil, fmt.Errorf("count matched kardex entries: %w", err)
	}

	query := `SELECT ` + kardexColumns + ` FROM kardex_entries` + where +
		orderClause(s) + limitClause(len(args))
	args = append(args, pageArgs(p)...)

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &repository.KardexPage{Entries: entries, MatchedCount: matched, TotalCount: total}, nil
}

// LatestPerProduct proyección "fila más reciente por producto", resuelta en
// la base con DISTINCT ON: nunca carga el libro completo en memoria. Los
// filtros, la búsqueda, el orden y la paginación se aplican sobre la
// proyección, también en SQL.
func (r *KardexRepo) LatestPerProduct(ctx context.Context, f repository.KardexFilters, s repository.KardexSort, p repository.Page) (*repository.KardexPage, error) {
	const latest = `
		SELECT DISTINCT ON (product_id) ` + kardexColumns + `
		FROM kardex_entries
		ORDER BY product_id, created_at DESC`

	where, args := buildKardexWhere(f)

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(DISTINCT product_id) FROM kardex_entries`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count kardex products: %w", err)
	}

	var matched int64
	countQuery := `SELECT count(*) FROM (` + latest + `) k` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&matched); err != nil {
		return nil, fmt.Errorf("count latest per product: %w", err)
	}

	query := `SELECT ` + kardexColumns + ` FROM (` + latest + `) k` + where +
		orderClause(s) + limitClause(len(args))
	args = append(args, pageArgs(p)...)

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &repository.KardexPage{Entries: entries, MatchedCount: matched, TotalCount: total}, nil
}

// ListByProduct devuelve la cadena completa de un producto en orden de
// creación ascendente (replay stockBefore -> stockAfter).
func (r *KardexRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.KardexEntry, error) {
	query := `SELECT ` + kardexColumns + ` FROM kardex_entries WHERE product_id = $1 ORDER BY created_at ASC`
	return r.queryEntries(ctx, query, productID)
}

// buildKardexWhere arma el WHERE dinámico con placeholders posicionales.
func buildKardexWhere(f repository.KardexFilters) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.MovementType != "" {
		add("movement_type = $%d", f.MovementType)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	if f.Search != "" {
		// la búsqueda libre aplica únicamente sobre reason
		add("reason ILIKE $%d", "%"+f.Search+"%")
	}
	if f.ExcludeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// kardexSortColumns campos de orden permitidos (lista blanca; nada de
// interpolar input del caller en el ORDER BY).
var kardexSortColumns = map[string]string{
	"created_at": "created_at",
	"total":      "total",
	"quantity":   "quantity",
}

func orderClause(s repository.KardexSort) string {
	col, ok := kardexSortColumns[s.Field]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if s.Asc {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}

func limitClause(argOffset int) string {
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", argOffset+1, argOffset+2)
}

func pageArgs(p repository.Page) []any {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return []any{limit, offset}
}

func (r *KardexRepo) queryEntries(ctx context.Context, query string, args ...any) ([]*entity.KardexEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query kardex entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.KardexEntry
	for rows.Next() {
		var e entity.KardexEntry
		if err := rows.Scan(
			&e.ID, &e.ProductID, &e.UserID, &e.MovementType, &e.Quantity,
			&e.UnitCost, &e.Subtotal, &e.TaxRate, &e.TaxAmount, &e.Total,
			&e.StockBefore, &e.StockAfter, &e.Reason, &e.CreatedAt, &e.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan kardex entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
