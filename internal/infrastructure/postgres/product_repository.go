package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo puerto hacia el catálogo sobre PostgreSQL (usable con pool o tx).
// Lectura general más la única escritura permitida a este núcleo: stock.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, sku, name, price, tax_rate, stock, created_at, updated_at`

// GetByID obtiene un producto por ID. Devuelve nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := r.scanOne(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByIDs obtiene varios productos en una sola consulta (= ANY).
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.TaxRate, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// GetForUpdate obtiene el producto y bloquea su fila (SELECT FOR UPDATE)
// hasta el fin de la transacción. Dos movimientos concurrentes sobre el mismo
// producto se serializan aquí: el segundo relee el stock ya confirmado.
// Devuelve nil si el producto no existe.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	p, err := r.scanOne(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

// UpdateStock escribe el nuevo stock del producto. Única mutación de Product
// permitida a este núcleo; el resto del catálogo es de su colaborador.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, stock int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`,
		id, stock,
	)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update product stock: producto %s no existe", id)
	}
	return nil
}

func (r *ProductRepo) scanOne(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.TaxRate, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
