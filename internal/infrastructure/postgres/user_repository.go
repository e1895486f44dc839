package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo puerto hacia la identidad sobre PostgreSQL. El núcleo de kardex
// solo verifica existencia del actor; el resto del usuario es externo.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Exists verifica que el usuario exista.
func (r *UserRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}
