package repository

import "context"

// UserRepository define el puerto hacia la identidad (colaborador externo).
// El motor de movimientos solo necesita verificar que el actor exista.
type UserRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}
