package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Las fallas de negocio esperadas del motor de movimientos (cantidad inválida,
// stock insuficiente, producto/usuario inexistente) viajan como resultados
// (kardex.MovementOutcome); estos sentinelas quedan para los flujos que no
// producen outcome y para la traducción HTTP.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
)
