package entity

import "time"

// User es el actor que origina un movimiento. La identidad (credenciales,
// sesión) vive en un colaborador externo; aquí solo se verifica existencia.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
