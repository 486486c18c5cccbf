package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"
	RoleUser     = "USER"
)

// IsValidRole indica si r es un rol conocido.
func IsValidRole(r string) bool {
	return r == RoleAdmin || r == RoleOperator || r == RoleUser
}

// User representa un usuario del panel de la tienda.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // ADMIN, OPERATOR, USER
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
