package entity

import "time"

// Roles válidos para User. El rol aprobador es quien autoriza traslados.
const (
	RoleAdmin     = "admin"
	RoleAprobador = "aprobador"
	RoleBodeguero = "bodeguero"
)

// User representa un usuario del sistema (pertenece a una Company).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, aprobador, bodeguero
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
