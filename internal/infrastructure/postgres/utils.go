package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Código de error de PostgreSQL para unique_violation.
const pgUniqueViolation = "23505"

// isUniqueViolation verifica si un error corresponde a una violación de
// constraint único (SKU por empresa, email de usuario).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
