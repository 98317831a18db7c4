package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// Traslados entre bodegas.
	ErrSameWarehouseRoute = errors.New("bodega origen y destino deben ser distintas")
	ErrTransferLocked     = errors.New("las líneas del traslado no se pueden modificar después de enviarse a aprobación")
	ErrEmptyTransfer      = errors.New("el traslado debe tener al menos una línea")
)
