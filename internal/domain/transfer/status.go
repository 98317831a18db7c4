// Package transfer contiene el servicio de dominio del ciclo de vida de un
// traslado entre bodegas: la máquina de estados y la conciliación de la
// recepción parcial. No tiene dependencias de infraestructura.
package transfer

import "fmt"

// Status es el estado del ciclo de vida de un traslado (enum cerrado).
// Cualquier valor fuera de estas seis constantes es inválido.
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusInTransit       Status = "IN_TRANSIT"
	StatusReceived        Status = "RECEIVED"
	StatusCancelled       Status = "CANCELLED"
)

// ParseStatus valida un string contra el enum. Útil al leer de DB o de filtros HTTP.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusPendingApproval, StatusApproved,
		StatusInTransit, StatusReceived, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("estado de traslado desconocido: %q", s)
}

// Terminal indica si el estado no admite más transiciones.
func (s Status) Terminal() bool {
	return s == StatusReceived || s == StatusCancelled
}

// String implementa fmt.Stringer.
func (s Status) String() string { return string(s) }
