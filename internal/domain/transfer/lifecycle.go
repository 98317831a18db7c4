package transfer

import "fmt"

// Operation es una acción nombrada sobre un traslado. Cada operación tiene un
// único estado predecesor legal (salvo Cancel, que admite tres).
type Operation string

const (
	OpSubmit  Operation = "submit"
	OpApprove Operation = "approve"
	OpShip    Operation = "ship"
	OpReceive Operation = "receive"
	OpCancel  Operation = "cancel"
)

// InvalidTransitionError indica que la operación no es legal desde el estado
// actual. Incluye ambos para que el operador entienda qué pasó (también cubre
// el caso de escritura perdida por concurrencia: el estado leído quedó stale).
type InvalidTransitionError struct {
	Op      Operation
	Current Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición %s no permitida desde el estado %s", e.Op, e.Current)
}

// Next devuelve el estado sucesor de aplicar op sobre current, o
// *InvalidTransitionError si la operación no es legal desde ahí.
//
//	DRAFT --submit--> PENDING_APPROVAL --approve--> APPROVED --ship--> IN_TRANSIT --receive--> RECEIVED
//	  \--cancel--> CANCELLED (desde DRAFT, PENDING_APPROVAL o APPROVED)
//
// Ninguna operación es idempotente entre estados: approve sobre un traslado ya
// APPROVED falla en vez de ser no-op. Cancel no es legal desde IN_TRANSIT: la
// mercancía ya salió de la bodega origen y no se puede "des-despachar".
func Next(current Status, op Operation) (Status, error) {
	switch op {
	case OpSubmit:
		if current == StatusDraft {
			return StatusPendingApproval, nil
		}
	case OpApprove:
		if current == StatusPendingApproval {
			return StatusApproved, nil
		}
	case OpShip:
		if current == StatusApproved {
			return StatusInTransit, nil
		}
	case OpReceive:
		if current == StatusInTransit {
			return StatusReceived, nil
		}
	case OpCancel:
		switch current {
		case StatusDraft, StatusPendingApproval, StatusApproved:
			return StatusCancelled, nil
		}
	}
	return "", &InvalidTransitionError{Op: op, Current: current}
}

// CanCancel indica si un traslado en el estado dado aún se puede cancelar.
func CanCancel(current Status) bool {
	_, err := Next(current, OpCancel)
	return err == nil
}

// ItemsLocked indica si las líneas del traslado ya son inmutables (a partir de
// submit las cantidades despachadas quedan congeladas).
func ItemsLocked(current Status) bool {
	return current != StatusDraft
}
