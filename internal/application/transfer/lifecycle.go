package transfer

import (
	"context"
	"fmt"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	domaintransfer "github.com/jhoicas/traslados-api/internal/domain/transfer"
)

// Submit envía el traslado a aprobación (DRAFT → PENDING_APPROVAL). A partir
// de aquí las líneas quedan inmutables.
func (uc *TransferUseCase) Submit(ctx context.Context, companyID, id string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, companyID, id, domaintransfer.OpSubmit)
}

// Approve aprueba el traslado (PENDING_APPROVAL → APPROVED). Requiere que el
// llamador tenga capacidad de aprobación; la ruta ya lo exige vía RBAC y aquí
// se vuelve a verificar para no depender solo del middleware.
func (uc *TransferUseCase) Approve(ctx context.Context, companyID, callerRole, id string) (*dto.TransferResponse, error) {
	if callerRole != entity.RoleAdmin && callerRole != entity.RoleAprobador {
		return nil, domain.ErrForbidden
	}
	return uc.transition(ctx, companyID, id, domaintransfer.OpApprove)
}

// Ship despacha el traslado (APPROVED → IN_TRANSIT). Marca que la mercancía
// salió de la bodega origen; no muta cantidades (quedaron fijas al crear).
func (uc *TransferUseCase) Ship(ctx context.Context, companyID, id string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, companyID, id, domaintransfer.OpShip)
}

// Cancel cancela el traslado. Solo legal desde DRAFT, PENDING_APPROVAL o
// APPROVED; con mercancía en tránsito ya no hay cancelación. CANCELLED es
// terminal y el registro se conserva para auditoría (no hay borrado físico).
func (uc *TransferUseCase) Cancel(ctx context.Context, companyID, id string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, companyID, id, domaintransfer.OpCancel)
}

// transition aplica una operación de estado con concurrencia optimista: lee el
// estado actual, calcula el sucesor con la tabla de transiciones del dominio y
// escribe condicionado a que el estado no haya cambiado (CAS sobre status).
// El escritor que pierde la carrera recibe InvalidTransitionError con el
// estado real; debe refrescar y reintentar o abortar. Nunca se reintenta solo.
func (uc *TransferUseCase) transition(ctx context.Context, companyID, id string, op domaintransfer.Operation) (*dto.TransferResponse, error) {
	t, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if t.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	current, err := domaintransfer.ParseStatus(t.Status)
	if err != nil {
		return nil, fmt.Errorf("traslado %s: %w", id, err)
	}
	next, err := domaintransfer.Next(current, op)
	if err != nil {
		return nil, err
	}

	ok, err := uc.transferRepo.UpdateStatus(ctx, id, string(current), string(next))
	if err != nil {
		return nil, err
	}
	if !ok {
		// Otro operador transicionó primero: el estado leído quedó stale.
		fresh, err := uc.transferRepo.GetByID(ctx, id)
		if err != nil || fresh == nil {
			return nil, &domaintransfer.InvalidTransitionError{Op: op, Current: current}
		}
		return nil, &domaintransfer.InvalidTransitionError{Op: op, Current: domaintransfer.Status(fresh.Status)}
	}

	t.Status = string(next)
	return toTransferResponse(t, true), nil
}
