package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	domaintransfer "github.com/jhoicas/traslados-api/internal/domain/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// Receive recibe el traslado en la bodega destino (IN_TRANSIT → RECEIVED) y
// concilia las cantidades. Todo corre dentro de una transacción: el CAS del
// estado, las cantidades recibidas por línea y la aplicación al ledger de
// inventario destino (asiento IN por línea + upsert de stock bajo FOR UPDATE).
// Si cualquier paso falla se revierte todo, incluido el cambio de estado.
//
// in.Items vacío significa recepción completa. Un faltante (recibido menor al
// despachado) no desvía la máquina de estados: el traslado queda RECEIVED y el
// faltante viaja como información en la respuesta.
func (uc *TransferUseCase) Receive(ctx context.Context, companyID, userID, id string, in dto.ReceiveTransferRequest) (*dto.TransferResponse, error) {
	receipt := make([]domaintransfer.ReceiptLine, 0, len(in.Items))
	for _, line := range in.Items {
		receipt = append(receipt, domaintransfer.ReceiptLine{
			ItemID:           line.StockItemID,
			ReceivedQuantity: line.ReceivedQuantity,
		})
	}

	var result *entity.Transfer
	err := uc.txRunner.Run(ctx, func(
		transferRepo repository.TransferRepository,
		stockRepo repository.StockRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		t, err := transferRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.CompanyID != companyID {
			return domain.ErrForbidden
		}

		current, err := domaintransfer.ParseStatus(t.Status)
		if err != nil {
			return fmt.Errorf("traslado %s: %w", id, err)
		}
		next, err := domaintransfer.Next(current, domaintransfer.OpReceive)
		if err != nil {
			return err
		}

		// Conciliación pura: valida rangos y clasifica antes de tocar nada.
		reconciliation, err := domaintransfer.Reconcile(t.Items, receipt)
		if err != nil {
			return err
		}

		ok, err := transferRepo.UpdateStatus(ctx, id, string(current), string(next))
		if err != nil {
			return err
		}
		if !ok {
			fresh, err := transferRepo.GetByID(ctx, id)
			if err != nil || fresh == nil {
				return &domaintransfer.InvalidTransitionError{Op: domaintransfer.OpReceive, Current: current}
			}
			return &domaintransfer.InvalidTransitionError{Op: domaintransfer.OpReceive, Current: domaintransfer.Status(fresh.Status)}
		}

		quantities := make([]repository.ReceivedQuantity, 0, len(reconciliation.Lines))
		for _, line := range reconciliation.Lines {
			quantities = append(quantities, repository.ReceivedQuantity{
				ItemID:   line.ItemID,
				Quantity: line.Received,
			})
		}
		if err := transferRepo.SaveReceivedQuantities(ctx, id, quantities); err != nil {
			return err
		}

		// Ledger destino: un asiento IN por línea, por lo efectivamente recibido.
		now := time.Now()
		for _, line := range reconciliation.Lines {
			if line.Received.IsZero() {
				continue
			}
			if err := movRepo.Create(&entity.InventoryMovement{
				ID:          uuid.New().String(),
				ReferenceID: t.ID,
				ProductID:   line.ProductID,
				WarehouseID: t.DestinationWarehouseID,
				Type:        entity.MovementTypeIN,
				Quantity:    line.Received,
				Date:        now,
				CreatedAt:   now,
				CreatedBy:   userID,
			}); err != nil {
				return err
			}
			stock, err := stockRepo.GetForUpdate(line.ProductID, t.DestinationWarehouseID)
			if err != nil {
				return err
			}
			stock.Quantity = stock.Quantity.Add(line.Received)
			stock.UpdatedAt = now
			if err := stockRepo.Upsert(stock); err != nil {
				return err
			}
		}

		t.Status = string(next)
		for i := range t.Items {
			received := reconciliation.Lines[i].Received
			t.Items[i].ReceivedQuantity = &received
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toTransferResponse(result, true), nil
}
