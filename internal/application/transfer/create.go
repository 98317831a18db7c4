package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	domaintransfer "github.com/jhoicas/traslados-api/internal/domain/transfer"
)

// Create crea un traslado en DRAFT. Valida la ruta (origen ≠ destino, ambas
// bodegas existen y son de la empresa), resuelve SKU y nombre de producto para
// denormalizar en las líneas, y fija TotalQuantity como la suma de las líneas
// (nunca se vuelve a mutar).
func (uc *TransferUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if in.SourceWarehouseID == in.DestinationWarehouseID {
		return nil, domain.ErrSameWarehouseRoute
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyTransfer
	}

	for _, whID := range []string{in.SourceWarehouseID, in.DestinationWarehouseID} {
		wh, err := uc.warehouseRepo.GetByID(whID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, domain.ErrNotFound
		}
		if wh.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
	}

	now := time.Now()
	transferDate := now
	if in.TransferDate != nil {
		transferDate = *in.TransferDate
	}

	transferID := uuid.New().String()
	total := decimal.Zero
	items := make([]entity.TransferItem, 0, len(in.Items))
	for _, line := range in.Items {
		if !line.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		if product.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		items = append(items, entity.TransferItem{
			ID:          uuid.New().String(),
			TransferID:  transferID,
			ProductID:   product.ID,
			SKU:         product.SKU,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			CreatedAt:   now,
		})
		total = total.Add(line.Quantity)
	}

	number, err := uc.transferRepo.NextTransferNumber(ctx, companyID)
	if err != nil {
		return nil, err
	}

	t := &entity.Transfer{
		ID:                     transferID,
		CompanyID:              companyID,
		TransferNumber:         number,
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Status:                 string(domaintransfer.StatusDraft),
		TotalQuantity:          total,
		Notes:                  in.Notes,
		TransferDate:           transferDate,
		CreatedBy:              userID,
		CreatedAt:              now,
		UpdatedAt:              now,
		Items:                  items,
	}
	if err := uc.transferRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return toTransferResponse(t, true), nil
}
