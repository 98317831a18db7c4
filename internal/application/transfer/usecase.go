package transfer

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	domaintransfer "github.com/jhoicas/traslados-api/internal/domain/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// TransferUseCase casos de uso del ciclo de vida de traslados entre bodegas:
// creación, transiciones de estado y recepción con conciliación.
type TransferUseCase struct {
	transferRepo  repository.TransferRepository
	warehouseRepo repository.WarehouseRepository
	productRepo   repository.ProductRepository
	txRunner      TxRunner
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	transferRepo repository.TransferRepository,
	warehouseRepo repository.WarehouseRepository,
	productRepo repository.ProductRepository,
	txRunner TxRunner,
) *TransferUseCase {
	return &TransferUseCase{
		transferRepo:  transferRepo,
		warehouseRepo: warehouseRepo,
		productRepo:   productRepo,
		txRunner:      txRunner,
	}
}

// toTransferResponse mapea la entidad al DTO. Para líneas ya recibidas calcula
// clasificación y faltante (función pura de las dos cantidades, no se almacena).
func toTransferResponse(t *entity.Transfer, withItems bool) *dto.TransferResponse {
	resp := &dto.TransferResponse{
		ID:                     t.ID,
		CompanyID:              t.CompanyID,
		TransferNumber:         t.TransferNumber,
		SourceWarehouseID:      t.SourceWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		Status:                 t.Status,
		TotalQuantity:          t.TotalQuantity,
		Notes:                  t.Notes,
		TransferDate:           t.TransferDate,
		CreatedBy:              t.CreatedBy,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
	}
	if !withItems {
		return resp
	}
	totalShortage := decimal.Zero
	for _, it := range t.Items {
		itemResp := dto.TransferItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			SKU:         it.SKU,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
		}
		if it.ReceivedQuantity != nil {
			rq := *it.ReceivedQuantity
			itemResp.ReceivedQuantity = &rq
			itemResp.Classification = string(domaintransfer.Classify(rq, it.Quantity))
			shortage := it.Quantity.Sub(rq)
			itemResp.Shortage = &shortage
			totalShortage = totalShortage.Add(shortage)
		}
		resp.Items = append(resp.Items, itemResp)
	}
	// El faltante total se informa solo cuando existe; una recepción completa
	// no lleva el campo (omitempty en el DTO).
	if totalShortage.GreaterThan(decimal.Zero) {
		resp.TotalShortage = &totalShortage
	}
	return resp
}
