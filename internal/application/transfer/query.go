package transfer

import (
	"context"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	domaintransfer "github.com/jhoicas/traslados-api/internal/domain/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// GetByID devuelve el traslado con líneas, o nil si no existe.
func (uc *TransferUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.TransferResponse, error) {
	t, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	if t.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toTransferResponse(t, true), nil
}

// List lista traslados de la empresa con filtro por estado y paginación.
// Devuelve solo cabeceras (sin líneas).
func (uc *TransferUseCase) List(ctx context.Context, companyID, status string, limit, offset int) (*dto.TransferListResponse, error) {
	filter := repository.TransferFilter{}
	if status != "" {
		parsed, err := domaintransfer.ParseStatus(status)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		filter.Status = string(parsed)
	}
	list, total, err := uc.transferRepo.ListByCompany(ctx, companyID, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransferResponse(t, false))
	}
	return &dto.TransferListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}
