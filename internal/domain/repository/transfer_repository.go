package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// TransferFilter filtros para listar traslados.
type TransferFilter struct {
	Status      string // vacío = todos
	WarehouseID string // origen o destino; vacío = todas
}

// ReceivedQuantity cantidad recibida a persistir para una línea.
type ReceivedQuantity struct {
	ItemID   string
	Quantity decimal.Decimal
}

// TransferRepository define el puerto de persistencia para traslados.
// UpdateStatus es la pieza de concurrencia optimista: la escritura del nuevo
// estado está condicionada a que el estado leído no haya cambiado (CAS sobre
// la columna status). Devuelve false si otro operador ganó la carrera.
type TransferRepository interface {
	// Create persiste cabecera y líneas en una sola transacción.
	Create(ctx context.Context, transfer *entity.Transfer) error
	// GetByID devuelve el traslado con sus líneas, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	// ListByCompany lista con filtro y paginación; total es el conteo sin paginar.
	ListByCompany(ctx context.Context, companyID string, filter TransferFilter, limit, offset int) (items []*entity.Transfer, total int, err error)
	// NextTransferNumber consume el consecutivo de la empresa (ej. TRS-000042).
	NextTransferNumber(ctx context.Context, companyID string) (string, error)
	// UpdateStatus cambia status de from a to solo si sigue en from.
	UpdateStatus(ctx context.Context, id string, from, to string) (bool, error)
	// SaveReceivedQuantities persiste el recibido por línea (dentro de la tx de recepción).
	SaveReceivedQuantities(ctx context.Context, transferID string, quantities []ReceivedQuantity) error
}
