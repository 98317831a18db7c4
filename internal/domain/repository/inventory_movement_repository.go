package repository

import (
	"time"

	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para el kardex.
type InventoryMovementRepository interface {
	Create(movement *entity.InventoryMovement) error
	GetByID(id string) (*entity.InventoryMovement, error)
	ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByReference(referenceID string) ([]*entity.InventoryMovement, error)
}
