package transfer

import (
	"context"

	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la recepción sea todo-o-nada:
// el cambio de estado, las cantidades recibidas y los asientos del kardex se
// confirman juntos o se revierten juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		transferRepo repository.TransferRepository,
		stockRepo repository.StockRepository,
		movRepo repository.InventoryMovementRepository,
	) error) error
}
