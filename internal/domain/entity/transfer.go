package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer representa un traslado de inventario entre dos bodegas de la misma
// empresa. TotalQuantity es la suma de las líneas al momento de crear y no se
// vuelve a mutar (queda como registro de auditoría incluso si se cancela).
type Transfer struct {
	ID                     string
	CompanyID              string
	TransferNumber         string // consecutivo legible (ej. TRS-000123), inmutable
	SourceWarehouseID      string
	DestinationWarehouseID string
	Status                 string // ver transfer.Status
	TotalQuantity          decimal.Decimal
	Notes                  string
	TransferDate           time.Time
	CreatedBy              string // UserID
	CreatedAt              time.Time
	UpdatedAt              time.Time
	Items                  []TransferItem
}

// TransferItem es una línea del traslado: producto + cantidad despachada.
// Quantity queda inmutable cuando el traslado sale de DRAFT.
// ReceivedQuantity solo se llena en la recepción; invariante 0 <= recibido <= despachado.
type TransferItem struct {
	ID               string
	TransferID       string
	ProductID        string
	SKU              string // denormalizado para listados
	ProductName      string // denormalizado para listados
	Quantity         decimal.Decimal
	ReceivedQuantity *decimal.Decimal // nil hasta la recepción
	CreatedAt        time.Time
}
