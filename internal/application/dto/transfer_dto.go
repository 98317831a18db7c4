package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransferItemRequest línea de un traslado nuevo.
type CreateTransferItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
}

// CreateTransferRequest entrada para crear un traslado (nace en DRAFT).
type CreateTransferRequest struct {
	SourceWarehouseID      string                      `json:"source_warehouse_id" validate:"required,uuid"`
	DestinationWarehouseID string                      `json:"destination_warehouse_id" validate:"required,uuid"`
	TransferDate           *time.Time                  `json:"transfer_date"`
	Notes                  string                      `json:"notes" validate:"max=1000"`
	Items                  []CreateTransferItemRequest `json:"items" validate:"required,min=1"`
}

// ReceiveItemRequest cantidad recibida reportada para una línea.
type ReceiveItemRequest struct {
	StockItemID      string          `json:"stock_item_id" validate:"required,uuid"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// ReceiveTransferRequest entrada para la recepción. Items omitido o vacío
// significa recepción completa de todas las líneas.
type ReceiveTransferRequest struct {
	Items []ReceiveItemRequest `json:"items"`
}

// TransferItemResponse salida de una línea. Classification y Shortage solo se
// llenan cuando la línea ya fue recibida.
type TransferItemResponse struct {
	ID               string           `json:"id"`
	ProductID        string           `json:"product_id"`
	SKU              string           `json:"sku"`
	ProductName      string           `json:"product_name"`
	Quantity         decimal.Decimal  `json:"quantity"`
	ReceivedQuantity *decimal.Decimal `json:"received_quantity,omitempty"`
	Classification   string           `json:"classification,omitempty"` // FULL | SHORT
	Shortage         *decimal.Decimal `json:"shortage,omitempty"`
}

// TransferResponse salida de un traslado. Cada transición devuelve el estado
// autoritativo nuevo en este mismo cuerpo; el cliente no necesita re-consultar.
type TransferResponse struct {
	ID                     string                 `json:"id"`
	CompanyID              string                 `json:"company_id"`
	TransferNumber         string                 `json:"transfer_number"`
	SourceWarehouseID      string                 `json:"source_warehouse_id"`
	DestinationWarehouseID string                 `json:"destination_warehouse_id"`
	Status                 string                 `json:"status"`
	TotalQuantity          decimal.Decimal        `json:"total_quantity"`
	TotalShortage          *decimal.Decimal       `json:"total_shortage,omitempty"`
	Notes                  string                 `json:"notes,omitempty"`
	TransferDate           time.Time              `json:"transfer_date"`
	CreatedBy              string                 `json:"created_by,omitempty"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
	Items                  []TransferItemResponse `json:"items,omitempty"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
