package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"         // entrada
	MovementTypeOUT        = "OUT"        // salida
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste
	MovementTypeTRANSFER   = "TRANSFER"   // traslado entre bodegas
)

// InventoryMovement representa un asiento del kardex de inventario.
// La recepción de un traslado genera un IN en la bodega destino por cada línea
// (por lo efectivamente recibido), referenciando el traslado en ReferenceID.
type InventoryMovement struct {
	ID          string
	ReferenceID string // ID del documento origen (traslado, ajuste, etc.)
	ProductID   string
	WarehouseID string
	Type        string
	Quantity    decimal.Decimal // positivo entrada, negativo salida
	Date        time.Time
	CreatedAt   time.Time
	CreatedBy   string
}
