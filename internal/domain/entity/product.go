package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario (multi-bodega).
// El stock se maneja por bodega en la tabla stock; aquí solo datos maestros.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	Description string
	UnitMeasure string
	Cost        decimal.Decimal // costo promedio ponderado (inicia en 0)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
