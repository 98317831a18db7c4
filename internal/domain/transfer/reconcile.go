package transfer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// Classification resultado por línea de la conciliación de recepción.
type Classification string

const (
	ClassificationFull  Classification = "FULL"
	ClassificationShort Classification = "SHORT"
)

// Classify es función pura de las dos cantidades: FULL si se recibió todo lo
// despachado, SHORT en cualquier otro caso válido. No depende de ningún estado.
func Classify(received, dispatched decimal.Decimal) Classification {
	if received.Equal(dispatched) {
		return ClassificationFull
	}
	return ClassificationShort
}

// ReceiptLine cantidad recibida reportada para una línea del traslado.
type ReceiptLine struct {
	ItemID           string
	ReceivedQuantity decimal.Decimal
}

// ReceiptQuantityError indica una cantidad recibida fuera del rango
// [0, despachado]. Negativo es un error de datos; mayor al despachado sería un
// sobre-recibo, que este modelo no soporta. En ambos casos se rechaza la
// recepción completa, sin aplicación parcial entre líneas.
type ReceiptQuantityError struct {
	ItemID     string
	Received   decimal.Decimal
	Dispatched decimal.Decimal
}

func (e *ReceiptQuantityError) Error() string {
	return fmt.Sprintf("cantidad recibida %s inválida para la línea %s: debe estar entre 0 y %s",
		e.Received, e.ItemID, e.Dispatched)
}

// UnknownReceiptItemError indica que el recibo referencia una línea que no
// pertenece al traslado.
type UnknownReceiptItemError struct {
	ItemID string
}

func (e *UnknownReceiptItemError) Error() string {
	return fmt.Sprintf("la línea %s no pertenece al traslado", e.ItemID)
}

// DuplicateReceiptItemError indica que el recibo reporta la misma línea más de
// una vez. La cantidad sería ambigua, así que se rechaza la recepción completa.
type DuplicateReceiptItemError struct {
	ItemID string
}

func (e *DuplicateReceiptItemError) Error() string {
	return fmt.Sprintf("la línea %s está repetida en el recibo", e.ItemID)
}

// LineResult resultado de conciliar una línea.
type LineResult struct {
	ItemID         string
	ProductID      string
	SKU            string
	Dispatched     decimal.Decimal
	Received       decimal.Decimal
	Shortage       decimal.Decimal // Dispatched - Received, >= 0
	Classification Classification
}

// Reconciliation resultado completo de la recepción: una LineResult por línea
// del traslado (en el mismo orden) más los totales.
type Reconciliation struct {
	Lines           []LineResult
	TotalDispatched decimal.Decimal
	TotalReceived   decimal.Decimal
	TotalShortage   decimal.Decimal
}

// HasShortage indica si alguna línea quedó corta.
func (r *Reconciliation) HasShortage() bool {
	return r.TotalShortage.GreaterThan(decimal.Zero)
}

// Reconcile concilia la recepción de un traslado contra sus líneas. Es una
// función pura: no muta items ni toca persistencia.
//
// Reglas:
//   - receipt vacío o nil: todas las líneas se reciben completas.
//   - Las líneas del traslado no mencionadas en receipt se reciben completas.
//   - Cada cantidad reportada debe cumplir 0 <= recibido <= despachado; si
//     alguna falla, se rechaza todo (ninguna línea se aplica).
//   - Una línea repetida o desconocida en receipt invalida la recepción.
func Reconcile(items []entity.TransferItem, receipt []ReceiptLine) (*Reconciliation, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyTransfer
	}

	reported := make(map[string]decimal.Decimal, len(receipt))
	for _, line := range receipt {
		if _, dup := reported[line.ItemID]; dup {
			return nil, &DuplicateReceiptItemError{ItemID: line.ItemID}
		}
		reported[line.ItemID] = line.ReceivedQuantity
	}

	known := make(map[string]struct{}, len(items))
	for _, it := range items {
		known[it.ID] = struct{}{}
	}
	for id := range reported {
		if _, ok := known[id]; !ok {
			return nil, &UnknownReceiptItemError{ItemID: id}
		}
	}

	result := &Reconciliation{Lines: make([]LineResult, 0, len(items))}
	for _, it := range items {
		received, ok := reported[it.ID]
		if !ok {
			received = it.Quantity // no reportada: recepción completa implícita
		}
		if received.IsNegative() || received.GreaterThan(it.Quantity) {
			return nil, &ReceiptQuantityError{
				ItemID:     it.ID,
				Received:   received,
				Dispatched: it.Quantity,
			}
		}
		result.Lines = append(result.Lines, LineResult{
			ItemID:         it.ID,
			ProductID:      it.ProductID,
			SKU:            it.SKU,
			Dispatched:     it.Quantity,
			Received:       received,
			Shortage:       it.Quantity.Sub(received),
			Classification: Classify(received, it.Quantity),
		})
		result.TotalDispatched = result.TotalDispatched.Add(it.Quantity)
		result.TotalReceived = result.TotalReceived.Add(received)
	}
	result.TotalShortage = result.TotalDispatched.Sub(result.TotalReceived)
	return result, nil
}
