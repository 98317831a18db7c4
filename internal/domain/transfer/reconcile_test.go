package transfer_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/transfer"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Tres líneas despachadas: 10, 5 y 2.5 unidades.
func testItems() []entity.TransferItem {
	return []entity.TransferItem{
		{ID: "item-1", ProductID: "prod-1", SKU: "SKU-1", Quantity: dec("10")},
		{ID: "item-2", ProductID: "prod-2", SKU: "SKU-2", Quantity: dec("5")},
		{ID: "item-3", ProductID: "prod-3", SKU: "SKU-3", Quantity: dec("2.5")},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Classify: función pura de las dos cantidades
// ──────────────────────────────────────────────────────────────────────────────

func TestClassify(t *testing.T) {
	assert.Equal(t, transfer.ClassificationFull, transfer.Classify(dec("10"), dec("10")))
	assert.Equal(t, transfer.ClassificationFull, transfer.Classify(dec("2.50"), dec("2.5")),
		"la comparación es numérica, no textual")
	assert.Equal(t, transfer.ClassificationShort, transfer.Classify(dec("9"), dec("10")))
	assert.Equal(t, transfer.ClassificationShort, transfer.Classify(dec("0"), dec("10")),
		"recibir cero unidades sigue siendo SHORT, no una categoría aparte")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconcile — recepción completa
// ──────────────────────────────────────────────────────────────────────────────

// Recibo vacío: todas las líneas se reciben completas.
func TestReconcile_ReciboVacioEsRecepcionCompleta(t *testing.T) {
	rec, err := transfer.Reconcile(testItems(), nil)
	require.NoError(t, err)
	require.Len(t, rec.Lines, 3)

	for _, line := range rec.Lines {
		assert.Equal(t, transfer.ClassificationFull, line.Classification)
		assert.True(t, line.Shortage.IsZero())
		assert.True(t, line.Received.Equal(line.Dispatched))
	}
	assert.True(t, rec.TotalDispatched.Equal(dec("17.5")))
	assert.True(t, rec.TotalReceived.Equal(dec("17.5")))
	assert.False(t, rec.HasShortage())
}

// Las líneas no mencionadas en el recibo se asumen recibidas completas.
func TestReconcile_LineasOmitidasSeRecibenCompletas(t *testing.T) {
	rec, err := transfer.Reconcile(testItems(), []transfer.ReceiptLine{
		{ItemID: "item-2", ReceivedQuantity: dec("5")},
	})
	require.NoError(t, err)

	for _, line := range rec.Lines {
		assert.Equal(t, transfer.ClassificationFull, line.Classification, "línea %s", line.ItemID)
	}
	assert.False(t, rec.HasShortage())
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconcile — recepción parcial
// ──────────────────────────────────────────────────────────────────────────────

// Una línea corta: su faltante se registra, las demás quedan FULL, y los
// totales reflejan solo ese faltante.
func TestReconcile_RecepcionParcial(t *testing.T) {
	rec, err := transfer.Reconcile(testItems(), []transfer.ReceiptLine{
		{ItemID: "item-1", ReceivedQuantity: dec("7")},
	})
	require.NoError(t, err)
	require.Len(t, rec.Lines, 3)

	short := rec.Lines[0]
	assert.Equal(t, "item-1", short.ItemID)
	assert.Equal(t, transfer.ClassificationShort, short.Classification)
	assert.True(t, short.Shortage.Equal(dec("3")))

	assert.Equal(t, transfer.ClassificationFull, rec.Lines[1].Classification)
	assert.Equal(t, transfer.ClassificationFull, rec.Lines[2].Classification)

	assert.True(t, rec.HasShortage())
	assert.True(t, rec.TotalShortage.Equal(dec("3")))
	assert.True(t, rec.TotalReceived.Equal(dec("14.5")))
}

// Recibir cero en una línea es válido: SHORT con faltante total de la línea.
func TestReconcile_CeroRecibidoEsValido(t *testing.T) {
	rec, err := transfer.Reconcile(testItems(), []transfer.ReceiptLine{
		{ItemID: "item-2", ReceivedQuantity: decimal.Zero},
	})
	require.NoError(t, err)

	line := rec.Lines[1]
	assert.Equal(t, transfer.ClassificationShort, line.Classification)
	assert.True(t, line.Shortage.Equal(dec("5")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconcile — rechazos (todo o nada)
// ──────────────────────────────────────────────────────────────────────────────

// Una cantidad negativa invalida la recepción completa, incluso si las demás
// líneas del recibo son válidas.
func TestReconcile_CantidadNegativaRechazaTodo(t *testing.T) {
	_, err := transfer.Reconcile(testItems(), []transfer.ReceiptLine{
		{ItemID: "item-1", ReceivedQuantity: dec("10")},
		{ItemID: "item-2", ReceivedQuantity: dec("-1")},
	})
	require.Error(t, err)

	var qty *transfer.ReceiptQuantityError
	require.True(t, errors.As(err, &qty))
	assert.Equal(t, "item-2", qty.ItemID)
	assert.True(t, qty.Dispatched.Equal(dec("5")))
}

// Recibir más de lo despachado no está soportado (no hay sobre-recibo).
func TestReconcile_SobreReciboRechazaTodo(t *testing.T) {
	_, err := transfer.Reconcile(testItems(), []transfer.ReceiptLine{
		{ItemID: "item-3", ReceivedQuantity: dec("2.6")},
	})
	require.Error(t, err)

	var qty *transfer.ReceiptQuantityError
	require.True(t, errors.As(err, &qty))
	assert.Equal(t, "item-3", qty.ItemID)
	assert.True(t, qty.Received.Equal(dec("2.6")))
}

// Una línea que no pertenece al traslado invalida la recepción.
func TestReconcile_LineaDesconocidaRechazaTodo(t *testing.T) {
	_, err := transfer.Reconcile(testItems(), []transfer.ReceiptLine{
		{ItemID: "item-99", ReceivedQuantity: dec("1")},
	})
	require.Error(t, err)

	var unknown *transfer.UnknownReceiptItemError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "item-99", unknown.ItemID)
}

// Una línea repetida en el recibo es ambigua y se rechaza con error tipado.
func TestReconcile_LineaRepetidaRechazaTodo(t *testing.T) {
	_, err := transfer.Reconcile(testItems(), []transfer.ReceiptLine{
		{ItemID: "item-1", ReceivedQuantity: dec("5")},
		{ItemID: "item-1", ReceivedQuantity: dec("10")},
	})
	require.Error(t, err)

	var dup *transfer.DuplicateReceiptItemError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "item-1", dup.ItemID)
}

// Un traslado sin líneas no se puede conciliar: error de validación, no interno.
func TestReconcile_SinLineas(t *testing.T) {
	_, err := transfer.Reconcile(nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyTransfer))
}

// Reconcile es pura: no muta las líneas del traslado.
func TestReconcile_NoMutaLasLineas(t *testing.T) {
	items := testItems()
	_, err := transfer.Reconcile(items, []transfer.ReceiptLine{
		{ItemID: "item-1", ReceivedQuantity: dec("1")},
	})
	require.NoError(t, err)

	for i, original := range testItems() {
		assert.True(t, items[i].Quantity.Equal(original.Quantity))
		assert.Nil(t, items[i].ReceivedQuantity)
	}
}
