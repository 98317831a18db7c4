// Package pdf implementa la generación de la Guía de Traslado en PDF: el
// documento que viaja con la mercancía entre bodegas.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + NIT  │  N° Guía + Fecha             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN: Bodega + dirección                                 │
//	│  DESTINO: Bodega + dirección                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Despachado | Recibido | Estado     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Despachado / Recibido / Faltante                  │
//	│  FOOTER: QR con el número de guía + observaciones           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	apptransfer "github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	domaintransfer "github.com/jhoicas/traslados-api/internal/domain/transfer"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 40, Blue: 20}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ apptransfer.DispatchNotePDFGenerator = (*MarotoDispatchNoteGenerator)(nil)

// MarotoDispatchNoteGenerator implementa transfer.DispatchNotePDFGenerator usando Maroto v2.
type MarotoDispatchNoteGenerator struct{}

// NewMarotoDispatchNoteGenerator construye el generador.
func NewMarotoDispatchNoteGenerator() *MarotoDispatchNoteGenerator {
	return &MarotoDispatchNoteGenerator{}
}

// GenerateDispatchNotePDF genera la guía de traslado y devuelve sus bytes.
func (g *MarotoDispatchNoteGenerator) GenerateDispatchNotePDF(
	_ context.Context,
	t *entity.Transfer,
	company *entity.Company,
	source, destination *entity.Warehouse,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Guía de Traslado "+t.TransferNumber, true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(t, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(warehouseRow("BODEGA ORIGEN", source))
	m.AddRows(warehouseRow("BODEGA DESTINO", destination))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(t.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(t))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(t))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar guía: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: Razón social + NIT (izq) y N° de guía + fecha + estado (der).
func headerRow(t *entity.Transfer, company *entity.Company) core.Row {
	fecha := t.TransferDate.Format("02/01/2006")
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+nonEmpty(company.NIT, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("GUÍA DE TRASLADO ENTRE BODEGAS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(t.TransferNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New(fmt.Sprintf("Fecha: %s   |   Estado: %s", fecha, t.Status), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// warehouseRow: datos de una bodega (origen o destino).
func warehouseRow(label string, wh *entity.Warehouse) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Dirección: %s",
				wh.Name, nonEmpty(wh.Address, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 5, align.Left),
		h("Despachado", 2, align.Right),
		h("Recibido", 2, align.Right),
		h("Estado", 1, align.Center),
	)
}

// tableItemRows: una fila por línea del traslado. Para líneas ya recibidas se
// muestra la clasificación FULL/SHORT; antes de la recepción van en blanco.
func tableItemRows(items []entity.TransferItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		received, estado := "—", ""
		estadoColor := colorGray
		if it.ReceivedQuantity != nil {
			received = it.ReceivedQuantity.StringFixed(0)
			cls := domaintransfer.Classify(*it.ReceivedQuantity, it.Quantity)
			estado = string(cls)
			if cls == domaintransfer.ClassificationShort {
				estadoColor = colorAlert
			}
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(it.SKU, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(5).Add(text.New(it.ProductName, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(it.Quantity.StringFixed(0), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(received, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(estado, props.Text{Size: 7, Align: align.Center, Top: 1, Color: estadoColor})),
		))
	}
	return result
}

// totalsRow: totales despachado / recibido / faltante.
func totalsRow(t *entity.Transfer) core.Row {
	totalReceived := decimal.Zero
	anyReceived := false
	for _, it := range t.Items {
		if it.ReceivedQuantity != nil {
			anyReceived = true
			totalReceived = totalReceived.Add(*it.ReceivedQuantity)
		}
	}
	receivedStr, shortageStr := "—", "—"
	if anyReceived {
		receivedStr = totalReceived.StringFixed(0)
		shortageStr = t.TotalQuantity.Sub(totalReceived).StringFixed(0)
	}

	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Total despachado:", 1),
			label("Total recibido:", 7),
			label("Faltante:", 13),
		),
		col.New(3).Add(
			value(t.TotalQuantity.StringFixed(0), 1),
			value(receivedStr, 7),
			value(shortageStr, 13),
		),
	)
}

// footerRow: QR con el número de guía + observaciones.
func footerRow(t *entity.Transfer) core.Row {
	return row.New(28).Add(
		col.New(3).Add(
			code.NewQr(t.TransferNumber, props.Rect{Percent: 90, Center: true}),
		),
		col.New(9).Add(
			text.New("Observaciones:", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
			}),
			text.New(nonEmpty(t.Notes, "Sin observaciones."), props.Text{
				Size: 8, Top: 8, Color: colorGray,
			}),
			text.New("Documento interno de traslado. No constituye factura de venta.", props.Text{
				Size: 7, Top: 22, Color: colorGray,
			}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
