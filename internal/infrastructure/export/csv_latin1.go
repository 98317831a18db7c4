package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	apptransfer "github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

var _ apptransfer.ListExporter = (*CSVExporter)(nil)

// CSVExporter serializa listados de traslados a CSV codificado windows-1252,
// el formato que espera el importador del ERP legado (no lee UTF-8; separador
// punto y coma por configuración regional es-CO).
type CSVExporter struct{}

// NewCSVExporter crea el exportador.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ExportCSV genera el archivo con una fila por traslado (solo cabeceras).
func (e *CSVExporter) ExportCSV(transfers []*entity.Transfer) ([]byte, error) {
	var utf8Buf bytes.Buffer
	w := csv.NewWriter(&utf8Buf)
	w.Comma = ';'

	header := []string{"numero", "estado", "bodega_origen", "bodega_destino", "cantidad_total", "fecha", "observaciones"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("export: escribir cabecera CSV: %w", err)
	}
	for _, t := range transfers {
		record := []string{
			t.TransferNumber,
			t.Status,
			t.SourceWarehouseID,
			t.DestinationWarehouseID,
			t.TotalQuantity.String(),
			t.TransferDate.Format("2006-01-02"),
			t.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("export: escribir fila CSV: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush CSV: %w", err)
	}

	// Transcodificar a windows-1252; caracteres sin representación se reemplazan
	// para no abortar la exportación completa.
	encoder := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	var out bytes.Buffer
	tw := transform.NewWriter(&out, encoder)
	if _, err := tw.Write(utf8Buf.Bytes()); err != nil {
		return nil, fmt.Errorf("export: codificar windows-1252: %w", err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("export: cerrar transcodificador: %w", err)
	}
	return out.Bytes(), nil
}
