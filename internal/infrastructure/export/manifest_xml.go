// Package export genera representaciones externas de los traslados: el
// manifiesto XML que consumen sistemas de transporte y el CSV windows-1252
// para importación en el ERP legado.
package export

import (
	"fmt"

	"github.com/beevik/etree"

	apptransfer "github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	domaintransfer "github.com/jhoicas/traslados-api/internal/domain/transfer"
)

var _ apptransfer.ManifestBuilder = (*XMLManifestBuilder)(nil)

// XMLManifestBuilder arma el manifiesto XML de un traslado con etree.
type XMLManifestBuilder struct{}

// NewXMLManifestBuilder crea el builder.
func NewXMLManifestBuilder() *XMLManifestBuilder {
	return &XMLManifestBuilder{}
}

// BuildManifest genera el documento ManifiestoTraslado. Las líneas ya
// recibidas incluyen cantidad recibida y clasificación FULL/SHORT.
func (b *XMLManifestBuilder) BuildManifest(t *entity.Transfer, source, destination *entity.Warehouse) ([]byte, error) {
	if t == nil || source == nil || destination == nil {
		return nil, fmt.Errorf("export: faltan traslado o bodegas para el manifiesto")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("ManifiestoTraslado")
	root.CreateAttr("numero", t.TransferNumber)
	root.CreateAttr("estado", t.Status)
	root.CreateElement("Fecha").SetText(t.TransferDate.Format("2006-01-02"))

	origen := root.CreateElement("BodegaOrigen")
	origen.CreateAttr("id", source.ID)
	origen.CreateElement("Nombre").SetText(source.Name)
	origen.CreateElement("Direccion").SetText(source.Address)

	destino := root.CreateElement("BodegaDestino")
	destino.CreateAttr("id", destination.ID)
	destino.CreateElement("Nombre").SetText(destination.Name)
	destino.CreateElement("Direccion").SetText(destination.Address)

	lineas := root.CreateElement("Lineas")
	for _, it := range t.Items {
		linea := lineas.CreateElement("Linea")
		linea.CreateAttr("id", it.ID)
		linea.CreateElement("SKU").SetText(it.SKU)
		linea.CreateElement("Producto").SetText(it.ProductName)
		linea.CreateElement("Despachado").SetText(it.Quantity.String())
		if it.ReceivedQuantity != nil {
			linea.CreateElement("Recibido").SetText(it.ReceivedQuantity.String())
			linea.CreateElement("Clasificacion").SetText(
				string(domaintransfer.Classify(*it.ReceivedQuantity, it.Quantity)))
		}
	}

	root.CreateElement("TotalDespachado").SetText(t.TotalQuantity.String())
	if t.Notes != "" {
		root.CreateElement("Observaciones").SetText(t.Notes)
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}
