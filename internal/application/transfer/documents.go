package transfer

import (
	"context"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	domaintransfer "github.com/jhoicas/traslados-api/internal/domain/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// DispatchNotePDFGenerator genera la guía de traslado en PDF (puerto; la
// implementación vive en infrastructure/pdf).
type DispatchNotePDFGenerator interface {
	GenerateDispatchNotePDF(ctx context.Context, t *entity.Transfer, company *entity.Company, source, destination *entity.Warehouse) ([]byte, error)
}

// ManifestBuilder arma el manifiesto XML de un traslado (puerto; implementación
// en infrastructure/export).
type ManifestBuilder interface {
	BuildManifest(t *entity.Transfer, source, destination *entity.Warehouse) ([]byte, error)
}

// ListExporter serializa un listado de traslados a CSV para el ERP legado
// (puerto; implementación en infrastructure/export).
type ListExporter interface {
	ExportCSV(transfers []*entity.Transfer) ([]byte, error)
}

// DocumentsUseCase genera los documentos de un traslado: guía de traslado PDF,
// manifiesto XML y exportación CSV del listado.
type DocumentsUseCase struct {
	transferRepo  repository.TransferRepository
	warehouseRepo repository.WarehouseRepository
	companyRepo   repository.CompanyRepository
	pdfGen        DispatchNotePDFGenerator
	manifest      ManifestBuilder
	exporter      ListExporter
}

// NewDocumentsUseCase construye el caso de uso de documentos.
func NewDocumentsUseCase(
	transferRepo repository.TransferRepository,
	warehouseRepo repository.WarehouseRepository,
	companyRepo repository.CompanyRepository,
	pdfGen DispatchNotePDFGenerator,
	manifest ManifestBuilder,
	exporter ListExporter,
) *DocumentsUseCase {
	return &DocumentsUseCase{
		transferRepo:  transferRepo,
		warehouseRepo: warehouseRepo,
		companyRepo:   companyRepo,
		pdfGen:        pdfGen,
		manifest:      manifest,
		exporter:      exporter,
	}
}

// loadTransferContext carga traslado + empresa + bodegas validando tenencia.
func (uc *DocumentsUseCase) loadTransferContext(ctx context.Context, companyID, id string) (*entity.Transfer, *entity.Company, *entity.Warehouse, *entity.Warehouse, error) {
	t, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if t == nil {
		return nil, nil, nil, nil, domain.ErrNotFound
	}
	if t.CompanyID != companyID {
		return nil, nil, nil, nil, domain.ErrForbidden
	}
	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	source, err := uc.warehouseRepo.GetByID(t.SourceWarehouseID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	destination, err := uc.warehouseRepo.GetByID(t.DestinationWarehouseID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if company == nil || source == nil || destination == nil {
		return nil, nil, nil, nil, domain.ErrNotFound
	}
	return t, company, source, destination, nil
}

// DispatchNotePDF genera la guía de traslado. Solo tiene sentido con mercancía
// despachada o por despachar: desde APPROVED en adelante.
func (uc *DocumentsUseCase) DispatchNotePDF(ctx context.Context, companyID, id string) ([]byte, error) {
	t, company, source, destination, err := uc.loadTransferContext(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	switch domaintransfer.Status(t.Status) {
	case domaintransfer.StatusApproved, domaintransfer.StatusInTransit, domaintransfer.StatusReceived:
	default:
		return nil, domain.ErrConflict
	}
	return uc.pdfGen.GenerateDispatchNotePDF(ctx, t, company, source, destination)
}

// ManifestXML genera el manifiesto XML del traslado (cualquier estado).
func (uc *DocumentsUseCase) ManifestXML(ctx context.Context, companyID, id string) ([]byte, error) {
	t, _, source, destination, err := uc.loadTransferContext(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return uc.manifest.BuildManifest(t, source, destination)
}

// ExportCSV exporta el listado filtrado a CSV windows-1252 para el ERP legado.
func (uc *DocumentsUseCase) ExportCSV(ctx context.Context, companyID, status string) ([]byte, error) {
	filter := repository.TransferFilter{}
	if status != "" {
		parsed, err := domaintransfer.ParseStatus(status)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		filter.Status = string(parsed)
	}
	// Exportación completa: el límite alto evita paginar en el archivo.
	list, _, err := uc.transferRepo.ListByCompany(ctx, companyID, filter, 10000, 0)
	if err != nil {
		return nil, err
	}
	return uc.exporter.ExportCSV(list)
}
