package transfer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptransfer "github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

type fakeCompanyRepo struct {
	companies map[string]*entity.Company
}

func (r *fakeCompanyRepo) Create(c *entity.Company) error { r.companies[c.ID] = c; return nil }
func (r *fakeCompanyRepo) GetByID(id string) (*entity.Company, error) {
	return r.companies[id], nil
}
func (r *fakeCompanyRepo) List(int, int) ([]*entity.Company, error) { return nil, nil }

// Generadores fake: registran las llamadas y devuelven un marcador.
type fakePDFGen struct{ called int }

func (g *fakePDFGen) GenerateDispatchNotePDF(context.Context, *entity.Transfer, *entity.Company, *entity.Warehouse, *entity.Warehouse) ([]byte, error) {
	g.called++
	return []byte("%PDF-fake"), nil
}

type fakeManifestBuilder struct{}

func (fakeManifestBuilder) BuildManifest(t *entity.Transfer, _, _ *entity.Warehouse) ([]byte, error) {
	return []byte("<ManifiestoTraslado numero=\"" + t.TransferNumber + "\"/>"), nil
}

type fakeExporter struct{ rows int }

func (e *fakeExporter) ExportCSV(transfers []*entity.Transfer) ([]byte, error) {
	e.rows = len(transfers)
	return []byte("csv"), nil
}

type documentsEnv struct {
	*testEnv
	docs   *apptransfer.DocumentsUseCase
	pdfGen *fakePDFGen
	csv    *fakeExporter
}

func newDocumentsEnv() *documentsEnv {
	env := newTestEnv()
	companyRepo := &fakeCompanyRepo{companies: map[string]*entity.Company{
		companyID: {ID: companyID, Name: "Ferretería Central", NIT: "900123456-7", Status: "active"},
	}}
	warehouseRepo := &fakeWarehouseRepo{warehouses: map[string]*entity.Warehouse{
		sourceWH: {ID: sourceWH, CompanyID: companyID, Name: "Bodega Origen"},
		destWH:   {ID: destWH, CompanyID: companyID, Name: "Bodega Destino"},
	}}
	pdfGen := &fakePDFGen{}
	csv := &fakeExporter{}
	docs := apptransfer.NewDocumentsUseCase(
		env.transferRepo, warehouseRepo, companyRepo,
		pdfGen, fakeManifestBuilder{}, csv,
	)
	return &documentsEnv{testEnv: env, docs: docs, pdfGen: pdfGen, csv: csv}
}

// La guía de despacho solo existe desde APPROVED: pedirla sobre un borrador es
// un conflicto, no un not-found.
func TestDispatchNotePDF_SoloDesdeAprobado(t *testing.T) {
	env := newDocumentsEnv()
	ctx := context.Background()
	created := env.createDraft(t)

	_, err := env.docs.DispatchNotePDF(ctx, companyID, created.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Zero(t, env.pdfGen.called)

	_, err = env.uc.Submit(ctx, companyID, created.ID)
	require.NoError(t, err)
	_, err = env.uc.Approve(ctx, companyID, entity.RoleAdmin, created.ID)
	require.NoError(t, err)

	out, err := env.docs.DispatchNotePDF(ctx, companyID, created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, 1, env.pdfGen.called)
}

func TestDispatchNotePDF_TrasladoAjeno(t *testing.T) {
	env := newDocumentsEnv()
	created := env.createDraft(t)
	_, err := env.docs.DispatchNotePDF(context.Background(), "otra-empresa", created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestManifestXML_CualquierEstado(t *testing.T) {
	env := newDocumentsEnv()
	created := env.createDraft(t)

	out, err := env.docs.ManifestXML(context.Background(), companyID, created.ID)
	require.NoError(t, err)
	assert.Contains(t, string(out), created.TransferNumber)
}

func TestExportCSV_FiltraPorEstado(t *testing.T) {
	env := newDocumentsEnv()
	ctx := context.Background()
	first := env.createDraft(t)
	env.createDraft(t)
	_, err := env.uc.Submit(ctx, companyID, first.ID)
	require.NoError(t, err)

	_, err = env.docs.ExportCSV(ctx, companyID, "PENDING_APPROVAL")
	require.NoError(t, err)
	assert.Equal(t, 1, env.csv.rows)

	_, err = env.docs.ExportCSV(ctx, companyID, "estado-roto")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
