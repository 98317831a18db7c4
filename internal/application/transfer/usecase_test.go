package transfer_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptransfer "github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	domaintransfer "github.com/jhoicas/traslados-api/internal/domain/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeTransferRepo struct {
	transfers map[string]*entity.Transfer
	counter   int
	// beforeCAS se ejecuta justo antes del CAS de estado; permite simular a un
	// operador concurrente ganando la carrera.
	beforeCAS func()
	savedQty  map[string]decimal.Decimal
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{
		transfers: make(map[string]*entity.Transfer),
		savedQty:  make(map[string]decimal.Decimal),
	}
}

func (r *fakeTransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	cp := *t
	r.transfers[t.ID] = &cp
	return nil
}

func (r *fakeTransferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	t, ok := r.transfers[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	cp.Items = append([]entity.TransferItem(nil), t.Items...)
	return &cp, nil
}

func (r *fakeTransferRepo) ListByCompany(_ context.Context, companyID string, filter repository.TransferFilter, limit, offset int) ([]*entity.Transfer, int, error) {
	var out []*entity.Transfer
	for _, t := range r.transfers {
		if t.CompanyID != companyID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeTransferRepo) NextTransferNumber(_ context.Context, _ string) (string, error) {
	r.counter++
	return fmt.Sprintf("TRS-%06d", r.counter), nil
}

func (r *fakeTransferRepo) UpdateStatus(_ context.Context, id, from, to string) (bool, error) {
	if r.beforeCAS != nil {
		r.beforeCAS()
	}
	t, ok := r.transfers[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	return true, nil
}

func (r *fakeTransferRepo) SaveReceivedQuantities(_ context.Context, transferID string, quantities []repository.ReceivedQuantity) error {
	t, ok := r.transfers[transferID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, q := range quantities {
		r.savedQty[q.ItemID] = q.Quantity
	}
	for i := range t.Items {
		if q, ok := r.savedQty[t.Items[i].ID]; ok {
			qc := q
			t.Items[i].ReceivedQuantity = &qc
		}
	}
	return nil
}

type fakeWarehouseRepo struct {
	warehouses map[string]*entity.Warehouse
}

func (r *fakeWarehouseRepo) Create(w *entity.Warehouse) error { r.warehouses[w.ID] = w; return nil }
func (r *fakeWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	return r.warehouses[id], nil
}
func (r *fakeWarehouseRepo) Update(w *entity.Warehouse) error { r.warehouses[w.ID] = w; return nil }
func (r *fakeWarehouseRepo) ListByCompany(string, int, int) ([]*entity.Warehouse, error) {
	return nil, nil
}
func (r *fakeWarehouseRepo) Delete(id string) error { delete(r.warehouses, id); return nil }

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func (r *fakeProductRepo) Create(p *entity.Product) error               { r.products[p.ID] = p; return nil }
func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error)   { return r.products[id], nil }
func (r *fakeProductRepo) GetBySKU(string, string) (*entity.Product, error) { return nil, nil }
func (r *fakeProductRepo) Update(p *entity.Product) error               { r.products[p.ID] = p; return nil }
func (r *fakeProductRepo) ListByCompany(string, int, int) ([]*entity.Product, error) {
	return nil, nil
}

type fakeStockRepo struct {
	stock map[string]*entity.Stock // clave product|warehouse
}

func stockKey(productID, warehouseID string) string { return productID + "|" + warehouseID }

func (r *fakeStockRepo) Get(productID, warehouseID string) (*entity.Stock, error) {
	return r.GetForUpdate(productID, warehouseID)
}

func (r *fakeStockRepo) GetForUpdate(productID, warehouseID string) (*entity.Stock, error) {
	if s, ok := r.stock[stockKey(productID, warehouseID)]; ok {
		cp := *s
		return &cp, nil
	}
	return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
}

func (r *fakeStockRepo) Upsert(s *entity.Stock) error {
	cp := *s
	r.stock[stockKey(s.ProductID, s.WarehouseID)] = &cp
	return nil
}

type fakeMovementRepo struct {
	movements []*entity.InventoryMovement
}

func (r *fakeMovementRepo) Create(m *entity.InventoryMovement) error {
	r.movements = append(r.movements, m)
	return nil
}
func (r *fakeMovementRepo) GetByID(string) (*entity.InventoryMovement, error) { return nil, nil }
func (r *fakeMovementRepo) ListByWarehouse(string, *time.Time, *time.Time, int, int) ([]*entity.InventoryMovement, error) {
	return nil, nil
}
func (r *fakeMovementRepo) ListByReference(referenceID string) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.movements {
		if m.ReferenceID == referenceID {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeTxRunner ejecuta la función directamente sobre los fakes; la atomicidad
// real la cubren los tests de integración del adaptador postgres.
type fakeTxRunner struct {
	transferRepo *fakeTransferRepo
	stockRepo    *fakeStockRepo
	movRepo      *fakeMovementRepo
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	repository.TransferRepository,
	repository.StockRepository,
	repository.InventoryMovementRepository,
) error) error {
	return fn(r.transferRepo, r.stockRepo, r.movRepo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Setup
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID = "comp-1"
	userID    = "user-1"
	sourceWH  = "wh-origen"
	destWH    = "wh-destino"
)

type testEnv struct {
	uc           *apptransfer.TransferUseCase
	transferRepo *fakeTransferRepo
	stockRepo    *fakeStockRepo
	movRepo      *fakeMovementRepo
}

func newTestEnv() *testEnv {
	transferRepo := newFakeTransferRepo()
	stockRepo := &fakeStockRepo{stock: make(map[string]*entity.Stock)}
	movRepo := &fakeMovementRepo{}
	warehouseRepo := &fakeWarehouseRepo{warehouses: map[string]*entity.Warehouse{
		sourceWH: {ID: sourceWH, CompanyID: companyID, Name: "Bodega Origen"},
		destWH:   {ID: destWH, CompanyID: companyID, Name: "Bodega Destino"},
	}}
	productRepo := &fakeProductRepo{products: map[string]*entity.Product{
		"prod-1": {ID: "prod-1", CompanyID: companyID, SKU: "SKU-1", Name: "Tornillos"},
		"prod-2": {ID: "prod-2", CompanyID: companyID, SKU: "SKU-2", Name: "Tuercas"},
	}}
	txRunner := &fakeTxRunner{transferRepo: transferRepo, stockRepo: stockRepo, movRepo: movRepo}
	return &testEnv{
		uc:           apptransfer.NewTransferUseCase(transferRepo, warehouseRepo, productRepo, txRunner),
		transferRepo: transferRepo,
		stockRepo:    stockRepo,
		movRepo:      movRepo,
	}
}

func (e *testEnv) createDraft(t *testing.T) *dto.TransferResponse {
	t.Helper()
	out, err := e.uc.Create(context.Background(), companyID, userID, dto.CreateTransferRequest{
		SourceWarehouseID:      sourceWH,
		DestinationWarehouseID: destWH,
		Items: []dto.CreateTransferItemRequest{
			{ProductID: "prod-1", Quantity: decimal.NewFromInt(10)},
			{ProductID: "prod-2", Quantity: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)
	return out
}

// Lleva un borrador hasta IN_TRANSIT.
func (e *testEnv) createInTransit(t *testing.T) *dto.TransferResponse {
	t.Helper()
	ctx := context.Background()
	created := e.createDraft(t)
	_, err := e.uc.Submit(ctx, companyID, created.ID)
	require.NoError(t, err)
	_, err = e.uc.Approve(ctx, companyID, entity.RoleAprobador, created.ID)
	require.NoError(t, err)
	out, err := e.uc.Ship(ctx, companyID, created.ID)
	require.NoError(t, err)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_NaceEnDraftConConsecutivo(t *testing.T) {
	env := newTestEnv()
	out := env.createDraft(t)

	assert.Equal(t, "DRAFT", out.Status)
	assert.Equal(t, "TRS-000001", out.TransferNumber)
	assert.True(t, out.TotalQuantity.Equal(decimal.NewFromInt(15)),
		"TotalQuantity es la suma de las líneas")
	require.Len(t, out.Items, 2)
	assert.Equal(t, "SKU-1", out.Items[0].SKU, "SKU denormalizado en la línea")
	assert.Nil(t, out.Items[0].ReceivedQuantity, "sin recibido antes de la recepción")
}

func TestCreate_RutaMismaBodegaRechazada(t *testing.T) {
	env := newTestEnv()
	_, err := env.uc.Create(context.Background(), companyID, userID, dto.CreateTransferRequest{
		SourceWarehouseID:      sourceWH,
		DestinationWarehouseID: sourceWH,
		Items:                  []dto.CreateTransferItemRequest{{ProductID: "prod-1", Quantity: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrSameWarehouseRoute)
}

func TestCreate_SinLineasRechazado(t *testing.T) {
	env := newTestEnv()
	_, err := env.uc.Create(context.Background(), companyID, userID, dto.CreateTransferRequest{
		SourceWarehouseID:      sourceWH,
		DestinationWarehouseID: destWH,
	})
	assert.ErrorIs(t, err, domain.ErrEmptyTransfer)
}

func TestCreate_CantidadNoPositivaRechazada(t *testing.T) {
	env := newTestEnv()
	_, err := env.uc.Create(context.Background(), companyID, userID, dto.CreateTransferRequest{
		SourceWarehouseID:      sourceWH,
		DestinationWarehouseID: destWH,
		Items:                  []dto.CreateTransferItemRequest{{ProductID: "prod-1", Quantity: decimal.Zero}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_BodegaDeOtraEmpresaRechazada(t *testing.T) {
	env := newTestEnv()
	_, err := env.uc.Create(context.Background(), "otra-empresa", userID, dto.CreateTransferRequest{
		SourceWarehouseID:      sourceWH,
		DestinationWarehouseID: destWH,
		Items:                  []dto.CreateTransferItemRequest{{ProductID: "prod-1", Quantity: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

// Camino feliz completo, cada transición devuelve el estado nuevo en el cuerpo.
func TestLifecycle_CaminoFeliz(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	created := env.createDraft(t)

	out, err := env.uc.Submit(ctx, companyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING_APPROVAL", out.Status)

	out, err = env.uc.Approve(ctx, companyID, entity.RoleAdmin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", out.Status)

	out, err = env.uc.Ship(ctx, companyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "IN_TRANSIT", out.Status)

	out, err = env.uc.Receive(ctx, companyID, userID, created.ID, dto.ReceiveTransferRequest{})
	require.NoError(t, err)
	assert.Equal(t, "RECEIVED", out.Status)
}

func TestApprove_RolSinCapacidadDeAprobacion(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	created := env.createDraft(t)
	_, err := env.uc.Submit(ctx, companyID, created.ID)
	require.NoError(t, err)

	_, err = env.uc.Approve(ctx, companyID, entity.RoleBodeguero, created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Aprobar dos veces: la segunda falla con el estado vigente, no es no-op.
func TestApprove_DobleAprobacionFalla(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	created := env.createDraft(t)
	_, err := env.uc.Submit(ctx, companyID, created.ID)
	require.NoError(t, err)
	_, err = env.uc.Approve(ctx, companyID, entity.RoleAdmin, created.ID)
	require.NoError(t, err)

	_, err = env.uc.Approve(ctx, companyID, entity.RoleAdmin, created.ID)
	require.Error(t, err)

	var inv *domaintransfer.InvalidTransitionError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, domaintransfer.StatusApproved, inv.Current)
}

func TestCancel_NoDesdeInTransit(t *testing.T) {
	env := newTestEnv()
	shipped := env.createInTransit(t)

	_, err := env.uc.Cancel(context.Background(), companyID, shipped.ID)
	require.Error(t, err)

	var inv *domaintransfer.InvalidTransitionError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, domaintransfer.StatusInTransit, inv.Current)
}

func TestLifecycle_TrasladoDeOtraEmpresa(t *testing.T) {
	env := newTestEnv()
	created := env.createDraft(t)
	_, err := env.uc.Submit(context.Background(), "otra-empresa", created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Dos operadores compiten por la misma transición: el que pierde el CAS recibe
// InvalidTransitionError con el estado que quedó, y el estado final es el que
// escribió el ganador (ninguna doble aplicación).
func TestLifecycle_EscrituraPerdidaDevuelveEstadoVigente(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	created := env.createDraft(t)
	_, err := env.uc.Submit(ctx, companyID, created.ID)
	require.NoError(t, err)

	// El "otro operador" cancela entre nuestra lectura y nuestro CAS.
	raced := false
	env.transferRepo.beforeCAS = func() {
		if raced {
			return
		}
		raced = true
		env.transferRepo.transfers[created.ID].Status = "CANCELLED"
	}

	_, err = env.uc.Approve(ctx, companyID, entity.RoleAdmin, created.ID)
	require.Error(t, err)

	var inv *domaintransfer.InvalidTransitionError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, domaintransfer.StatusCancelled, inv.Current,
		"el perdedor debe ver el estado que escribió el ganador")

	fresh, err := env.uc.GetByID(ctx, companyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", fresh.Status, "el estado del ganador se preserva")
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────────────────────────────────────

// Recepción completa: cada línea queda FULL y el stock destino sube por línea.
func TestReceive_RecepcionCompleta(t *testing.T) {
	env := newTestEnv()
	shipped := env.createInTransit(t)

	out, err := env.uc.Receive(context.Background(), companyID, userID, shipped.ID, dto.ReceiveTransferRequest{})
	require.NoError(t, err)

	assert.Equal(t, "RECEIVED", out.Status)
	assert.Nil(t, out.TotalShortage)
	for _, item := range out.Items {
		assert.Equal(t, "FULL", item.Classification)
		require.NotNil(t, item.ReceivedQuantity)
		assert.True(t, item.ReceivedQuantity.Equal(item.Quantity))
	}

	// Stock destino actualizado por lo recibido.
	s, err := env.stockRepo.Get("prod-1", destWH)
	require.NoError(t, err)
	assert.True(t, s.Quantity.Equal(decimal.NewFromInt(10)))

	// Un asiento IN por línea, referenciando el traslado.
	movs, err := env.movRepo.ListByReference(shipped.ID)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.MovementTypeIN, m.Type)
		assert.Equal(t, destWH, m.WarehouseID)
	}
}

// Recepción parcial: el faltante es informativo, el traslado queda RECEIVED
// igual, y el stock sube solo por lo recibido.
func TestReceive_RecepcionParcial(t *testing.T) {
	env := newTestEnv()
	shipped := env.createInTransit(t)
	shortItem := shipped.Items[0] // 10 despachadas

	out, err := env.uc.Receive(context.Background(), companyID, userID, shipped.ID, dto.ReceiveTransferRequest{
		Items: []dto.ReceiveItemRequest{
			{StockItemID: shortItem.ID, ReceivedQuantity: decimal.NewFromInt(7)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "RECEIVED", out.Status, "el faltante no desvía la máquina de estados")
	require.NotNil(t, out.TotalShortage)
	assert.True(t, out.TotalShortage.Equal(decimal.NewFromInt(3)))

	assert.Equal(t, "SHORT", out.Items[0].Classification)
	require.NotNil(t, out.Items[0].Shortage)
	assert.True(t, out.Items[0].Shortage.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "FULL", out.Items[1].Classification, "la línea omitida se recibe completa")

	s, err := env.stockRepo.Get("prod-1", destWH)
	require.NoError(t, err)
	assert.True(t, s.Quantity.Equal(decimal.NewFromInt(7)), "el stock sube por lo recibido, no por lo despachado")
}

// Una cantidad fuera de rango rechaza la recepción completa: el traslado sigue
// IN_TRANSIT y no se aplicó nada al inventario.
func TestReceive_CantidadInvalidaNoAplicaNada(t *testing.T) {
	env := newTestEnv()
	shipped := env.createInTransit(t)

	_, err := env.uc.Receive(context.Background(), companyID, userID, shipped.ID, dto.ReceiveTransferRequest{
		Items: []dto.ReceiveItemRequest{
			{StockItemID: shipped.Items[0].ID, ReceivedQuantity: decimal.NewFromInt(99)},
		},
	})
	require.Error(t, err)

	var qty *domaintransfer.ReceiptQuantityError
	require.True(t, errors.As(err, &qty))

	fresh, err := env.uc.GetByID(context.Background(), companyID, shipped.ID)
	require.NoError(t, err)
	assert.Equal(t, "IN_TRANSIT", fresh.Status)

	movs, err := env.movRepo.ListByReference(shipped.ID)
	require.NoError(t, err)
	assert.Empty(t, movs, "sin asientos de kardex cuando la recepción se rechaza")
}

func TestReceive_LineaDesconocidaRechazada(t *testing.T) {
	env := newTestEnv()
	shipped := env.createInTransit(t)

	_, err := env.uc.Receive(context.Background(), companyID, userID, shipped.ID, dto.ReceiveTransferRequest{
		Items: []dto.ReceiveItemRequest{
			{StockItemID: "item-ajeno", ReceivedQuantity: decimal.NewFromInt(1)},
		},
	})
	var unknown *domaintransfer.UnknownReceiptItemError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "item-ajeno", unknown.ItemID)
}

// Recibir un traslado que aún no se despachó es ilegal.
func TestReceive_SoloDesdeInTransit(t *testing.T) {
	env := newTestEnv()
	created := env.createDraft(t)

	_, err := env.uc.Receive(context.Background(), companyID, userID, created.ID, dto.ReceiveTransferRequest{})
	require.Error(t, err)

	var inv *domaintransfer.InvalidTransitionError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, domaintransfer.StatusDraft, inv.Current)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltroPorEstado(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	first := env.createDraft(t)
	env.createDraft(t)
	_, err := env.uc.Submit(ctx, companyID, first.ID)
	require.NoError(t, err)

	out, err := env.uc.List(ctx, companyID, "PENDING_APPROVAL", 20, 0)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, first.ID, out.Items[0].ID)

	_, err = env.uc.List(ctx, companyID, "NO_ES_UN_ESTADO", 20, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetByID_NoExisteDevuelveNil(t *testing.T) {
	env := newTestEnv()
	out, err := env.uc.GetByID(context.Background(), companyID, "no-existe")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestNextTransferNumber_Consecutivo(t *testing.T) {
	env := newTestEnv()
	first := env.createDraft(t)
	second := env.createDraft(t)
	assert.Equal(t, "TRS-000001", first.TransferNumber)
	assert.Equal(t, "TRS-000002", second.TransferNumber)
}
