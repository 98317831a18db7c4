package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación de TransferRepository sobre PostgreSQL (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// beginner permite abrir una transacción tanto desde el pool como desde una tx
// ya abierta (pgx usa savepoints para el caso anidado).
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Create persiste cabecera y líneas atómicamente.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	b, ok := r.q.(beginner)
	if !ok {
		return fmt.Errorf("create transfer: querier no soporta transacciones")
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("create transfer: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	headerQuery := `
		INSERT INTO transfers (id, company_id, transfer_number, source_warehouse_id, destination_warehouse_id,
			status, total_quantity, notes, transfer_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = tx.Exec(ctx, headerQuery,
		t.ID, t.CompanyID, t.TransferNumber, t.SourceWarehouseID, t.DestinationWarehouseID,
		t.Status, t.TotalQuantity, t.Notes, t.TransferDate, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transfer: %w", err)
	}

	itemQuery := `
		INSERT INTO transfer_items (id, transfer_id, product_id, sku, product_name, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, it := range t.Items {
		if _, err := tx.Exec(ctx, itemQuery,
			it.ID, it.TransferID, it.ProductID, it.SKU, it.ProductName, it.Quantity, it.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert transfer item: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("create transfer: commit: %w", err)
	}
	return nil
}

// GetByID obtiene el traslado con sus líneas, o nil si no existe.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	headerQuery := `
		SELECT id, company_id, transfer_number, source_warehouse_id, destination_warehouse_id,
			status, total_quantity, notes, transfer_date, created_by, created_at, updated_at
		FROM transfers WHERE id = $1`
	var t entity.Transfer
	err := r.q.QueryRow(ctx, headerQuery, id).Scan(
		&t.ID, &t.CompanyID, &t.TransferNumber, &t.SourceWarehouseID, &t.DestinationWarehouseID,
		&t.Status, &t.TotalQuantity, &t.Notes, &t.TransferDate, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}

	itemsQuery := `
		SELECT id, transfer_id, product_id, sku, product_name, quantity, received_quantity, created_at
		FROM transfer_items WHERE transfer_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get transfer items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.TransferItem
		if err := rows.Scan(
			&it.ID, &it.TransferID, &it.ProductID, &it.SKU, &it.ProductName,
			&it.Quantity, &it.ReceivedQuantity, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		t.Items = append(t.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByCompany lista cabeceras con filtro y paginación; total viene de una
// función de ventana para no hacer dos consultas.
func (r *TransferRepo) ListByCompany(ctx context.Context, companyID string, filter repository.TransferFilter, limit, offset int) ([]*entity.Transfer, int, error) {
	query := `
		SELECT id, company_id, transfer_number, source_warehouse_id, destination_warehouse_id,
			status, total_quantity, notes, transfer_date, created_by, created_at, updated_at,
			count(*) OVER() AS total
		FROM transfers
		WHERE company_id = $1
			AND ($2 = '' OR status = $2)
			AND ($3 = '' OR source_warehouse_id = $3 OR destination_warehouse_id = $3)
		ORDER BY created_at DESC, transfer_number DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, companyID, filter.Status, filter.WarehouseID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transfer
	var total int
	for rows.Next() {
		var t entity.Transfer
		if err := rows.Scan(
			&t.ID, &t.CompanyID, &t.TransferNumber, &t.SourceWarehouseID, &t.DestinationWarehouseID,
			&t.Status, &t.TotalQuantity, &t.Notes, &t.TransferDate, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, &t)
	}
	return list, total, rows.Err()
}

// NextTransferNumber consume el consecutivo de la empresa de forma atómica.
func (r *TransferRepo) NextTransferNumber(ctx context.Context, companyID string) (string, error) {
	query := `
		INSERT INTO transfer_counters (company_id, last_number)
		VALUES ($1, 1)
		ON CONFLICT (company_id)
		DO UPDATE SET last_number = transfer_counters.last_number + 1
		RETURNING last_number`
	var n int64
	if err := r.q.QueryRow(ctx, query, companyID).Scan(&n); err != nil {
		return "", fmt.Errorf("next transfer number: %w", err)
	}
	return fmt.Sprintf("TRS-%06d", n), nil
}

// UpdateStatus cambia el estado solo si sigue en from (CAS sobre status).
// Devuelve false si otra transición ganó la carrera.
func (r *TransferRepo) UpdateStatus(ctx context.Context, id string, from, to string) (bool, error) {
	query := `
		UPDATE transfers SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`
	cmd, err := r.q.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update transfer status: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// SaveReceivedQuantities persiste el recibido por línea.
func (r *TransferRepo) SaveReceivedQuantities(ctx context.Context, transferID string, quantities []repository.ReceivedQuantity) error {
	query := `
		UPDATE transfer_items SET received_quantity = $3
		WHERE transfer_id = $1 AND id = $2`
	for _, q := range quantities {
		cmd, err := r.q.Exec(ctx, query, transferID, q.ItemID, q.Quantity)
		if err != nil {
			return fmt.Errorf("save received quantity: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return fmt.Errorf("save received quantity: línea %s no existe", q.ItemID)
		}
	}
	return nil
}
