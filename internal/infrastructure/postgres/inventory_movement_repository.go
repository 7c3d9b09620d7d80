package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, item_id, user_id, movement_type, quantity, quantity_before, quantity_after,
	unit_cost, reference_number, reason, notes, movement_date, created_at`

// InventoryMovementRepo ledger append-only sobre PostgreSQL (usable con pool o tx).
// La tabla rechaza UPDATE con un trigger; no hay métodos para modificar entradas.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Append persiste la entrada y completa ID (BIGSERIAL) y fechas por defecto.
func (r *InventoryMovementRepo) Append(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements (item_id, user_id, movement_type, quantity, quantity_before, quantity_after,
			unit_cost, reference_number, reason, notes, movement_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, NOW()), COALESCE($12, NOW()))
		RETURNING id, movement_date, created_at`
	err := r.q.QueryRow(ctx, query,
		m.ItemID, m.UserID, m.Type, m.Quantity, m.QuantityBefore, m.QuantityAfter,
		m.UnitCost, m.ReferenceNumber, m.Reason, m.Notes, nullTime(m.MovementDate), nullTime(m.CreatedAt),
	).Scan(&m.ID, &m.MovementDate, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("append inventory movement: %w", err)
	}
	return nil
}

// ListByItem ledger de un ítem, más recientes primero.
func (r *InventoryMovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryMovement, int, error) {
	return r.List(ctx, repository.MovementFilter{ItemID: itemID}, limit, offset)
}

// List ledger global con filtros.
func (r *InventoryMovementRepo) List(ctx context.Context, f repository.MovementFilter, limit, offset int) ([]*entity.InventoryMovement, int, error) {
	if (f.ItemID != "" && !validID(f.ItemID)) || (f.UserID != "" && !validID(f.UserID)) {
		return []*entity.InventoryMovement{}, 0, nil
	}
	w := &where{}
	if f.ItemID != "" {
		w.add("item_id = ?", f.ItemID)
	}
	if f.MovementType != "" {
		w.add("movement_type = ?", f.MovementType)
	}
	if f.UserID != "" {
		w.add("user_id = ?", f.UserID)
	}
	if f.From != nil {
		w.add("movement_date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("movement_date <= ?", *f.To)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_movements`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}
	tail, args := w.page(limit, offset)
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM inventory_movements`+w.sql()+` ORDER BY movement_date DESC, id ASC`+tail, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	list, err := scanMovements(rows)
	return list, total, err
}

// History todas las entradas del ítem en orden de inserción.
func (r *InventoryMovementRepo) History(ctx context.Context, itemID string) ([]*entity.InventoryMovement, error) {
	if !validID(itemID) {
		return []*entity.InventoryMovement{}, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM inventory_movements WHERE item_id = $1 ORDER BY id ASC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("movement history: %w", err)
	}
	return scanMovements(rows)
}

func scanMovements(rows pgx.Rows) ([]*entity.InventoryMovement, error) {
	defer rows.Close()
	list := make([]*entity.InventoryMovement, 0)
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.UserID, &m.Type, &m.Quantity, &m.QuantityBefore, &m.QuantityAfter,
			&m.UnitCost, &m.ReferenceNumber, &m.Reason, &m.Notes, &m.MovementDate, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
