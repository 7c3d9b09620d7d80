package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ispstock-api/internal/domain/entity"
)

// MovementFilter filtros del listado global de movimientos.
type MovementFilter struct {
	ItemID       string
	MovementType string
	UserID       string
	From         *time.Time
	To           *time.Time
}

// MovementRepository ledger append-only. No existe Update ni Delete.
// Los listados se ordenan por movement_date DESC, id ASC.
type MovementRepository interface {
	// Append asigna ID y MovementDate (si viene vacío) y persiste la entrada.
	Append(ctx context.Context, m *entity.InventoryMovement) error
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryMovement, int, error)
	List(ctx context.Context, f MovementFilter, limit, offset int) ([]*entity.InventoryMovement, int, error)
	// History devuelve todas las entradas del ítem en orden de commit (id ASC).
	History(ctx context.Context, itemID string) ([]*entity.InventoryMovement, error)
}
