package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/inventory"
)

// MovementSpec movimiento a aplicar dentro de una transacción ya abierta.
type MovementSpec struct {
	ItemID          string
	Kind            inventory.MovementKind
	UserID          string
	Reason          string
	Notes           string
	UnitCost        *decimal.Decimal
	ReferenceNumber string
}

// MovementResult ítem actualizado, la entrada nueva del ledger y el resumen del cambio.
type MovementResult struct {
	Item          *entity.InventoryItem
	Movement      *entity.InventoryMovement
	PreviousStock int64
	NewStock      int64
	Adjustment    int64
}

// ApplyMovementInTx bloquea el ítem (SELECT FOR UPDATE), calcula el nuevo stock, anexa la
// entrada al ledger y actualiza el snapshot usando los repositorios de la transacción del caller.
// Lo usan el ajuste de stock y la aprobación de salidas; si devuelve error el caller debe hacer Rollback.
func ApplyMovementInTx(ctx context.Context, repos TxRepos, spec MovementSpec) (*MovementResult, error) {
	item, err := repos.Items.GetForUpdate(ctx, spec.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("ítem")
	}

	before := item.QuantityInStock
	after, delta, err := spec.Kind.Apply(before)
	if err != nil {
		var ise *domain.InsufficientStockError
		if errors.As(err, &ise) {
			ise.ItemID = item.ID
		}
		return nil, err
	}

	now := time.Now().UTC()
	mov := &entity.InventoryMovement{
		ItemID:          item.ID,
		UserID:          spec.UserID,
		Type:            spec.Kind.Type(),
		Quantity:        delta,
		QuantityBefore:  before,
		QuantityAfter:   after,
		UnitCost:        spec.UnitCost,
		ReferenceNumber: spec.ReferenceNumber,
		Reason:          spec.Reason,
		Notes:           spec.Notes,
		MovementDate:    now,
		CreatedAt:       now,
	}
	if err := inventory.ValidateEntry(mov); err != nil {
		return nil, err
	}
	if err := repos.Movements.Append(ctx, mov); err != nil {
		return nil, err
	}

	// Entradas con costo recalculan el costo promedio ponderado
	price := item.PurchasePrice
	if spec.UnitCost != nil && delta > 0 {
		price = inventory.CostCalculator(before, item.PurchasePrice, delta, *spec.UnitCost)
	}
	if err := repos.Items.UpdateStock(ctx, item.ID, after, price); err != nil {
		return nil, err
	}
	item.QuantityInStock = after
	item.PurchasePrice = price
	item.UpdatedAt = now

	return &MovementResult{
		Item:          item,
		Movement:      mov,
		PreviousStock: before,
		NewStock:      after,
		Adjustment:    delta,
	}, nil
}
