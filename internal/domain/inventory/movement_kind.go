package inventory

import (
	"fmt"

	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
)

// MovementKind codifica la convención de signo de cada tipo de movimiento.
// In y Out llevan una magnitud; Adjustment lleva el nuevo stock absoluto.
type MovementKind interface {
	Type() string
	// Apply calcula el stock resultante y el delta con signo a partir de before.
	Apply(before int64) (after, delta int64, err error)
	sealed()
}

// In entrada de Qty unidades.
type In struct{ Qty int64 }

// Out salida de Qty unidades.
type Out struct{ Qty int64 }

// Adjustment fija el stock en Target.
type Adjustment struct{ Target int64 }

func (In) Type() string         { return entity.MovementTypeIn }
func (Out) Type() string        { return entity.MovementTypeOut }
func (Adjustment) Type() string { return entity.MovementTypeAdjustment }

func (In) sealed()         {}
func (Out) sealed()        {}
func (Adjustment) sealed() {}

func (k In) Apply(before int64) (int64, int64, error) {
	if k.Qty <= 0 {
		return 0, 0, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	return before + k.Qty, k.Qty, nil
}

func (k Out) Apply(before int64) (int64, int64, error) {
	if k.Qty <= 0 {
		return 0, 0, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	after := before - k.Qty
	if after < 0 {
		return 0, 0, &domain.InsufficientStockError{Available: before, Requested: k.Qty}
	}
	return after, -k.Qty, nil
}

func (k Adjustment) Apply(before int64) (int64, int64, error) {
	if k.Target < 0 {
		return 0, 0, domain.NewValidationError("quantity", "el stock objetivo no puede ser negativo")
	}
	return k.Target, k.Target - before, nil
}

// KindFor traduce el par (movement_type, quantity) de la API a un MovementKind.
// Para in/out se toma la magnitud de quantity.
func KindFor(movementType string, quantity int64) (MovementKind, error) {
	switch movementType {
	case entity.MovementTypeIn:
		return In{Qty: abs(quantity)}, nil
	case entity.MovementTypeOut:
		return Out{Qty: abs(quantity)}, nil
	case entity.MovementTypeAdjustment:
		return Adjustment{Target: quantity}, nil
	}
	return nil, domain.NewValidationError("movement_type", "debe ser in, out o adjustment")
}

// ValidateEntry verifica una entrada antes de anexarla al ledger.
func ValidateEntry(m *entity.InventoryMovement) error {
	verr := &domain.ValidationError{}
	if m.ItemID == "" {
		verr.Add("item_id", "requerido")
	}
	if !entity.IsValidMovementType(m.Type) {
		verr.Add("movement_type", fmt.Sprintf("tipo desconocido %q", m.Type))
	}
	if m.QuantityBefore < 0 {
		verr.Add("quantity_before", "no puede ser negativo")
	}
	if m.QuantityAfter < 0 {
		verr.Add("quantity_after", "no puede ser negativo")
	}
	if m.QuantityAfter-m.QuantityBefore != m.Quantity {
		verr.Add("quantity", "no coincide con quantity_after - quantity_before")
	}
	switch m.Type {
	case entity.MovementTypeIn:
		if m.Quantity <= 0 {
			verr.Add("quantity", "una entrada debe ser positiva")
		}
	case entity.MovementTypeOut:
		if m.Quantity >= 0 {
			verr.Add("quantity", "una salida debe ser negativa")
		}
	}
	if m.Reason == "" {
		verr.Add("reason", "requerido")
	}
	return verr.OrNil()
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
