package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// MovementKind
// ──────────────────────────────────────────────────────────────────────────────

func TestKindFor_ConvencionDeSigno(t *testing.T) {
	cases := []struct {
		name      string
		typ       string
		qty       int64
		before    int64
		wantAfter int64
		wantDelta int64
	}{
		{"entrada", entity.MovementTypeIn, 5, 10, 15, 5},
		{"entrada con signo negativo usa la magnitud", entity.MovementTypeIn, -5, 10, 15, 5},
		{"salida", entity.MovementTypeOut, 4, 10, 6, -4},
		{"salida con signo negativo usa la magnitud", entity.MovementTypeOut, -4, 10, 6, -4},
		{"salida que deja el stock en cero", entity.MovementTypeOut, 10, 10, 0, -10},
		{"ajuste hacia arriba", entity.MovementTypeAdjustment, 25, 10, 25, 15},
		{"ajuste hacia abajo", entity.MovementTypeAdjustment, 3, 10, 3, -7},
		{"ajuste sin cambio", entity.MovementTypeAdjustment, 10, 10, 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, err := inventory.KindFor(tc.typ, tc.qty)
			require.NoError(t, err)
			assert.Equal(t, tc.typ, kind.Type())

			after, delta, err := kind.Apply(tc.before)
			require.NoError(t, err)
			assert.Equal(t, tc.wantAfter, after)
			assert.Equal(t, tc.wantDelta, delta)
			assert.Equal(t, after-tc.before, delta, "delta siempre es after - before")
		})
	}
}

func TestOut_StockInsuficiente(t *testing.T) {
	_, _, err := inventory.Out{Qty: 6}.Apply(4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(4), ise.Available)
	assert.Equal(t, int64(6), ise.Requested)
}

func TestKind_CantidadesInvalidas(t *testing.T) {
	_, _, err := inventory.In{Qty: 0}.Apply(3)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = inventory.Out{Qty: 0}.Apply(3)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = inventory.Adjustment{Target: -1}.Apply(3)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = inventory.KindFor("transfer", 3)
	assert.ErrorIs(t, err, domain.ErrValidation, "transfer no se acepta como ajuste manual")
}

// ──────────────────────────────────────────────────────────────────────────────
// ValidateEntry
// ──────────────────────────────────────────────────────────────────────────────

func validEntry() *entity.InventoryMovement {
	return &entity.InventoryMovement{
		ItemID: "item-1", Type: entity.MovementTypeOut,
		Quantity: -2, QuantityBefore: 5, QuantityAfter: 3, Reason: "instalación",
	}
}

func TestValidateEntry_Valida(t *testing.T) {
	assert.NoError(t, inventory.ValidateEntry(validEntry()))
}

func TestValidateEntry_Rechazos(t *testing.T) {
	cases := map[string]func(m *entity.InventoryMovement){
		"after negativo":      func(m *entity.InventoryMovement) { m.QuantityAfter = -1; m.Quantity = -6 },
		"delta inconsistente": func(m *entity.InventoryMovement) { m.Quantity = -1 },
		"salida positiva":     func(m *entity.InventoryMovement) { m.Quantity = 2; m.QuantityAfter = 7 },
		"entrada negativa":    func(m *entity.InventoryMovement) { m.Type = entity.MovementTypeIn },
		"tipo desconocido":    func(m *entity.InventoryMovement) { m.Type = "loan" },
		"sin motivo":          func(m *entity.InventoryMovement) { m.Reason = "" },
		"sin ítem":            func(m *entity.InventoryMovement) { m.ItemID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			m := validEntry()
			mutate(m)
			err := inventory.ValidateEntry(m)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CostCalculator
// ──────────────────────────────────────────────────────────────────────────────

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	// (10 * 100 + 10 * 200) / 20 = 150
	got := inventory.CostCalculator(10, decimal.NewFromInt(100), 10, decimal.NewFromInt(200))
	assert.True(t, got.Equal(decimal.NewFromInt(150)), "got %s", got)
}

func TestCostCalculator_SinStockPrevioTomaCostoEntrada(t *testing.T) {
	got := inventory.CostCalculator(0, decimal.NewFromInt(999), 4, decimal.NewFromInt(75))
	assert.True(t, got.Equal(decimal.NewFromInt(75)))
}
