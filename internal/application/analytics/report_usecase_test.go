package analytics_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ispstock-api/internal/application/analytics"
	"github.com/jhoicas/ispstock-api/internal/application/dto"
	"github.com/jhoicas/ispstock-api/internal/application/inventory"
	"github.com/jhoicas/ispstock-api/internal/application/ports"
	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/policy"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
	"github.com/jhoicas/ispstock-api/internal/testutil/memstore"
)

var (
	manager = policy.Actor{ID: "u-manager", Role: entity.RoleManager}
	sales   = policy.Actor{ID: "u-sales", Role: entity.RoleSales}
	tech    = policy.Actor{ID: "u-tech", Role: entity.RoleTechnician}
)

type reportFixture struct {
	store   *memstore.Store
	items   *inventory.ItemUseCase
	adjust  *inventory.AdjustStockUseCase
	reports *analytics.ReportUseCase
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	store := memstore.New()
	log := zerolog.Nop()
	require.NoError(t, store.Categories().Create(context.Background(), &entity.Category{ID: "cat-1", Name: "Routers", Code: "RTR", IsActive: true}))
	return &reportFixture{
		store:   store,
		items:   inventory.NewItemUseCase(store, store.Items(), store.Movements(), store.Categories(), store.Suppliers(), ports.NopPublisher{}, log),
		adjust:  inventory.NewAdjustStockUseCase(store, ports.NopPublisher{}, ports.NopMetrics{}, log),
		reports: analytics.NewReportUseCase(store.Reports()),
	}
}

func (f *reportFixture) item(t *testing.T, sku string, qty, min int64) *entity.InventoryItem {
	t.Helper()
	it, err := f.items.Create(context.Background(), manager, dto.CreateItemRequest{
		SKU: sku, Name: "Router " + sku, CategoryID: "cat-1",
		PurchasePrice: decimal.NewFromInt(10), SellingPrice: decimal.NewFromInt(15),
		QuantityInStock: qty, MinimumStock: min,
	})
	require.NoError(t, err)
	return it
}

func (f *reportFixture) out(t *testing.T, itemID string, qty int64) {
	t.Helper()
	_, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
		Actor: manager, ItemID: itemID,
		Request: dto.AdjustStockRequest{Quantity: qty, MovementType: entity.MovementTypeOut, Reason: "instalación"},
	})
	require.NoError(t, err)
}

func TestLowStock_OrdenaPorFaltante(t *testing.T) {
	f := newReportFixture(t)
	f.item(t, "A-1", 1, 5)  // faltan 4
	f.item(t, "B-1", 3, 4)  // falta 1
	f.item(t, "C-1", 10, 2) // ok

	rows, total, err := f.reports.LowStock(context.Background(), sales, dto.PageRequest{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	assert.Equal(t, "A-1", rows[0].SKU)
	assert.Equal(t, int64(4), rows[0].Shortage)
	assert.Equal(t, "Routers", rows[0].CategoryName)
	assert.Equal(t, "B-1", rows[1].SKU)
}

func TestLowStock_TecnicoSinPermiso(t *testing.T) {
	f := newReportFixture(t)
	_, _, err := f.reports.LowStock(context.Background(), tech, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMovementStats_AgrupaPorTipo(t *testing.T) {
	f := newReportFixture(t)
	a := f.item(t, "A-1", 10, 0)
	f.item(t, "B-1", 5, 0)
	f.out(t, a.ID, 2)
	f.out(t, a.ID, 1)

	stats, err := f.reports.MovementStats(context.Background(), manager, nil, nil)
	require.NoError(t, err)

	byType := map[string]dto.TypeCountDTO{}
	for _, c := range stats.ByType {
		byType[c.MovementType] = c
	}
	assert.Equal(t, int64(2), byType[entity.MovementTypeIn].Count)
	assert.Equal(t, int64(15), byType[entity.MovementTypeIn].Quantity)
	assert.Equal(t, int64(2), byType[entity.MovementTypeOut].Count)
	assert.Equal(t, int64(3), byType[entity.MovementTypeOut].Quantity)

	assert.Len(t, stats.LastDays, 7)
	assert.Equal(t, int64(4), stats.LastDays[6].Count, "hoy")
	require.NotEmpty(t, stats.TopItems)
	assert.Equal(t, "A-1", stats.TopItems[0].SKU)
	assert.True(t, stats.ValueIn.Equal(decimal.NewFromInt(150)), "got %s", stats.ValueIn)
}

func TestStockVariance_DetectaSnapshotAlterado(t *testing.T) {
	f := newReportFixture(t)
	a := f.item(t, "A-1", 10, 0)
	b := f.item(t, "B-1", 5, 0)
	f.out(t, a.ID, 4)
	f.store.TamperStock(b.ID, 9)

	report, err := f.reports.StockVariance(context.Background(), manager, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.CheckedItems)
	assert.Equal(t, 1, report.InconsistentItems)

	only, err := f.reports.StockVariance(context.Background(), manager, true)
	require.NoError(t, err)
	require.Len(t, only.Items, 1)
	assert.Equal(t, b.ID, only.Items[0].ItemID)
	assert.Equal(t, int64(5), only.Items[0].LedgerStock)
	assert.Equal(t, int64(4), only.Items[0].Variance)
}

func TestVariance_CadenaRota(t *testing.T) {
	v := analytics.Variance(repository.LedgerSummary{
		Snapshot: 6, Entries: 2, SumDelta: 6, FirstBefore: 0, LastAfter: 6, BrokenLinks: 1,
	})
	assert.False(t, v.Consistent)

	v = analytics.Variance(repository.LedgerSummary{})
	assert.True(t, v.Consistent, "ítem sin stock ni movimientos")
}

func TestStockAging_Tramos(t *testing.T) {
	f := newReportFixture(t)
	f.item(t, "A-1", 3, 0)
	f.item(t, "B-1", 0, 0) // sin stock no aparece

	rows, err := f.reports.StockAging(context.Background(), manager)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "0-30", rows[0].Bucket)
	assert.Equal(t, 0, rows[0].DaysIdle)
}

func TestValuation_TotalesPorCategoria(t *testing.T) {
	f := newReportFixture(t)
	f.item(t, "A-1", 3, 0)
	f.item(t, "B-1", 2, 0)

	report, err := f.reports.Valuation(context.Background(), manager)
	require.NoError(t, err)
	require.Len(t, report.Categories, 1)
	assert.Equal(t, int64(5), report.Categories[0].Units)
	assert.True(t, report.TotalPurchaseValue.Equal(decimal.NewFromInt(50)))
	assert.True(t, report.TotalSellingValue.Equal(decimal.NewFromInt(75)))
}
