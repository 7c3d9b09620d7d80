package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ispstock-api/internal/application/dto"
	"github.com/jhoicas/ispstock-api/internal/application/inventory"
	"github.com/jhoicas/ispstock-api/internal/application/ports"
	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/policy"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
	"github.com/jhoicas/ispstock-api/internal/testutil"
	"github.com/jhoicas/ispstock-api/internal/testutil/memstore"
)

var (
	admin      = policy.Actor{ID: "u-admin", Role: entity.RoleAdmin}
	technician = policy.Actor{ID: "u-tech", Role: entity.RoleTechnician}
)

type fixture struct {
	store  *memstore.Store
	rec    *testutil.Recorder
	items  *inventory.ItemUseCase
	adjust *inventory.AdjustStockUseCase
	catID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	rec := testutil.NewRecorder()
	log := zerolog.Nop()
	f := &fixture{
		store:  store,
		rec:    rec,
		items:  inventory.NewItemUseCase(store, store.Items(), store.Movements(), store.Categories(), store.Suppliers(), rec, log),
		adjust: inventory.NewAdjustStockUseCase(store, rec, rec, log),
		catID:  "cat-1",
	}
	require.NoError(t, store.Categories().Create(context.Background(), &entity.Category{ID: f.catID, Name: "Routers", Code: "RTR", IsActive: true}))
	return f
}

func (f *fixture) createItem(t *testing.T, sku string, qty int64) *entity.InventoryItem {
	t.Helper()
	item, err := f.items.Create(context.Background(), admin, dto.CreateItemRequest{
		SKU:             sku,
		Name:            "Router " + sku,
		CategoryID:      f.catID,
		PurchasePrice:   decimal.NewFromInt(100),
		SellingPrice:    decimal.NewFromInt(150),
		QuantityInStock: qty,
		MinimumStock:    2,
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) move(ctx context.Context, itemID, movementType string, qty int64) (*inventory.MovementResult, error) {
	return f.adjust.AdjustStock(ctx, inventory.AdjustStockInput{
		Actor:  admin,
		ItemID: itemID,
		Request: dto.AdjustStockRequest{
			Quantity:     qty,
			MovementType: movementType,
			Reason:       "conteo",
		},
	})
}

// replay reconstruye el stock desde el ledger y verifica la cadena before/after.
func replay(t *testing.T, f *fixture, itemID string) int64 {
	t.Helper()
	history, err := f.store.Movements().History(context.Background(), itemID)
	require.NoError(t, err)
	var stock int64
	for _, m := range history {
		require.Equal(t, stock, m.QuantityBefore, "movimiento %d no encadena", m.ID)
		require.Equal(t, m.QuantityAfter-m.QuantityBefore, m.Quantity)
		require.GreaterOrEqual(t, m.QuantityAfter, int64(0))
		stock = m.QuantityAfter
	}
	return stock
}

// ─── Alta ────────────────────────────────────────────────────────────────────

func TestCreate_StockInicialGeneraEntradaEnLedger(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "rtr-ax3000", 10)

	assert.Equal(t, "RTR-AX3000", item.SKU)
	history, err := f.store.Movements().History(context.Background(), item.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.MovementTypeIn, history[0].Type)
	assert.Equal(t, int64(0), history[0].QuantityBefore)
	assert.Equal(t, int64(10), history[0].QuantityAfter)
	assert.Equal(t, inventory.InitialStockReason, history[0].Reason)
	assert.Equal(t, []string{ports.EventInventoryUpdate}, f.rec.Names())
}

func TestCreate_SinStockNoGeneraMovimiento(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 0)

	history, err := f.store.Movements().History(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCreate_SKUDuplicadoEsConflicto(t *testing.T) {
	f := newFixture(t)
	f.createItem(t, "ONT-1", 0)

	_, err := f.items.Create(context.Background(), admin, dto.CreateItemRequest{
		SKU: "ont-1", Name: "Otro", CategoryID: f.catID,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreate_CategoriaInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.items.Create(context.Background(), admin, dto.CreateItemRequest{
		SKU: "ONT-2", Name: "ONT", CategoryID: "no-existe",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "category_id")
}

func TestCreate_TecnicoNoPuedeCrear(t *testing.T) {
	f := newFixture(t)
	_, err := f.items.Create(context.Background(), technician, dto.CreateItemRequest{SKU: "X-1", Name: "X", CategoryID: f.catID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ─── Update ──────────────────────────────────────────────────────────────────

func TestUpdate_RechazaCambioDeCantidad(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 5)
	qty := int64(50)

	_, err := f.items.Update(context.Background(), admin, item.ID, dto.UpdateItemRequest{QuantityInStock: &qty})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.QuantityInStock)
}

func TestUpdate_NoTocaElStock(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 5)
	name := "ONT Huawei"

	got, err := f.items.Update(context.Background(), admin, item.ID, dto.UpdateItemRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, int64(5), got.QuantityInStock)
	assert.Equal(t, int64(5), replay(t, f, item.ID))
}

func TestUpdate_ConcurrenteConEntradaConservaCostoPromedio(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 10) // 10 @ 100
	f.store.SlowReads(20 * time.Millisecond)
	name := "ONT Huawei"
	cost := decimal.NewFromInt(200)

	errs := concurrently(2, func(i int) error {
		if i == 0 {
			_, err := f.items.Update(context.Background(), admin, item.ID, dto.UpdateItemRequest{Name: &name})
			return err
		}
		_, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
			Actor:   admin,
			ItemID:  item.ID,
			Request: dto.AdjustStockRequest{Quantity: 10, MovementType: entity.MovementTypeIn, Reason: "compra", UnitCost: &cost},
		})
		return err
	})
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	got, err := f.items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, int64(20), got.QuantityInStock)
	assert.True(t, got.PurchasePrice.Equal(decimal.NewFromInt(150)), "costo promedio pisado: %s", got.PurchasePrice)
}

func TestUpdate_PrecioExplicitoSeRespeta(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 10)
	price := decimal.NewFromInt(120)

	got, err := f.items.Update(context.Background(), admin, item.ID, dto.UpdateItemRequest{PurchasePrice: &price})
	require.NoError(t, err)
	assert.True(t, got.PurchasePrice.Equal(price))
}

func TestUpdate_ItemInexistente(t *testing.T) {
	f := newFixture(t)
	name := "x"
	_, err := f.items.Update(context.Background(), admin, "no-existe", dto.UpdateItemRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── Búsqueda por código ─────────────────────────────────────────────────────

func TestGetByCode_SKUBarcodeYQR(t *testing.T) {
	f := newFixture(t)
	item, err := f.items.Create(context.Background(), admin, dto.CreateItemRequest{
		SKU:        "ont-hg8245",
		Name:       "ONT Huawei",
		CategoryID: f.catID,
		Barcode:    "7701234567890",
		QRCode:     "QR-ONT-0001",
	})
	require.NoError(t, err)

	for _, code := range []string{"ONT-HG8245", "ont-hg8245", "7701234567890", "QR-ONT-0001"} {
		got, err := f.items.GetByCode(context.Background(), code)
		require.NoError(t, err, code)
		assert.Equal(t, item.ID, got.ID, code)
	}

	_, err = f.items.GetByCode(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.items.GetByCode(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ─── Ajuste de stock ─────────────────────────────────────────────────────────

func TestAdjustStock_ConvencionDeSignos(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 10)
	ctx := context.Background()

	res, err := f.move(ctx, item.ID, entity.MovementTypeOut, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), res.Movement.Quantity)
	assert.Equal(t, int64(7), res.NewStock)

	res, err = f.move(ctx, item.ID, entity.MovementTypeIn, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Movement.Quantity)
	assert.Equal(t, int64(12), res.NewStock)

	res, err = f.move(ctx, item.ID, entity.MovementTypeAdjustment, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(-8), res.Movement.Quantity)
	assert.Equal(t, int64(4), res.NewStock)

	assert.Equal(t, int64(4), replay(t, f, item.ID))
	got, _ := f.items.GetByID(ctx, item.ID)
	assert.Equal(t, int64(4), got.QuantityInStock)
}

func TestAdjustStock_SalidaMayorAlStock(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 2)

	_, err := f.move(context.Background(), item.ID, entity.MovementTypeOut, 3)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, item.ID, ise.ItemID)
	assert.Equal(t, int64(2), ise.Available)
	assert.Equal(t, int64(3), ise.Requested)
	assert.Equal(t, 1, f.rec.Rejections["insufficient_stock"])

	history, _ := f.store.Movements().History(context.Background(), item.ID)
	assert.Len(t, history, 1)
}

func TestAdjustStock_RazonObligatoria(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 2)

	_, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
		Actor:   admin,
		ItemID:  item.ID,
		Request: dto.AdjustStockRequest{Quantity: 1, MovementType: entity.MovementTypeIn, Reason: "   "},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "reason")
}

func TestAdjustStock_ItemInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.move(context.Background(), "no-existe", entity.MovementTypeIn, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStock_TransferNoSoportado(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 2)
	_, err := f.move(context.Background(), item.ID, entity.MovementTypeTransfer, 1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAdjustStock_EntradaConCostoRecalculaPromedio(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 10) // 10 @ 100
	cost := decimal.NewFromInt(200)

	res, err := f.adjust.AdjustStock(context.Background(), inventory.AdjustStockInput{
		Actor:   admin,
		ItemID:  item.ID,
		Request: dto.AdjustStockRequest{Quantity: 10, MovementType: entity.MovementTypeIn, Reason: "compra", UnitCost: &cost},
	})
	require.NoError(t, err)
	assert.True(t, res.Item.PurchasePrice.Equal(decimal.NewFromInt(150)), "got %s", res.Item.PurchasePrice)
}

func TestAdjustStock_FalloAlActualizarSnapshotRevierteTodo(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 10)
	f.rec.Reset()
	f.store.FailOn(memstore.OpItemUpdateStock, errors.New("conexión perdida"))

	_, err := f.move(context.Background(), item.ID, entity.MovementTypeOut, 4)
	require.Error(t, err)

	f.store.ClearFaults()
	history, _ := f.store.Movements().History(context.Background(), item.ID)
	assert.Len(t, history, 1, "el movimiento no debe sobrevivir al rollback")
	got, _ := f.items.GetByID(context.Background(), item.ID)
	assert.Equal(t, int64(10), got.QuantityInStock)
	assert.Empty(t, f.rec.Names(), "no se publica nada si no hubo commit")
}

// concurrently arranca n goroutines a la vez y devuelve sus errores.
func concurrently(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func countOutcomes(t *testing.T, errs []error) (ok, insufficient int) {
	t.Helper()
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	return ok, insufficient
}

func TestAdjustStock_SalidasConcurrentesNoSobregiran(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 10)
	// sin el candado de fila ambas lecturas verían 10 y las dos salidas pasarían
	f.store.SlowReads(20 * time.Millisecond)

	errs := concurrently(2, func(int) error {
		_, err := f.move(context.Background(), item.ID, entity.MovementTypeOut, 6)
		return err
	})

	ok, insufficient := countOutcomes(t, errs)
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	got, _ := f.items.GetByID(context.Background(), item.ID)
	assert.Equal(t, int64(4), got.QuantityInStock)
	assert.Equal(t, int64(4), replay(t, f, item.ID))
}

func TestAdjustStock_MuchasSalidasConcurrentesCuadranConLedger(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 10)
	f.store.SlowReads(5 * time.Millisecond)

	errs := concurrently(5, func(int) error {
		_, err := f.move(context.Background(), item.ID, entity.MovementTypeOut, 3)
		return err
	})

	ok, insufficient := countOutcomes(t, errs)
	assert.Equal(t, 3, ok)
	assert.Equal(t, 2, insufficient)
	got, _ := f.items.GetByID(context.Background(), item.ID)
	assert.Equal(t, int64(1), got.QuantityInStock)
	assert.Equal(t, int64(1), replay(t, f, item.ID))
	history, _ := f.store.Movements().History(context.Background(), item.ID)
	assert.Len(t, history, 4, "inicial + tres salidas")
}

func TestAdjustStock_ItemsDistintosNoSeBloquean(t *testing.T) {
	f := newFixture(t)
	a := f.createItem(t, "ONT-1", 10)
	b := f.createItem(t, "ONT-2", 10)
	f.store.SlowReads(10 * time.Millisecond)

	ids := []string{a.ID, b.ID, a.ID, b.ID}
	errs := concurrently(len(ids), func(i int) error {
		_, err := f.move(context.Background(), ids[i], entity.MovementTypeOut, 5)
		return err
	})

	ok, _ := countOutcomes(t, errs)
	assert.Equal(t, 4, ok)
	assert.Equal(t, int64(0), replay(t, f, a.ID))
	assert.Equal(t, int64(0), replay(t, f, b.ID))
}

// ─── Lecturas ────────────────────────────────────────────────────────────────

func TestListMovements_LecturaNoModificaEstado(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 10)
	_, err := f.move(context.Background(), item.ID, entity.MovementTypeOut, 1)
	require.NoError(t, err)

	first, total, err := f.items.ListMovements(context.Background(), item.ID, dto.PageRequest{})
	require.NoError(t, err)
	second, total2, err := f.items.ListMovements(context.Background(), item.ID, dto.PageRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, total)
	assert.Equal(t, total, total2)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(9), first.Item.CurrentStock)
}

func TestListAllMovements_TipoInvalido(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.items.ListAllMovements(context.Background(), repositoryFilter("teleport"), dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ─── Delete ──────────────────────────────────────────────────────────────────

func TestDelete_BorraLedgerDelItem(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "ONT-1", 10)

	require.NoError(t, f.items.Delete(context.Background(), admin, item.ID))

	_, err := f.items.GetByID(context.Background(), item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	history, _ := f.store.Movements().History(context.Background(), item.ID)
	assert.Empty(t, history)
}

func TestDelete_ItemInexistente(t *testing.T) {
	f := newFixture(t)
	err := f.items.Delete(context.Background(), admin, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func repositoryFilter(movementType string) repository.MovementFilter {
	return repository.MovementFilter{MovementType: movementType}
}
