package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

// ─── Querier que cuenta llamadas ─────────────────────────────────────────────

var errUnreachable = errors.New("la consulta no debía llegar a la base")

type countingQuerier struct{ calls int }

func (q *countingQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	q.calls++
	return pgconn.CommandTag{}, errUnreachable
}

func (q *countingQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	q.calls++
	return nil, errUnreachable
}

func (q *countingQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	q.calls++
	return failedRow{}
}

type failedRow struct{}

func (failedRow) Scan(...any) error { return errUnreachable }

// ─── Ids que no son UUID ─────────────────────────────────────────────────────

func TestItemRepo_IdNoUUIDNoConsulta(t *testing.T) {
	ctx := context.Background()
	q := &countingQuerier{}
	r := NewInventoryItemRepository(q)

	it, err := r.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, it)
	it, err = r.GetForUpdate(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, it)

	assert.ErrorIs(t, r.Delete(ctx, "abc"), domain.ErrNotFound)
	assert.ErrorIs(t, r.UpdateStock(ctx, "abc", 1, decimal.Zero), domain.ErrNotFound)
	assert.ErrorIs(t, r.Update(ctx, &entity.InventoryItem{ID: "abc"}), domain.ErrNotFound)

	list, total, err := r.List(ctx, repository.ItemFilter{CategoryID: "foo"}, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)

	assert.Zero(t, q.calls)
}

func TestItemRepo_ReferenciaNoUUIDEsValidacion(t *testing.T) {
	q := &countingQuerier{}
	r := NewInventoryItemRepository(q)
	id := "8f14e45f-ceea-467f-a8f5-3c3b1d5e9f1a"

	err := r.Create(context.Background(), &entity.InventoryItem{ID: id, SKU: "X-1", CategoryID: "foo"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "category_id")

	err = r.Update(context.Background(), &entity.InventoryItem{ID: id, CategoryID: id, SupplierID: "foo"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "supplier_id")
	assert.Zero(t, q.calls)
}

func TestGoodsOutRepo_IdNoUUIDNoConsulta(t *testing.T) {
	ctx := context.Background()
	q := &countingQuerier{}
	r := NewGoodsOutRequestRepository(q)

	g, err := r.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, g)
	g, err = r.GetForUpdate(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, g)
	assert.ErrorIs(t, r.UpdateDecision(ctx, &entity.GoodsOutRequest{ID: "abc"}), domain.ErrNotFound)
	assert.ErrorIs(t, r.Create(ctx, &entity.GoodsOutRequest{ItemID: "foo"}), domain.ErrNotFound)

	list, total, err := r.List(ctx, repository.GoodsOutFilter{RequestedBy: "u-tech"}, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
	assert.Zero(t, q.calls)
}

func TestCatalogRepos_IdNoUUIDNoConsulta(t *testing.T) {
	ctx := context.Background()
	q := &countingQuerier{}
	cats, sups := NewCategoryRepository(q), NewSupplierRepository(q)

	c, err := cats.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.ErrorIs(t, cats.Delete(ctx, "abc"), domain.ErrNotFound)
	assert.ErrorIs(t, cats.Update(ctx, &entity.Category{ID: "abc"}), domain.ErrNotFound)
	used, err := cats.InUse(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, used)

	s, err := sups.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.ErrorIs(t, sups.Delete(ctx, "abc"), domain.ErrNotFound)
	assert.ErrorIs(t, sups.Update(ctx, &entity.Supplier{ID: "abc"}), domain.ErrNotFound)
	assert.Zero(t, q.calls)
}

func TestMovementRepo_FiltroNoUUIDDevuelveVacio(t *testing.T) {
	ctx := context.Background()
	q := &countingQuerier{}
	r := NewInventoryMovementRepository(q)

	list, total, err := r.List(ctx, repository.MovementFilter{ItemID: "abc"}, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
	history, err := r.History(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Zero(t, q.calls)
}
