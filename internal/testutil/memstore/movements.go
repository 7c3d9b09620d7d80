package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

// MovementRepo ledger en memoria, append-only.
type MovementRepo struct {
	s  *Store
	tx *memTx
}

func (r *MovementRepo) Append(ctx context.Context, m *entity.InventoryMovement) error {
	return r.s.write(func(st *state) error {
		if err := r.s.fault(OpMovementAppend); err != nil {
			return err
		}
		st.nextMoveID++
		m.ID = st.nextMoveID
		now := time.Now().UTC()
		if m.MovementDate.IsZero() {
			m.MovementDate = now
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		cp := *m
		st.movements = append(st.movements, &cp)
		if r.tx != nil {
			r.tx.appended[cp.ID] = true
		}
		return nil
	})
}

func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryMovement, int, error) {
	return r.List(ctx, repository.MovementFilter{ItemID: itemID}, limit, offset)
}

func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter, limit, offset int) ([]*entity.InventoryMovement, int, error) {
	var all []*entity.InventoryMovement
	r.s.read(func(st *state) {
		for _, m := range st.movements {
			if f.ItemID != "" && m.ItemID != f.ItemID {
				continue
			}
			if f.MovementType != "" && m.Type != f.MovementType {
				continue
			}
			if f.UserID != "" && m.UserID != f.UserID {
				continue
			}
			if f.From != nil && m.MovementDate.Before(*f.From) {
				continue
			}
			if f.To != nil && m.MovementDate.After(*f.To) {
				continue
			}
			cp := *m
			all = append(all, &cp)
		}
	})
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].MovementDate.Equal(all[j].MovementDate) {
			return all[i].MovementDate.After(all[j].MovementDate)
		}
		return all[i].ID < all[j].ID
	})
	return page(all, limit, offset), len(all), nil
}

func (r *MovementRepo) History(ctx context.Context, itemID string) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	r.s.read(func(st *state) {
		for _, m := range st.movements {
			if m.ItemID == itemID {
				cp := *m
				out = append(out, &cp)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
