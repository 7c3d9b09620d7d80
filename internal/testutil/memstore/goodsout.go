package memstore

import (
	"context"
	"sort"

	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

// GoodsOutRepo solicitudes de salida en memoria.
type GoodsOutRepo struct {
	s  *Store
	tx *memTx
}

func (r *GoodsOutRepo) Create(ctx context.Context, req *entity.GoodsOutRequest) error {
	return r.s.write(func(st *state) error {
		if err := r.s.fault(OpGoodsOutCreate); err != nil {
			return err
		}
		if _, ok := st.items[req.ItemID]; !ok {
			return domain.NotFound("ítem")
		}
		if r.tx != nil {
			r.tx.saveRequest(st, req.ID)
		}
		cp := *req
		st.requests[req.ID] = &cp
		return nil
	})
}

func (r *GoodsOutRepo) GetByID(ctx context.Context, id string) (*entity.GoodsOutRequest, error) {
	var out *entity.GoodsOutRequest
	r.s.read(func(st *state) {
		if req, ok := st.requests[id]; ok {
			cp := *req
			out = &cp
		}
	})
	return out, nil
}

// GetForUpdate serializa dos decisiones sobre la misma solicitud.
func (r *GoodsOutRepo) GetForUpdate(ctx context.Context, id string) (*entity.GoodsOutRequest, error) {
	if r.tx != nil {
		r.tx.lock("request:" + id)
	}
	return r.GetByID(ctx, id)
}

func (r *GoodsOutRepo) UpdateDecision(ctx context.Context, req *entity.GoodsOutRequest) error {
	if r.tx != nil {
		r.tx.lock("request:" + req.ID)
	}
	return r.s.write(func(st *state) error {
		if err := r.s.fault(OpGoodsOutDecision); err != nil {
			return err
		}
		cur, ok := st.requests[req.ID]
		if !ok {
			return domain.NotFound("solicitud")
		}
		if r.tx != nil {
			r.tx.saveRequest(st, req.ID)
		}
		cur.Status = req.Status
		cur.ApprovedBy = req.ApprovedBy
		cur.ApprovedAt = req.ApprovedAt
		cur.RejectionReason = req.RejectionReason
		cur.CompletedAt = req.CompletedAt
		cur.UpdatedAt = req.UpdatedAt
		return nil
	})
}

func (r *GoodsOutRepo) List(ctx context.Context, f repository.GoodsOutFilter, limit, offset int) ([]*entity.GoodsOutRequest, int, error) {
	var all []*entity.GoodsOutRequest
	r.s.read(func(st *state) {
		for _, req := range st.requests {
			if f.Status != "" && req.Status != f.Status {
				continue
			}
			if f.RequestedBy != "" && req.RequestedBy != f.RequestedBy {
				continue
			}
			if f.ItemID != "" && req.ItemID != f.ItemID {
				continue
			}
			cp := *req
			all = append(all, &cp)
		}
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].RequestedAt.Equal(all[j].RequestedAt) {
			return all[i].RequestedAt.After(all[j].RequestedAt)
		}
		return all[i].ID < all[j].ID
	})
	return page(all, limit, offset), len(all), nil
}

func (r *GoodsOutRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	n := 0
	r.s.read(func(st *state) {
		for _, req := range st.requests {
			if req.Status == status {
				n++
			}
		}
	})
	return n, nil
}
