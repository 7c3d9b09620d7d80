package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

// ItemRepo implementa repository.InventoryItemRepository.
type ItemRepo struct {
	s  *Store
	tx *memTx // nil fuera de una transacción
}

func (r *ItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	return r.s.write(func(st *state) error {
		if err := r.s.fault(OpItemCreate); err != nil {
			return err
		}
		for _, it := range st.items {
			if it.SKU == item.SKU {
				return domain.Conflict("el SKU " + item.SKU + " ya está en uso")
			}
		}
		if r.tx != nil {
			r.tx.saveItem(st, item.ID)
		}
		cp := *item
		st.items[item.ID] = &cp
		return nil
	})
}

func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	r.s.read(func(st *state) {
		if it, ok := st.items[id]; ok {
			cp := *it
			out = &cp
		}
	})
	if r.tx != nil {
		if d := r.s.delay(); d > 0 {
			time.Sleep(d)
		}
	}
	return out, nil
}

// GetForUpdate toma el candado de la fila antes de leer; otra transacción que lo pida espera a que esta termine.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	if r.tx != nil {
		r.tx.lock("item:" + id)
	}
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	r.s.read(func(st *state) {
		for _, it := range st.items {
			if it.SKU == sku {
				cp := *it
				out = &cp
				return
			}
		}
	})
	return out, nil
}

// GetByCode busca por SKU (normalizado), código de barras o QR. Gana la coincidencia por SKU.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*entity.InventoryItem, error) {
	sku := entity.NormalizeSKU(code)
	var out *entity.InventoryItem
	r.s.read(func(st *state) {
		for _, it := range st.items {
			if it.SKU == sku {
				cp := *it
				out = &cp
				return
			}
		}
		for _, it := range st.items {
			if code != "" && (it.Barcode == code || it.QRCode == code) {
				cp := *it
				out = &cp
				return
			}
		}
	})
	return out, nil
}

func (r *ItemRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	if r.tx != nil {
		r.tx.lock("item:" + item.ID)
	}
	return r.s.write(func(st *state) error {
		cur, ok := st.items[item.ID]
		if !ok {
			return domain.NotFound("ítem")
		}
		for _, it := range st.items {
			if it.ID != item.ID && it.SKU == item.SKU {
				return domain.Conflict("el SKU " + item.SKU + " ya está en uso")
			}
		}
		if r.tx != nil {
			r.tx.saveItem(st, item.ID)
		}
		cp := *item
		cp.QuantityInStock = cur.QuantityInStock
		cp.CreatedAt = cur.CreatedAt
		cp.CreatedBy = cur.CreatedBy
		st.items[item.ID] = &cp
		return nil
	})
}

func (r *ItemRepo) UpdateStock(ctx context.Context, id string, quantity int64, purchasePrice decimal.Decimal) error {
	if r.tx != nil {
		r.tx.lock("item:" + id)
	}
	return r.s.write(func(st *state) error {
		if err := r.s.fault(OpItemUpdateStock); err != nil {
			return err
		}
		it, ok := st.items[id]
		if !ok {
			return domain.NotFound("ítem")
		}
		if r.tx != nil {
			r.tx.saveItem(st, id)
		}
		it.QuantityInStock = quantity
		it.PurchasePrice = purchasePrice
		it.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	if r.tx != nil {
		r.tx.lock("item:" + id)
	}
	return r.s.write(func(st *state) error {
		if _, ok := st.items[id]; !ok {
			return domain.NotFound("ítem")
		}
		if r.tx != nil {
			r.tx.saveItem(st, id)
		}
		for rid, req := range st.requests {
			if req.ItemID == id {
				if r.tx != nil {
					r.tx.saveRequest(st, rid)
				}
				delete(st.requests, rid)
			}
		}
		kept := st.movements[:0:0]
		for _, m := range st.movements {
			if m.ItemID != id {
				kept = append(kept, m)
			} else if r.tx != nil {
				r.tx.removed = append(r.tx.removed, m)
			}
		}
		st.movements = kept
		delete(st.items, id)
		return nil
	})
}

func (r *ItemRepo) List(ctx context.Context, f repository.ItemFilter, limit, offset int) ([]*entity.InventoryItem, int, error) {
	var all []*entity.InventoryItem
	search := strings.ToLower(strings.TrimSpace(f.Search))
	r.s.read(func(st *state) {
		for _, it := range st.items {
			if f.CategoryID != "" && it.CategoryID != f.CategoryID {
				continue
			}
			if f.SupplierID != "" && it.SupplierID != f.SupplierID {
				continue
			}
			if f.Status != "" && it.Status != f.Status {
				continue
			}
			if f.Condition != "" && it.Condition != f.Condition {
				continue
			}
			if f.LowStock && !it.IsLowStock() {
				continue
			}
			if search != "" && !matches(search, it.SKU, it.Name, it.Brand, it.Model, it.Barcode, it.QRCode) {
				continue
			}
			cp := *it
			all = append(all, &cp)
		}
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].SKU < all[j].SKU
	})
	return page(all, limit, offset), len(all), nil
}

func matches(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
