package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
)

// CategoryRepo categorías en memoria.
type CategoryRepo struct{ s *Store }

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	return r.s.write(func(st *state) error {
		for _, other := range st.categories {
			if other.Code == c.Code {
				return domain.Conflict("el código " + c.Code + " ya existe")
			}
		}
		cp := *c
		st.categories[c.ID] = &cp
		return nil
	})
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	r.s.read(func(st *state) {
		if c, ok := st.categories[id]; ok {
			cp := *c
			out = &cp
		}
	})
	return out, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.categories[c.ID]; !ok {
			return domain.NotFound("categoría")
		}
		for _, other := range st.categories {
			if other.ID != c.ID && other.Code == c.Code {
				return domain.Conflict("el código " + c.Code + " ya existe")
			}
		}
		cp := *c
		st.categories[c.ID] = &cp
		return nil
	})
}

func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Category, error) {
	var out []*entity.Category
	r.s.read(func(st *state) {
		for _, c := range st.categories {
			if activeOnly && !c.IsActive {
				continue
			}
			cp := *c
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (r *CategoryRepo) InUse(ctx context.Context, id string) (bool, error) {
	used := false
	r.s.read(func(st *state) {
		for _, it := range st.items {
			if it.CategoryID == id {
				used = true
				return
			}
		}
	})
	return used, nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.categories[id]; !ok {
			return domain.NotFound("categoría")
		}
		delete(st.categories, id)
		return nil
	})
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ s *Store }

func (r *SupplierRepo) Create(ctx context.Context, sup *entity.Supplier) error {
	return r.s.write(func(st *state) error {
		for _, other := range st.suppliers {
			if other.Code == sup.Code {
				return domain.Conflict("el código " + sup.Code + " ya existe")
			}
		}
		cp := *sup
		st.suppliers[sup.ID] = &cp
		return nil
	})
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	r.s.read(func(st *state) {
		if sup, ok := st.suppliers[id]; ok {
			cp := *sup
			out = &cp
		}
	})
	return out, nil
}

func (r *SupplierRepo) Update(ctx context.Context, sup *entity.Supplier) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.suppliers[sup.ID]; !ok {
			return domain.NotFound("proveedor")
		}
		for _, other := range st.suppliers {
			if other.ID != sup.ID && other.Code == sup.Code {
				return domain.Conflict("el código " + sup.Code + " ya existe")
			}
		}
		cp := *sup
		st.suppliers[sup.ID] = &cp
		return nil
	})
}

func (r *SupplierRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	r.s.read(func(st *state) {
		for _, sup := range st.suppliers {
			if activeOnly && !sup.IsActive {
				continue
			}
			cp := *sup
			out = append(out, &cp)
		}
	})
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (r *SupplierRepo) InUse(ctx context.Context, id string) (bool, error) {
	used := false
	r.s.read(func(st *state) {
		for _, it := range st.items {
			if it.SupplierID == id {
				used = true
				return
			}
		}
	})
	return used, nil
}

func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.suppliers[id]; !ok {
			return domain.NotFound("proveedor")
		}
		delete(st.suppliers, id)
		return nil
	})
}
