package memstore

import (
	"context"
	"strings"

	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
)

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.s.write(func(st *state) error {
		for _, other := range st.users {
			if other.Username == u.Username || strings.EqualFold(other.Email, u.Email) {
				return domain.Conflict("usuario o email ya registrado")
			}
		}
		cp := *u
		st.users[u.ID] = &cp
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.s.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			cp := *u
			out = &cp
		}
	})
	return out, nil
}

func (r *UserRepo) FindByLogin(ctx context.Context, login string) (*entity.User, error) {
	var out *entity.User
	r.s.read(func(st *state) {
		for _, u := range st.users {
			if u.Username == login || strings.EqualFold(u.Email, login) {
				cp := *u
				out = &cp
				return
			}
		}
	})
	return out, nil
}
