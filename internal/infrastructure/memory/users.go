package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	if err := r.s.injectFault("users.create", u.ID); err != nil {
		return err
	}
	return r.s.view(nil, func(st *state) error {
		for _, other := range st.users {
			if strings.EqualFold(other.Email, u.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.s.view(nil, func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.s.view(nil, func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				c := u
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	var all []*entity.User
	_ = r.s.view(nil, func(st *state) error {
		for _, u := range st.users {
			c := u
			all = append(all, &c)
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	return page(all, limit, offset), nil
}
