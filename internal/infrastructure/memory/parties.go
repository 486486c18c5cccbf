package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
)

type partyRepo struct {
	s *Store
}

func (r *partyRepo) Create(_ context.Context, p *entity.Party) error {
	if err := r.s.injectFault("parties.create", p.ID); err != nil {
		return err
	}
	return r.s.view(nil, func(st *state) error {
		if gstinTaken(st, p.GSTIN, p.ID) {
			return domain.ErrDuplicate
		}
		st.parties[p.ID] = *p
		return nil
	})
}

func (r *partyRepo) GetByID(_ context.Context, id string) (*entity.Party, error) {
	var out *entity.Party
	err := r.s.view(nil, func(st *state) error {
		if p, ok := st.parties[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *partyRepo) GetByGSTIN(_ context.Context, gstin string) (*entity.Party, error) {
	var out *entity.Party
	err := r.s.view(nil, func(st *state) error {
		for _, p := range st.parties {
			if gstin != "" && strings.EqualFold(p.GSTIN, gstin) {
				c := p
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *partyRepo) List(_ context.Context, search string, limit, offset int) ([]*entity.Party, error) {
	var all []*entity.Party
	q := strings.ToLower(strings.TrimSpace(search))
	_ = r.s.view(nil, func(st *state) error {
		for _, p := range st.parties {
			if q != "" && !strings.Contains(strings.ToLower(p.Name), q) &&
				!strings.Contains(strings.ToLower(p.GSTIN), q) && !strings.Contains(p.Phone, q) {
				continue
			}
			c := p
			all = append(all, &c)
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return page(all, limit, offset), nil
}

func (r *partyRepo) Update(_ context.Context, p *entity.Party) error {
	if err := r.s.injectFault("parties.update", p.ID); err != nil {
		return err
	}
	return r.s.view(nil, func(st *state) error {
		cur, ok := st.parties[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if gstinTaken(st, p.GSTIN, p.ID) {
			return domain.ErrDuplicate
		}
		next := *p
		next.CreatedAt = cur.CreatedAt
		st.parties[p.ID] = next
		return nil
	})
}

func gstinTaken(st *state, gstin, exceptID string) bool {
	if gstin == "" {
		return false
	}
	for id, other := range st.parties {
		if id != exceptID && strings.EqualFold(other.GSTIN, gstin) {
			return true
		}
	}
	return false
}
