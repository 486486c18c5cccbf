package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
)

type stockEntryRepo struct {
	s  *Store
	tx *state
}

func (r *stockEntryRepo) Create(_ context.Context, e *entity.StockEntry) error {
	if err := r.s.injectFault("stock_entries.create", e.ID); err != nil {
		return err
	}
	return r.s.view(r.tx, func(st *state) error {
		if _, ok := st.entries[e.ID]; ok {
			return domain.ErrDuplicate
		}
		st.entries[e.ID] = copyEntry(*e)
		return nil
	})
}

func (r *stockEntryRepo) GetByID(_ context.Context, id string) (*entity.StockEntry, error) {
	var out *entity.StockEntry
	err := r.s.view(r.tx, func(st *state) error {
		if e, ok := st.entries[id]; ok {
			c := copyEntry(e)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *stockEntryRepo) Delete(_ context.Context, id string) error {
	if err := r.s.injectFault("stock_entries.delete", id); err != nil {
		return err
	}
	return r.s.view(r.tx, func(st *state) error {
		if _, ok := st.entries[id]; !ok {
			return domain.ErrNotFound
		}
		// equivale a la FK bills.stock_entry_id
		for _, b := range st.bills {
			if b.StockEntryID == id {
				return domain.ErrConflict
			}
		}
		delete(st.entries, id)
		return nil
	})
}

func (r *stockEntryRepo) List(_ context.Context, f repository.StockEntryFilter) ([]*entity.StockEntry, int, error) {
	var all []*entity.StockEntry
	err := r.s.view(r.tx, func(st *state) error {
		for _, e := range st.entries {
			if !matchesEntry(e, f) {
				continue
			}
			c := copyEntry(e)
			all = append(all, &c)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return page(all, f.Limit, f.Offset), len(all), nil
}

func matchesEntry(e entity.StockEntry, f repository.StockEntryFilter) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.From != nil && e.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.CreatedAt.After(*f.To) {
		return false
	}
	if f.ProductID == "" {
		return true
	}
	for _, it := range e.Items {
		if it.ProductID == f.ProductID {
			return true
		}
	}
	return false
}
