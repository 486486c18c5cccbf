package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
)

type billRepo struct {
	s  *Store
	tx *state
}

// NextNumber el consecutivo avanza también cuando la transacción se revierte.
func (r *billRepo) NextNumber(_ context.Context) (int64, error) {
	var n int64
	err := r.s.view(r.tx, func(st *state) error {
		if r.tx != nil {
			// dentro de runTx el lock del store ya está tomado
			r.s.st.billSeq++
			st.billSeq = r.s.st.billSeq
		} else {
			st.billSeq++
		}
		n = st.billSeq
		return nil
	})
	return n, err
}

func (r *billRepo) Create(_ context.Context, b *entity.Bill) error {
	if err := r.s.injectFault("bills.create", b.ID); err != nil {
		return err
	}
	return r.s.view(r.tx, func(st *state) error {
		for _, other := range st.bills {
			if other.ID == b.ID || other.Number == b.Number {
				return domain.ErrDuplicate
			}
		}
		st.bills[b.ID] = copyBill(*b)
		return nil
	})
}

func (r *billRepo) GetByID(_ context.Context, id string) (*entity.Bill, error) {
	var out *entity.Bill
	err := r.s.view(r.tx, func(st *state) error {
		if b, ok := st.bills[id]; ok {
			c := copyBill(b)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *billRepo) List(_ context.Context, f repository.BillFilter) ([]*entity.Bill, int, error) {
	var all []*entity.Bill
	err := r.s.view(r.tx, func(st *state) error {
		for _, b := range st.bills {
			if f.PartyID != "" && b.PartyID != f.PartyID {
				continue
			}
			if f.From != nil && b.Date.Before(*f.From) {
				continue
			}
			if f.To != nil && b.Date.After(*f.To) {
				continue
			}
			c := copyBill(b)
			all = append(all, &c)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].Number > all[j].Number
	})
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r *billRepo) Delete(_ context.Context, id string) error {
	if err := r.s.injectFault("bills.delete", id); err != nil {
		return err
	}
	return r.s.view(r.tx, func(st *state) error {
		if _, ok := st.bills[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.bills, id)
		return nil
	})
}
