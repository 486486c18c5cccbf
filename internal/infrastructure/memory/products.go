package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
)

type productRepo struct {
	s  *Store
	tx *state
}

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	if err := r.s.injectFault("products.create", p.ID); err != nil {
		return err
	}
	return r.s.view(r.tx, func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.products {
			if strings.EqualFold(other.SKU, p.SKU) {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = copyProduct(*p)
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.view(r.tx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			c := copyProduct(p)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.view(r.tx, func(st *state) error {
		for _, p := range st.products {
			if strings.EqualFold(p.SKU, sku) {
				c := copyProduct(p)
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) FindByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.s.view(r.tx, func(st *state) error {
		sorted := append([]string(nil), ids...)
		sort.Strings(sorted)
		for i, id := range sorted {
			if i > 0 && sorted[i-1] == id {
				continue
			}
			if p, ok := st.products[id]; ok {
				c := copyProduct(p)
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

// FindByIDsForUpdate en memoria el bloqueo lo da la transacción completa.
func (r *productRepo) FindByIDsForUpdate(ctx context.Context, ids []string) ([]*entity.Product, error) {
	return r.FindByIDs(ctx, ids)
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	if err := r.s.injectFault("products.update", p.ID); err != nil {
		return err
	}
	return r.s.view(r.tx, func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		next := copyProduct(*p)
		next.CurrentStock = cur.CurrentStock
		next.CreatedAt = cur.CreatedAt
		st.products[p.ID] = next
		return nil
	})
}

func (r *productRepo) UpdateStock(_ context.Context, productID string, newStock decimal.Decimal, at time.Time) error {
	if err := r.s.injectFault("products.update_stock", productID); err != nil {
		return err
	}
	return r.s.view(r.tx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		// mismo efecto que CHECK (current_stock >= 0)
		if newStock.IsNegative() {
			return domain.ErrInsufficientStock
		}
		p.CurrentStock = newStock
		p.UpdatedAt = at
		st.products[productID] = p
		return nil
	})
}

func (r *productRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var all []*entity.Product
	err := r.s.view(r.tx, func(st *state) error {
		q := strings.ToLower(strings.TrimSpace(f.Search))
		for _, p := range st.products {
			if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.SKU), q) {
				continue
			}
			if f.LowStockOnly && !p.IsLowStock() {
				continue
			}
			c := copyProduct(p)
			all = append(all, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return page(all, f.Limit, f.Offset), nil
}
