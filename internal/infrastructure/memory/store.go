// Package memory implementa los repositorios y los ejecutores de transacción sobre mapas en
// memoria. Sirve como driver STORAGE_DRIVER=memory y como doble de la base en tests.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
)

// FaultFunc se invoca antes de cada escritura con la operación (p.ej. "products.update_stock")
// y el ID afectado. Si devuelve error la escritura falla con ese error.
type FaultFunc func(op, id string) error

type state struct {
	products map[string]entity.Product
	entries  map[string]entity.StockEntry
	users    map[string]entity.User
	parties  map[string]entity.Party
	bills    map[string]entity.Bill
	billSeq  int64
}

func newState() *state {
	return &state{
		products: make(map[string]entity.Product),
		entries:  make(map[string]entity.StockEntry),
		users:    make(map[string]entity.User),
		parties:  make(map[string]entity.Party),
		bills:    make(map[string]entity.Bill),
	}
}

// clone copia profunda usada como snapshot de transacción.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.entries {
		c.entries[k] = copyEntry(v)
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.parties {
		c.parties[k] = v
	}
	for k, v := range s.bills {
		c.bills[k] = copyBill(v)
	}
	// la secuencia no participa del rollback, igual que una SEQUENCE de PostgreSQL
	c.billSeq = s.billSeq
	return c
}

// Store agrupa el estado. mu serializa las transacciones completas, lo que equivale a bloquear
// todas las filas: dos movimientos nunca se intercalan.
type Store struct {
	mu sync.Mutex
	st *state

	faultMu sync.RWMutex
	fault   FaultFunc
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// SetFault instala (o quita con nil) el hook de fallos inyectados.
func (s *Store) SetFault(fn FaultFunc) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.fault = fn
}

func (s *Store) injectFault(op, id string) error {
	s.faultMu.RLock()
	fn := s.fault
	s.faultMu.RUnlock()
	if fn == nil {
		return nil
	}
	return fn(op, id)
}

// view ejecuta fn sobre el estado de la tx si existe; fuera de tx toma el lock del store.
func (s *Store) view(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// runTx ejecuta fn sobre una copia del estado y la publica solo si fn no falla.
func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, tx *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.st.clone()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// StockEntries repositorio de asientos fuera de transacción.
func (s *Store) StockEntries() repository.StockEntryRepository { return &stockEntryRepo{s: s} }

// Users repositorio de usuarios.
func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }

// Parties repositorio de clientes.
func (s *Store) Parties() repository.PartyRepository { return &partyRepo{s: s} }

// Bills repositorio de facturas fuera de transacción.
func (s *Store) Bills() repository.BillRepository { return &billRepo{s: s} }

// TxRunner ejecutor de transacciones para el libro de stock.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repositorios atados a una copia del estado (commit solo si fn no falla).
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	entryRepo repository.StockEntryRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.s.runTx(ctx, func(ctx context.Context, tx *state) error {
		return fn(ctx, &stockEntryRepo{s: r.s, tx: tx}, &productRepo{s: r.s, tx: tx})
	})
}

// RunBilling igual que Run pero añade el repositorio de facturas.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	ctx context.Context,
	entryRepo repository.StockEntryRepository,
	productRepo repository.ProductRepository,
	billRepo repository.BillRepository,
) error) error {
	return r.s.runTx(ctx, func(ctx context.Context, tx *state) error {
		return fn(ctx, &stockEntryRepo{s: r.s, tx: tx}, &productRepo{s: r.s, tx: tx}, &billRepo{s: r.s, tx: tx})
	})
}

func copyProduct(p entity.Product) entity.Product {
	if p.SubUnit != nil {
		su := *p.SubUnit
		p.SubUnit = &su
	}
	return p
}

func copyEntry(e entity.StockEntry) entity.StockEntry {
	e.Items = append([]entity.StockEntryItem(nil), e.Items...)
	return e
}

func copyBill(b entity.Bill) entity.Bill {
	b.Items = append([]entity.BillItem(nil), b.Items...)
	return b
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
