// Package memstore implementa los puertos de persistencia en memoria para tests.
// Las transacciones corren en paralelo: GetForUpdate toma un candado por fila que se
// libera al terminar Run, y el rollback deshace solo lo que tocó la transacción.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/ispstock-api/internal/application/inventory"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

// Operaciones a las que se les puede inyectar un fallo con FailOn.
const (
	OpItemCreate       = "items.Create"
	OpItemUpdateStock  = "items.UpdateStock"
	OpMovementAppend   = "movements.Append"
	OpGoodsOutCreate   = "goodsout.Create"
	OpGoodsOutDecision = "goodsout.UpdateDecision"
)

type state struct {
	items      map[string]*entity.InventoryItem
	movements  []*entity.InventoryMovement
	requests   map[string]*entity.GoodsOutRequest
	categories map[string]*entity.Category
	suppliers  map[string]*entity.Supplier
	users      map[string]*entity.User
	nextMoveID int64
}

func newState() *state {
	return &state{
		items:      map[string]*entity.InventoryItem{},
		requests:   map[string]*entity.GoodsOutRequest{},
		categories: map[string]*entity.Category{},
		suppliers:  map[string]*entity.Supplier{},
		users:      map[string]*entity.User{},
	}
}

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu        sync.RWMutex // protege data, faults y readDelay
	data      *state
	faults    map[string]error
	readDelay time.Duration

	locksMu  sync.Mutex
	rowLocks map[string]*sync.Mutex
}

// New crea un store vacío.
func New() *Store {
	return &Store{data: newState(), faults: map[string]error{}, rowLocks: map[string]*sync.Mutex{}}
}

// FailOn hace que la operación op devuelva err hasta que se llame a ClearFaults.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// ClearFaults quita los fallos inyectados.
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = map[string]error{}
}

// SlowReads demora las lecturas de ítems dentro de una transacción. Ensancha la ventana
// entre leer y escribir para que una lectura sin candado se note en tests concurrentes.
func (s *Store) SlowReads(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readDelay = d
}

func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		return err
	}
	return nil
}

func (s *Store) delay() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readDelay
}

func (s *Store) rowLock(key string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.rowLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[key] = l
	}
	return l
}

// memTx candados tomados y registro para deshacer una transacción.
type memTx struct {
	s        *Store
	held     map[string]*sync.Mutex
	items    map[string]*entity.InventoryItem   // imagen previa; nil si no existía
	requests map[string]*entity.GoodsOutRequest // idem
	appended map[int64]bool
	removed  []*entity.InventoryMovement
}

func newTx(s *Store) *memTx {
	return &memTx{
		s:        s,
		held:     map[string]*sync.Mutex{},
		items:    map[string]*entity.InventoryItem{},
		requests: map[string]*entity.GoodsOutRequest{},
		appended: map[int64]bool{},
	}
}

// lock equivale a SELECT ... FOR UPDATE: bloquea hasta que la fila quede libre y la retiene hasta el fin de Run.
// Nunca se llama con s.mu tomado.
func (tx *memTx) lock(key string) {
	if _, ok := tx.held[key]; ok {
		return
	}
	l := tx.s.rowLock(key)
	l.Lock()
	tx.held[key] = l
}

func (tx *memTx) release() {
	for _, l := range tx.held {
		l.Unlock()
	}
	tx.held = nil
}

// saveItem guarda la imagen previa del ítem la primera vez que la transacción lo toca. Requiere s.mu.
func (tx *memTx) saveItem(st *state, id string) {
	if _, done := tx.items[id]; done {
		return
	}
	if it, ok := st.items[id]; ok {
		cp := *it
		tx.items[id] = &cp
		return
	}
	tx.items[id] = nil
}

func (tx *memTx) saveRequest(st *state, id string) {
	if _, done := tx.requests[id]; done {
		return
	}
	if req, ok := st.requests[id]; ok {
		cp := *req
		tx.requests[id] = &cp
		return
	}
	tx.requests[id] = nil
}

// rollback restaura las filas tocadas sin pisar lo que otras transacciones confirmaron.
func (tx *memTx) rollback() {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.data
	for id, prev := range tx.items {
		if prev == nil {
			delete(st.items, id)
		} else {
			st.items[id] = prev
		}
	}
	for id, prev := range tx.requests {
		if prev == nil {
			delete(st.requests, id)
		} else {
			st.requests[id] = prev
		}
	}
	if len(tx.appended) == 0 && len(tx.removed) == 0 {
		return
	}
	kept := st.movements[:0:0]
	for _, m := range st.movements {
		if !tx.appended[m.ID] {
			kept = append(kept, m)
		}
	}
	for _, m := range tx.removed {
		if !tx.appended[m.ID] {
			kept = append(kept, m)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })
	st.movements = kept
}

// Run implementa inventory.UnitOfWork: si fn falla (o entra en pánico) se deshacen sus escrituras.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newTx(s)
	defer tx.release()
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			err = fmt.Errorf("transacción abortada: %v", p)
		}
	}()

	if err := fn(s.txRepos(tx)); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (s *Store) txRepos(tx *memTx) inventory.TxRepos {
	return inventory.TxRepos{
		Items:     &ItemRepo{s: s, tx: tx},
		Movements: &MovementRepo{s: s, tx: tx},
		GoodsOut:  &GoodsOutRepo{s: s, tx: tx},
	}
}

// write ejecuta fn con el estado bloqueado. Dentro de una transacción fn registra lo que toca en tx.
func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// Items repositorio de ítems fuera de transacción.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Movements repositorio del ledger fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// GoodsOut repositorio de solicitudes fuera de transacción.
func (s *Store) GoodsOut() *GoodsOutRepo { return &GoodsOutRepo{s: s} }

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

// Suppliers repositorio de proveedores.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Reports repositorio de reportes.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{s: s} }

// TamperStock escribe el snapshot sin pasar por el ledger. Solo para simular corrupción.
func (s *Store) TamperStock(itemID string, qty int64) {
	_ = s.write(func(st *state) error {
		if it, ok := st.items[itemID]; ok {
			it.QuantityInStock = qty
		}
		return nil
	})
}

var (
	_ inventory.UnitOfWork                 = (*Store)(nil)
	_ repository.InventoryItemRepository   = (*ItemRepo)(nil)
	_ repository.MovementRepository        = (*MovementRepo)(nil)
	_ repository.GoodsOutRequestRepository = (*GoodsOutRepo)(nil)
	_ repository.CategoryRepository        = (*CategoryRepo)(nil)
	_ repository.SupplierRepository        = (*SupplierRepo)(nil)
	_ repository.UserRepository            = (*UserRepo)(nil)
	_ repository.ReportRepository          = (*ReportRepo)(nil)
)

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
