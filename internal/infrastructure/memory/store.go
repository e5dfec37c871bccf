// Package memory implementa los puertos de persistencia en memoria (STORAGE_DRIVER=memory y pruebas).
// Cada Store es independiente: no hay estado global.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var (
	_ repository.MaterialRepository = (*MaterialRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ inventory.TxRunner            = (*TxRunner)(nil)
)

// Store guarda materiales y movimientos. Las lecturas devuelven copias.
type Store struct {
	mu         sync.RWMutex
	materials  map[string]*entity.Material
	order      []string // orden de inserción
	movements  []*entity.Movement
	byMaterial map[string][]*entity.Movement
	seq        int64
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		materials:  make(map[string]*entity.Material),
		byMaterial: make(map[string][]*entity.Movement),
	}
}

// op escritura en dos fases: check valida contra el estado actual y apply lo modifica.
// Ambas corren con el lock de escritura tomado.
type op struct {
	check func(s *Store) error
	apply func(s *Store)
}

// exec ejecuta ops de forma atómica: si algún check falla no se aplica ninguna.
func (s *Store) exec(ops []op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range ops {
		if o.check == nil {
			continue
		}
		if err := o.check(s); err != nil {
			return err
		}
	}
	for _, o := range ops {
		o.apply(s)
	}
	return nil
}

// txn acumula escrituras hasta Commit.
type txn struct {
	ops []op
}

// submit aplica o acumula según haya transacción.
func submit(s *Store, tx *txn, o op) error {
	if tx != nil {
		tx.ops = append(tx.ops, o)
		return nil
	}
	return s.exec([]op{o})
}

// TxRunner transacciones sobre el Store: escrituras en staging y commit atómico con verificación de versión.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repos atados a una transacción; si fn falla o ctx venció se descarta todo.
func (r *TxRunner) Run(ctx context.Context, fn func(
	materials repository.MaterialRepository,
	movements repository.MovementRepository,
) error) error {
	tx := &txn{}
	if err := fn(&MaterialRepo{s: r.s, tx: tx}, &MovementRepo{s: r.s, tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.exec(tx.ops)
}

// MaterialRepo implementación en memoria de MaterialRepository.
type MaterialRepo struct {
	s  *Store
	tx *txn
}

// NewMaterialRepository repositorio sin transacción (cada escritura se confirma al instante).
func NewMaterialRepository(s *Store) *MaterialRepo {
	return &MaterialRepo{s: s}
}

// Create inserta un material nuevo; ID duplicado es conflicto.
func (r *MaterialRepo) Create(_ context.Context, m *entity.Material) error {
	stored := m.Clone()
	return submit(r.s, r.tx, op{
		check: func(s *Store) error {
			if _, ok := s.materials[stored.ID]; ok {
				return domain.ErrConflict
			}
			return nil
		},
		apply: func(s *Store) {
			s.materials[stored.ID] = stored
			s.order = append(s.order, stored.ID)
		},
	})
}

// GetByID devuelve una copia o (nil, nil).
func (r *MaterialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.materials[id].Clone(), nil
}

// GetForUpdate en memoria no bloquea: la exclusión la da el Locker y el commit verifica la versión.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	return r.GetByID(ctx, id)
}

// Update copia los atributos editables; Quantity, Version y Lifecycle quedan intactos.
func (r *MaterialRepo) Update(_ context.Context, m *entity.Material) error {
	upd := m.Clone()
	return submit(r.s, r.tx, op{
		check: exists(upd.ID),
		apply: func(s *Store) {
			cur := s.materials[upd.ID]
			cur.Name = upd.Name
			cur.Description = upd.Description
			cur.Location = upd.Location
			cur.MinStock = upd.MinStock
			cur.Category = upd.Category
			cur.UpdatedAt = upd.UpdatedAt
		},
	})
}

// SetLifecycle escribe solo el ciclo de vida.
func (r *MaterialRepo) SetLifecycle(_ context.Context, id string, lifecycle entity.Lifecycle, at time.Time) error {
	return submit(r.s, r.tx, op{
		check: exists(id),
		apply: func(s *Store) {
			cur := s.materials[id]
			cur.Lifecycle = lifecycle
			cur.UpdatedAt = at
		},
	})
}

func exists(id string) func(s *Store) error {
	return func(s *Store) error {
		if _, ok := s.materials[id]; !ok {
			return domain.ErrNotFound
		}
		return nil
	}
}

// UpdateQuantity compare-and-set sobre Version.
func (r *MaterialRepo) UpdateQuantity(_ context.Context, id string, expectedVersion int64, quantity int, at time.Time) error {
	return submit(r.s, r.tx, op{
		check: func(s *Store) error {
			cur, ok := s.materials[id]
			if !ok {
				return domain.ErrNotFound
			}
			if cur.Version != expectedVersion {
				return domain.ErrConflict
			}
			return nil
		},
		apply: func(s *Store) {
			cur := s.materials[id]
			cur.Quantity = quantity
			cur.Version++
			cur.UpdatedAt = at
		},
	})
}

// List snapshot filtrado; sin orden pedido respeta el orden de inserción.
func (r *MaterialRepo) List(_ context.Context, f repository.MaterialFilter) ([]*entity.Material, error) {
	r.s.mu.RLock()
	list := make([]*entity.Material, 0, len(r.s.order))
	for _, id := range r.s.order {
		list = append(list, r.s.materials[id].Clone())
	}
	r.s.mu.RUnlock()
	return domaininv.FilterMaterials(list, f), nil
}

// MovementRepo implementación en memoria de MovementRepository (solo inserción).
type MovementRepo struct {
	s  *Store
	tx *txn
}

// NewMovementRepository repositorio de movimientos sin transacción.
func NewMovementRepository(s *Store) *MovementRepo {
	return &MovementRepo{s: s}
}

// Create agrega el movimiento y le asigna Sequence al confirmarse.
func (r *MovementRepo) Create(_ context.Context, mov *entity.Movement) error {
	return submit(r.s, r.tx, op{
		check: func(s *Store) error {
			if _, ok := s.materials[mov.MaterialID]; !ok {
				return domain.ErrNotFound
			}
			return nil
		},
		apply: func(s *Store) {
			s.seq++
			mov.Sequence = s.seq
			stored := *mov
			s.movements = append(s.movements, &stored)
			s.byMaterial[stored.MaterialID] = append(s.byMaterial[stored.MaterialID], &stored)
		},
	})
}

// ListByMaterial movimientos del material, más recientes primero.
func (r *MovementRepo) ListByMaterial(_ context.Context, materialID string, limit int) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	src := r.s.byMaterial[materialID]
	out := make([]*entity.Movement, 0, len(src))
	for _, m := range src {
		c := *m
		out = append(out, &c)
	}
	r.s.mu.RUnlock()
	return newestFirst(out, limit), nil
}

// List aplica el filtro; To es inclusivo.
func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	src := r.s.movements
	if f.MaterialID != "" {
		src = r.s.byMaterial[f.MaterialID]
	}
	out := make([]*entity.Movement, 0, len(src))
	for _, m := range src {
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.From != nil && m.Timestamp.Before(*f.From) {
			continue
		}
		if f.To != nil && m.Timestamp.After(*f.To) {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	r.s.mu.RUnlock()
	return newestFirst(out, f.Limit), nil
}

// Count movimientos con from <= Timestamp <= to.
func (r *MovementRepo) Count(_ context.Context, from, to time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, m := range r.s.movements {
		if !m.Timestamp.Before(from) && !m.Timestamp.After(to) {
			n++
		}
	}
	return n, nil
}

func newestFirst(list []*entity.Movement, limit int) []*entity.Movement {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Timestamp.After(list[j].Timestamp)
		}
		return list[i].Sequence > list[j].Sequence
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
