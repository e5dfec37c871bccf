package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// StatusFilter filtro por estado del material (mismos valores que usa el cliente web).
type StatusFilter string

const (
	StatusAll      StatusFilter = "todos"
	StatusActive   StatusFilter = "ativos"
	StatusLowStock StatusFilter = "baixoEstoque"
	StatusZeroed   StatusFilter = "zerados"
	StatusInactive StatusFilter = "inativos"
)

// SortField orden solicitado para el listado. Vacío = orden de inserción.
type SortField string

const (
	SortInsertion SortField = ""
	SortName      SortField = "nome"
	SortQuantity  SortField = "quantidade"
	SortUpdatedAt SortField = "atualizadoEm"
)

// MaterialFilter criterios de listado de materiales.
type MaterialFilter struct {
	Search   string
	Category string
	Status   StatusFilter
	SortBy   SortField
}

// MaterialRepository define el puerto de persistencia para Material (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el material no existe.
type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	// GetForUpdate lee el material bloqueando su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Material, error)
	// Update reemplaza los atributos editables. Nunca toca Quantity, Version ni Lifecycle.
	Update(ctx context.Context, material *entity.Material) error
	// SetLifecycle cambia solo el ciclo de vida; domain.ErrNotFound si no existe.
	SetLifecycle(ctx context.Context, id string, lifecycle entity.Lifecycle, at time.Time) error
	// UpdateQuantity escribe la nueva cantidad si Version sigue siendo expectedVersion;
	// en caso contrario devuelve domain.ErrConflict.
	UpdateQuantity(ctx context.Context, id string, expectedVersion int64, quantity int, at time.Time) error
	List(ctx context.Context, filter MaterialFilter) ([]*entity.Material, error)
}
