package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// MovementFilter filtros para consultas del libro de movimientos. Campos nil/vacíos no filtran.
// To ya debe venir ajustado al fin del día cuando el usuario indica solo la fecha.
type MovementFilter struct {
	MaterialID string
	From       *time.Time
	To         *time.Time
	Type       entity.MovementType
	Limit      int // 0 = sin límite
}

// MovementRepository define el puerto del libro de movimientos (solo inserción).
// Los listados se devuelven por Timestamp descendente (y secuencia descendente en empates).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	ListByMaterial(ctx context.Context, materialID string, limit int) ([]*entity.Movement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	Count(ctx context.Context, from, to time.Time) (int, error)
}
