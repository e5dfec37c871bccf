package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda nada escrito.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		materials repository.MaterialRepository,
		movements repository.MovementRepository,
	) error) error
}

// Locker exclusión mutua por clave (material). Acquire respeta la cancelación de ctx;
// si no obtiene el lock a tiempo devuelve un error que envuelve domain.ErrConflict.
// release es idempotente.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// EventPublisher publica los movimientos confirmados. Un fallo nunca revierte el movimiento.
type EventPublisher interface {
	PublishMovement(ctx context.Context, event MovementEvent) error
}

// Metrics instrumentación del coordinador.
type Metrics interface {
	ObserveMovement(tipo entity.MovementType, outcome string, elapsed time.Duration)
	IncConflictRetry()
}

type noopPublisher struct{}

func (noopPublisher) PublishMovement(context.Context, MovementEvent) error { return nil }

type noopMetrics struct{}

func (noopMetrics) ObserveMovement(entity.MovementType, string, time.Duration) {}
func (noopMetrics) IncConflictRetry()                                          {}
