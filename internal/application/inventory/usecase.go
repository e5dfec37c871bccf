package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/pkg/logger"
)

// Resultados registrados en métricas.
const (
	OutcomeApplied           = "applied"
	OutcomeUnchanged         = "unchanged"
	OutcomeInvalid           = "invalid"
	OutcomeNotFound          = "not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeConflict          = "conflict"
	OutcomeError             = "error"
)

// DefaultCorrectionNote observación usada en correcciones manuales sin texto.
const DefaultCorrectionNote = "Correção manual de quantidade"

// Limits acota la unidad atómica de cada movimiento.
type Limits struct {
	MutationTimeout time.Duration // lock + transacción
	MaxRetries      int           // reintentos ante domain.ErrConflict
	RetryBackoff    time.Duration // espera base, crece linealmente por intento
}

// DefaultLimits valores usados cuando no se configuran.
var DefaultLimits = Limits{
	MutationTimeout: 5 * time.Second,
	MaxRetries:      3,
	RetryBackoff:    25 * time.Millisecond,
}

// Deps dependencias del coordinador. Publisher, Metrics, Logger y Now son opcionales.
type Deps struct {
	TxRunner  TxRunner
	Locker    Locker
	Publisher EventPublisher
	Metrics   Metrics
	Logger    *logger.Logger
	Limits    Limits
	Now       func() time.Time
}

// RegisterMovementUseCase es el único camino que modifica Material.Quantity.
// Cada movimiento corre como unidad atómica por material: lock por material,
// transacción con SELECT ... FOR UPDATE y escritura de cantidad con compare-and-set de versión.
type RegisterMovementUseCase struct {
	txRunner  TxRunner
	locker    Locker
	publisher EventPublisher
	metrics   Metrics
	log       *logger.Logger
	limits    Limits
	now       func() time.Time
	tracer    trace.Tracer
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(deps Deps) *RegisterMovementUseCase {
	uc := &RegisterMovementUseCase{
		txRunner:  deps.TxRunner,
		locker:    deps.Locker,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		log:       deps.Logger,
		limits:    deps.Limits,
		now:       deps.Now,
		tracer:    otel.Tracer("almoxarifado/inventory"),
	}
	if deps.Limits == (Limits{}) {
		uc.limits = DefaultLimits
	}
	if uc.publisher == nil {
		uc.publisher = noopPublisher{}
	}
	if uc.metrics == nil {
		uc.metrics = noopMetrics{}
	}
	if uc.log == nil {
		uc.log = logger.Nop()
	}
	if uc.limits.MutationTimeout <= 0 {
		uc.limits.MutationTimeout = DefaultLimits.MutationTimeout
	}
	if uc.limits.MaxRetries < 0 {
		uc.limits.MaxRetries = 0
	}
	if uc.limits.RetryBackoff < 0 {
		uc.limits.RetryBackoff = 0
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc
}

// MovementInputDTO entrada para registrar una entrada o salida.
type MovementInputDTO struct {
	MaterialID string
	Type       string
	Quantity   int
	Technician string
	Note       string
}

// CorrectionInputDTO fija la cantidad de un material mediante un movimiento de corrección.
type CorrectionInputDTO struct {
	MaterialID string
	Target     int
	Technician string
	Note       string
}

// decision indica qué movimiento aplicar sobre el material leído dentro de la unidad atómica.
// ok=false significa que no hay nada que registrar.
type decision func(current *entity.Material) (tipo entity.MovementType, quantity int, ok bool)

// mutation resultado de una unidad atómica confirmada.
type mutation struct {
	movement *entity.Movement // nil si no hubo movimiento
	before   *entity.Material
	after    *entity.Material
}

// ApplyMovement valida, serializa por material y registra el movimiento.
// Errores: ValidationError (domain.ErrInvalidInput), domain.ErrNotFound,
// domain.ErrInsufficientStock, domain.ErrConflict tras agotar reintentos, o error interno.
func (uc *RegisterMovementUseCase) ApplyMovement(ctx context.Context, input MovementInputDTO) (*entity.Movement, error) {
	tipo := entity.MovementType(strings.ToLower(strings.TrimSpace(input.Type)))
	materialID := strings.TrimSpace(input.MaterialID)
	technician := strings.TrimSpace(input.Technician)

	ctx, span := uc.tracer.Start(ctx, "inventory.ApplyMovement", trace.WithAttributes(
		attribute.String("material.id", materialID),
		attribute.String("movement.tipo", string(tipo)),
		attribute.Int("movement.quantidade", input.Quantity),
	))
	defer span.End()
	start := time.Now()

	if err := validateMovement(materialID, tipo, input.Quantity, technician); err != nil {
		uc.finish(ctx, span, tipo, start, nil, err)
		return nil, err
	}

	res, err := uc.mutate(ctx, materialID, technician, strings.TrimSpace(input.Note),
		func(*entity.Material) (entity.MovementType, int, bool) {
			return tipo, input.Quantity, true
		})
	uc.finish(ctx, span, tipo, start, res, err)
	if err != nil {
		return nil, err
	}
	return res.movement, nil
}

// CorrectQuantity lleva la cantidad del material a Target registrando la entrada o salida equivalente,
// dentro de la misma sección crítica que ApplyMovement. Si no hay diferencia devuelve (nil, nil).
func (uc *RegisterMovementUseCase) CorrectQuantity(ctx context.Context, input CorrectionInputDTO) (*entity.Movement, error) {
	materialID := strings.TrimSpace(input.MaterialID)
	technician := strings.TrimSpace(input.Technician)
	note := strings.TrimSpace(input.Note)
	if note == "" {
		note = DefaultCorrectionNote
	}

	ctx, span := uc.tracer.Start(ctx, "inventory.CorrectQuantity", trace.WithAttributes(
		attribute.String("material.id", materialID),
		attribute.Int("movement.target", input.Target),
	))
	defer span.End()
	start := time.Now()

	err := inventory.CheckQuantity("quantidade", input.Target)
	switch {
	case materialID == "":
		err = domain.NewValidationError("materialId", "es obligatorio")
	case err != nil:
	case technician == "":
		err = domain.NewValidationError("tecnico", "es obligatorio para corregir la cantidad")
	}
	if err != nil {
		uc.finish(ctx, span, "", start, nil, err)
		return nil, err
	}

	res, err := uc.mutate(ctx, materialID, technician, note,
		func(current *entity.Material) (entity.MovementType, int, bool) {
			return inventory.CorrectionFor(current.Quantity, input.Target)
		})
	var tipo entity.MovementType
	if res != nil && res.movement != nil {
		tipo = res.movement.Type
	}
	uc.finish(ctx, span, tipo, start, res, err)
	if err != nil {
		return nil, err
	}
	return res.movement, nil
}

func validateMovement(materialID string, tipo entity.MovementType, quantity int, technician string) error {
	switch {
	case materialID == "":
		return domain.NewValidationError("materialId", "es obligatorio")
	case !tipo.Valid():
		return domain.NewValidationError("tipo", "debe ser entrada o saida")
	case quantity <= 0:
		return domain.NewValidationError("quantidade", "debe ser mayor que cero")
	case quantity > inventory.MaxQuantity:
		return domain.NewValidationError("quantidade", "excede el máximo permitido")
	case technician == "":
		return domain.NewValidationError("tecnico", "es obligatorio")
	}
	return nil
}

// mutate ejecuta la unidad atómica y reintenta solo ante domain.ErrConflict.
func (uc *RegisterMovementUseCase) mutate(
	ctx context.Context,
	materialID, technician, note string,
	decide decision,
) (*mutation, error) {
	for attempt := 0; ; attempt++ {
		res, err := uc.attempt(ctx, materialID, technician, note, decide)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= uc.limits.MaxRetries {
			return nil, err
		}
		uc.metrics.IncConflictRetry()
		uc.log.WithContext(ctx).Debug().
			Err(err).
			Str("material_id", materialID).
			Int("attempt", attempt+1).
			Msg("conflicto de concurrencia, reintentando movimiento")
		if err := sleepCtx(ctx, uc.limits.RetryBackoff*time.Duration(attempt+1)); err != nil {
			return nil, err
		}
	}
}

// attempt: lock del material -> transacción -> lectura bloqueante -> validación -> escritura.
// Todo bajo MutationTimeout; si vence, el lock se libera y la transacción se revierte.
func (uc *RegisterMovementUseCase) attempt(
	parent context.Context,
	materialID, technician, note string,
	decide decision,
) (*mutation, error) {
	ctx, cancel := context.WithTimeout(parent, uc.limits.MutationTimeout)
	defer cancel()

	release, err := uc.locker.Acquire(ctx, materialID)
	if err != nil {
		return nil, uc.timeoutAsConflict(parent, err)
	}
	defer release()

	var out *mutation
	err = uc.txRunner.Run(ctx, func(materials repository.MaterialRepository, movements repository.MovementRepository) error {
		current, err := materials.GetForUpdate(ctx, materialID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if !current.IsActive() {
			return domain.NewValidationError("materialId", "material inactivo no admite movimientos")
		}

		tipo, quantity, ok := decide(current)
		if !ok {
			out = &mutation{before: current, after: current}
			return nil
		}
		next, err := inventory.NextQuantity(current.Quantity, tipo, quantity)
		if err != nil {
			return err
		}

		now := uc.now()
		mov := &entity.Movement{
			ID:               uuid.New().String(),
			MaterialID:       current.ID,
			Type:             tipo,
			Quantity:         quantity,
			Technician:       technician,
			Note:             note,
			PreviousQuantity: current.Quantity,
			CurrentQuantity:  next,
			Timestamp:        now,
		}
		if err := movements.Create(ctx, mov); err != nil {
			return err
		}
		if err := materials.UpdateQuantity(ctx, current.ID, current.Version, next, now); err != nil {
			return err
		}

		after := current.Clone()
		after.Quantity = next
		after.Version++
		after.UpdatedAt = now
		out = &mutation{movement: mov, before: current, after: after}
		return nil
	})
	if err != nil {
		return nil, uc.timeoutAsConflict(parent, err)
	}
	return out, nil
}

// timeoutAsConflict: si venció el límite interno (y no el contexto del llamador) el error es transitorio.
func (uc *RegisterMovementUseCase) timeoutAsConflict(parent context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return fmt.Errorf("movimiento excedió %s: %w", uc.limits.MutationTimeout, domain.ErrConflict)
	}
	return err
}

// finish registra métricas, traza y log; publica el evento si hubo movimiento.
func (uc *RegisterMovementUseCase) finish(
	ctx context.Context,
	span trace.Span,
	tipo entity.MovementType,
	start time.Time,
	res *mutation,
	err error,
) {
	outcome := outcomeOf(res, err)
	uc.metrics.ObserveMovement(tipo, outcome, time.Since(start))
	span.SetAttributes(attribute.String("movement.outcome", outcome))
	log := uc.log.WithContext(ctx)

	if err != nil {
		if outcome == OutcomeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, "movimiento fallido")
			log.Error().Err(err).Msg("error registrando movimiento")
			return
		}
		log.Debug().Err(err).Str("outcome", outcome).Msg("movimiento rechazado")
		return
	}
	if res == nil || res.movement == nil {
		return
	}

	mov := res.movement
	span.SetAttributes(
		attribute.String("movement.id", mov.ID),
		attribute.Int("movement.quantidade_atual", mov.CurrentQuantity),
	)
	log.Debug().
		Str("movement_id", mov.ID).
		Str("material_id", mov.MaterialID).
		Str("tipo", string(mov.Type)).
		Int("anterior", mov.PreviousQuantity).
		Int("atual", mov.CurrentQuantity).
		Msg("movimiento registrado")

	event := newMovementEvent(mov, res.before, res.after)
	if err := uc.publisher.PublishMovement(ctx, event); err != nil {
		log.Warn().Err(err).Str("movement_id", mov.ID).Msg("no se pudo publicar el evento de movimiento")
	}
}

func outcomeOf(res *mutation, err error) string {
	switch {
	case err == nil && (res == nil || res.movement == nil):
		return OutcomeUnchanged
	case err == nil:
		return OutcomeApplied
	case errors.Is(err, domain.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errors.Is(err, domain.ErrConflict):
		return OutcomeConflict
	}
	return OutcomeError
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
