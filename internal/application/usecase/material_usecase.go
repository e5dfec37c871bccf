package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// QuantityCorrector parte del coordinador de movimientos que usa el registro de materiales.
type QuantityCorrector interface {
	CorrectQuantity(ctx context.Context, input inventory.CorrectionInputDTO) (*entity.Movement, error)
}

// MaterialUseCase registro de materiales: identidad, atributos y ciclo de vida.
// La cantidad nunca se escribe aquí; las correcciones pasan por el coordinador.
type MaterialUseCase struct {
	repo      repository.MaterialRepository
	movements repository.MovementRepository
	corrector QuantityCorrector
	now       func() time.Time
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(
	repo repository.MaterialRepository,
	movements repository.MovementRepository,
	corrector QuantityCorrector,
) *MaterialUseCase {
	return &MaterialUseCase{repo: repo, movements: movements, corrector: corrector, now: time.Now}
}

// Create registra un material activo. estoqueMinimo por defecto 5, quantidade por defecto 0.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	name := strings.TrimSpace(in.Nome)
	if name == "" {
		return nil, domain.NewValidationError("nome", "es obligatorio")
	}
	quantity := 0
	if in.Quantidade != nil {
		quantity = *in.Quantidade
	}
	if err := domaininv.CheckQuantity("quantidade", quantity); err != nil {
		return nil, err
	}
	minStock := entity.DefaultMinStock
	if in.EstoqueMinimo != nil {
		minStock = *in.EstoqueMinimo
	}
	if err := domaininv.CheckQuantity("estoqueMinimo", minStock); err != nil {
		return nil, err
	}
	category, err := normalizeCategory(in.Categoria)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	m := &entity.Material{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(in.Descricao),
		Quantity:    quantity,
		Location:    strings.TrimSpace(in.Localizacao),
		MinStock:    minStock,
		Category:    category,
		Lifecycle:   entity.LifecycleActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	out := dto.NewMaterialResponse(m)
	return &out, nil
}

// Update reemplaza los atributos editables. Si trae quantidade distinta de la actual se registra
// un movimiento de corrección a nombre de tecnico (obligatorio en ese caso).
// Todo se valida antes de escribir; la corrección va primero para que un rechazo no deje atributos a medias.
// Si la corrección se confirma y luego falla la escritura de atributos, devuelve *PartialUpdateError
// junto con la respuesta: la cantidad ya cambió y los atributos no.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.UpdateMaterialResponse, error) {
	m, err := uc.getEntity(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Nome != nil {
		name := strings.TrimSpace(*in.Nome)
		if name == "" {
			return nil, domain.NewValidationError("nome", "es obligatorio")
		}
		m.Name = name
	}
	if in.Descricao != nil {
		m.Description = strings.TrimSpace(*in.Descricao)
	}
	if in.Localizacao != nil {
		m.Location = strings.TrimSpace(*in.Localizacao)
	}
	if in.EstoqueMinimo != nil {
		if err := domaininv.CheckQuantity("estoqueMinimo", *in.EstoqueMinimo); err != nil {
			return nil, err
		}
		m.MinStock = *in.EstoqueMinimo
	}
	if in.Categoria != nil {
		category, err := normalizeCategory(in.Categoria)
		if err != nil {
			return nil, err
		}
		m.Category = category
	}
	if in.Quantidade != nil {
		if err := domaininv.CheckQuantity("quantidade", *in.Quantidade); err != nil {
			return nil, err
		}
		if strings.TrimSpace(in.Tecnico) == "" && *in.Quantidade != m.Quantity {
			return nil, domain.NewValidationError("tecnico", "es obligatorio para corregir la cantidad")
		}
	}

	var correction *entity.Movement
	if in.Quantidade != nil && *in.Quantidade != m.Quantity {
		correction, err = uc.corrector.CorrectQuantity(ctx, inventory.CorrectionInputDTO{
			MaterialID: m.ID,
			Target:     *in.Quantidade,
			Technician: in.Tecnico,
			Note:       in.Observacao,
		})
		if err != nil {
			return nil, err
		}
	}

	m.UpdatedAt = uc.now()
	updateErr := uc.repo.Update(ctx, m)
	if updateErr != nil && correction == nil {
		return nil, updateErr
	}

	// Releer: la corrección cambió cantidad y versión.
	fresh, err := uc.getEntity(ctx, id)
	if err != nil {
		if updateErr != nil {
			return nil, &PartialUpdateError{Correction: correction, Err: updateErr}
		}
		return nil, err
	}
	out := &dto.UpdateMaterialResponse{MaterialResponse: dto.NewMaterialResponse(fresh)}
	if correction != nil {
		mv := dto.NewMovementResponse(correction, fresh)
		out.Correcao = &mv
	}
	if updateErr != nil {
		return out, &PartialUpdateError{Correction: correction, Err: updateErr}
	}
	return out, nil
}

// PartialUpdateError la corrección de cantidad quedó registrada pero los atributos no se guardaron.
type PartialUpdateError struct {
	Correction *entity.Movement
	Err        error
}

func (e *PartialUpdateError) Error() string {
	return fmt.Sprintf("cantidad corregida (movimiento %s) pero atributos sin guardar: %v", e.Correction.ID, e.Err)
}

func (e *PartialUpdateError) Unwrap() error { return e.Err }

// SetActive cambia solo el ciclo de vida; no compite con Update ni con los movimientos.
func (uc *MaterialUseCase) SetActive(ctx context.Context, id string, active bool) (*dto.MaterialResponse, error) {
	m, err := uc.getEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.SetLifecycle(ctx, m.ID, entity.LifecycleFromActive(active), uc.now()); err != nil {
		return nil, err
	}
	fresh, err := uc.getEntity(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	out := dto.NewMaterialResponse(fresh)
	return &out, nil
}

// Get obtiene un material por ID.
func (uc *MaterialUseCase) Get(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	m, err := uc.getEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.NewMaterialResponse(m)
	return &out, nil
}

// GetWithHistory material y sus movimientos, más recientes primero.
func (uc *MaterialUseCase) GetWithHistory(ctx context.Context, id string, limit int) (*dto.MaterialDetailResponse, error) {
	m, err := uc.getEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := uc.movements.ListByMaterial(ctx, m.ID, limit)
	if err != nil {
		return nil, err
	}
	refs := map[string]*entity.Material{m.ID: m}
	return &dto.MaterialDetailResponse{
		MaterialResponse: dto.NewMaterialResponse(m),
		Movimentacoes:    dto.NewMovementResponses(history, refs),
	}, nil
}

// List instantánea filtrada. Sin orden pedido respeta el orden de inserción.
func (uc *MaterialUseCase) List(ctx context.Context, in dto.MaterialFilterRequest) ([]dto.MaterialResponse, error) {
	filter := repository.MaterialFilter{
		Search:   strings.TrimSpace(in.Busca),
		Category: strings.TrimSpace(in.Categoria),
		Status:   repository.StatusFilter(strings.TrimSpace(in.Status)),
		SortBy:   repository.SortField(strings.TrimSpace(in.Ordenar)),
	}
	if !domaininv.ValidStatusFilter(filter.Status) {
		return nil, domain.NewValidationError("status", "valor desconocido")
	}
	if !domaininv.ValidSortField(filter.SortBy) {
		return nil, domain.NewValidationError("ordenar", "valor desconocido")
	}
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMaterialResponse(m))
	}
	return out, nil
}

func (uc *MaterialUseCase) getEntity(ctx context.Context, id string) (*entity.Material, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewValidationError("id", "es obligatorio")
	}
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// normalizeCategory nil o vacío = sin categoría; cualquier otro valor debe ser del conjunto fijo.
func normalizeCategory(c *string) (string, error) {
	if c == nil {
		return "", nil
	}
	v := strings.TrimSpace(*c)
	if !entity.IsValidCategory(v) {
		return "", domain.NewValidationError("categoria", "categoría desconocida: "+v)
	}
	return v, nil
}
