package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// MovementUseCase consultas del libro de movimientos (solo lectura).
type MovementUseCase struct {
	movements repository.MovementRepository
	materials repository.MaterialRepository
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(movements repository.MovementRepository, materials repository.MaterialRepository) *MovementUseCase {
	return &MovementUseCase{movements: movements, materials: materials}
}

// List movimientos recientes, opcionalmente de un solo material, con la referencia del material.
func (uc *MovementUseCase) List(ctx context.Context, materialID string, limit int) ([]dto.MovementResponse, error) {
	list, err := uc.movements.List(ctx, repository.MovementFilter{
		MaterialID: strings.TrimSpace(materialID),
		Limit:      dto.ClampLimit(limit),
	})
	if err != nil {
		return nil, err
	}
	refs, err := MaterialIndex(ctx, uc.materials)
	if err != nil {
		return nil, err
	}
	return dto.NewMovementResponses(list, refs), nil
}

// MaterialIndex indexa todos los materiales (activos e inactivos) por ID.
func MaterialIndex(ctx context.Context, repo repository.MaterialRepository) (map[string]*entity.Material, error) {
	all, err := repo.List(ctx, repository.MaterialFilter{})
	if err != nil {
		return nil, err
	}
	idx := make(map[string]*entity.Material, len(all))
	for _, m := range all {
		idx[m.ID] = m
	}
	return idx, nil
}
