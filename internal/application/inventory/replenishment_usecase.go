package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// consumptionWindow período usado para medir el consumo (salidas) de cada material.
const consumptionWindow = 30 * 24 * time.Hour

// ReplenishmentUseCase genera la lista de reposición: materiales activos en bajo stock,
// con la cantidad sugerida y una prioridad basada en el consumo reciente.
type ReplenishmentUseCase struct {
	materials repository.MaterialRepository
	movements repository.MovementRepository
	now       func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	materials repository.MaterialRepository,
	movements repository.MovementRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{materials: materials, movements: movements, now: time.Now}
}

// GenerateReplenishmentList devuelve los materiales bajo el estoqueMinimo (zerados incluidos).
// Stock ideal = 1.5 × estoqueMinimo (redondeado hacia arriba, mínimo estoqueMinimo+1).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	// 1. Materiales activos en bajo stock
	low, err := uc.materials.List(ctx, repository.MaterialFilter{Status: repository.StatusLowStock})
	if err != nil {
		return nil, fmt.Errorf("reposición: materiales: %w", err)
	}
	if len(low) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// 2. Consumo (salidas) de la ventana reciente por material
	from := uc.now().Add(-consumptionWindow)
	outs, err := uc.movements.List(ctx, repository.MovementFilter{From: &from, Type: entity.MovementTypeOut})
	if err != nil {
		return nil, fmt.Errorf("reposición: consumo: %w", err)
	}
	consumed := make(map[string]int, len(low))
	for _, mv := range outs {
		consumed[mv.MaterialID] += mv.Quantity
	}

	// 3. Sugerencias
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(low))
	for _, m := range low {
		ideal := (m.MinStock*3 + 1) / 2
		if ideal <= m.MinStock {
			ideal = m.MinStock + 1
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			Material:           dto.NewMaterialResponse(m),
			EstoqueIdeal:       ideal,
			QuantidadeSugerida: ideal - m.Quantity,
			ConsumoUltimos30d:  consumed[m.ID],
		})
	}

	// 4. Ordenar: zerados primero, luego mayor consumo, luego mayor déficit.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		az, bz := a.Material.Quantidade == 0, b.Material.Quantidade == 0
		if az != bz {
			return az
		}
		if a.ConsumoUltimos30d != b.ConsumoUltimos30d {
			return a.ConsumoUltimos30d > b.ConsumoUltimos30d
		}
		return a.QuantidadeSugerida > b.QuantidadeSugerida
	})

	// 5. Asignar prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Prioridade = i + 1
	}
	return suggestions, nil
}
