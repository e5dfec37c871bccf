package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// ApplyMovementFromRequest adapta el request HTTP al caso de uso ApplyMovement(ctx, MovementInputDTO).
// defaultTechnician (nombre del token) se usa cuando el body no trae tecnico.
func (uc *RegisterMovementUseCase) ApplyMovementFromRequest(ctx context.Context, defaultTechnician string, in dto.RegisterMovementRequest) (*entity.Movement, error) {
	input := MovementInputDTO{
		MaterialID: in.MaterialID,
		Type:       in.Tipo,
		Quantity:   in.Quantidade,
		Technician: in.Tecnico,
	}
	if strings.TrimSpace(input.Technician) == "" {
		input.Technician = defaultTechnician
	}
	if in.Observacao != nil {
		input.Note = *in.Observacao
	}
	return uc.ApplyMovement(ctx, input)
}
