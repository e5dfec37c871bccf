package dto

import (
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
)

// NewMaterialResponse convierte la entidad a la salida HTTP (con su estado derivado).
func NewMaterialResponse(m *entity.Material) MaterialResponse {
	return MaterialResponse{
		ID:            m.ID,
		Nome:          m.Name,
		Descricao:     m.Description,
		Quantidade:    m.Quantity,
		Localizacao:   m.Location,
		EstoqueMinimo: m.MinStock,
		Categoria:     optional(m.Category),
		Ativo:         m.IsActive(),
		Status:        string(inventory.Classify(m)),
		CriadoEm:      m.CreatedAt,
		AtualizadoEm:  m.UpdatedAt,
	}
}

// NewMovementResponse convierte el movimiento; ref puede ser nil.
func NewMovementResponse(mv *entity.Movement, ref *entity.Material) MovementResponse {
	out := MovementResponse{
		ID:                 mv.ID,
		MaterialID:         mv.MaterialID,
		Tipo:               string(mv.Type),
		Quantidade:         mv.Quantity,
		Tecnico:            mv.Technician,
		Observacao:         optional(mv.Note),
		QuantidadeAnterior: mv.PreviousQuantity,
		QuantidadeAtual:    mv.CurrentQuantity,
		DataHora:           mv.Timestamp,
	}
	if ref != nil {
		out.Material = &MaterialRefDTO{ID: ref.ID, Nome: ref.Name, Categoria: optional(ref.Category)}
	}
	return out
}

// NewMovementResponses convierte una lista; refs indexa materiales por ID.
func NewMovementResponses(list []*entity.Movement, refs map[string]*entity.Material) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, mv := range list {
		out = append(out, NewMovementResponse(mv, refs[mv.MaterialID]))
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
