package inventory

import "github.com/jhoicas/almoxarifado-api/internal/domain/entity"

// Status clasificación derivada de un material.
type Status string

const (
	StatusInactive Status = "Inativo"
	StatusZeroed   Status = "Zerado"
	StatusLow      Status = "Baixo"
	StatusNormal   Status = "Normal"
)

// Classify es función pura de {ciclo de vida, cantidad, estoqueMinimo}.
// Precedencia estricta: Inativo > Zerado > Baixo > Normal.
func Classify(m *entity.Material) Status {
	switch {
	case !m.IsActive():
		return StatusInactive
	case m.Quantity == 0:
		return StatusZeroed
	case m.Quantity <= m.MinStock:
		return StatusLow
	}
	return StatusNormal
}

// IsLowStock material activo con cantidad <= estoqueMinimo (incluye los zerados).
// Es la única regla de "bajo stock" usada por resúmenes, filtros y alertas.
func IsLowStock(m *entity.Material) bool {
	return m.IsActive() && m.Quantity <= m.MinStock
}
