package inventory

import (
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
)

// EventTypeMovementRecorded tipo del evento publicado tras cada movimiento confirmado.
const EventTypeMovementRecorded = "MovementRecorded"

// MovementEvent carga del evento MovementRecorded.
// AlertaEstoqueBaixo es true solo cuando el movimiento hizo cruzar el umbral de bajo stock.
type MovementEvent struct {
	EventType          string    `json:"eventType"`
	MovementID         string    `json:"movimentacaoId"`
	MaterialID         string    `json:"materialId"`
	MaterialName       string    `json:"materialNome"`
	Tipo               string    `json:"tipo"`
	Quantidade         int       `json:"quantidade"`
	Tecnico            string    `json:"tecnico"`
	QuantidadeAnterior int       `json:"quantidadeAnterior"`
	QuantidadeAtual    int       `json:"quantidadeAtual"`
	EstoqueMinimo      int       `json:"estoqueMinimo"`
	Status             string    `json:"status"`
	AlertaEstoqueBaixo bool      `json:"alertaEstoqueBaixo"`
	DataHora           time.Time `json:"dataHora"`
}

func newMovementEvent(mov *entity.Movement, before, after *entity.Material) MovementEvent {
	return MovementEvent{
		EventType:          EventTypeMovementRecorded,
		MovementID:         mov.ID,
		MaterialID:         mov.MaterialID,
		MaterialName:       after.Name,
		Tipo:               string(mov.Type),
		Quantidade:         mov.Quantity,
		Tecnico:            mov.Technician,
		QuantidadeAnterior: mov.PreviousQuantity,
		QuantidadeAtual:    mov.CurrentQuantity,
		EstoqueMinimo:      after.MinStock,
		Status:             string(inventory.Classify(after)),
		AlertaEstoqueBaixo: !inventory.IsLowStock(before) && inventory.IsLowStock(after),
		DataHora:           mov.Timestamp,
	}
}
