package entity

import "time"

// MovementType tipo de movimiento de stock.
type MovementType string

const (
	MovementTypeIn  MovementType = "entrada" // entrada
	MovementTypeOut MovementType = "saida"   // salida
)

// Valid indica si t es uno de los tipos admitidos.
func (t MovementType) Valid() bool {
	return t == MovementTypeIn || t == MovementTypeOut
}

// Movement registro inmutable de una entrada o salida.
// PreviousQuantity/CurrentQuantity encadenan el historial del material.
type Movement struct {
	ID               string
	Sequence         int64 // orden de aceptación; desempata movimientos con el mismo Timestamp
	MaterialID       string
	Type             MovementType
	Quantity         int // siempre > 0
	Technician       string
	Note             string
	PreviousQuantity int
	CurrentQuantity  int
	Timestamp        time.Time // asignado por el servidor al aceptar
}

// Delta cambio con signo que el movimiento aplicó sobre el material.
func (m *Movement) Delta() int {
	if m.Type == MovementTypeOut {
		return -m.Quantity
	}
	return m.Quantity
}
