package inventory

import (
	"math"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// MaxQuantity tope de cualquier cantidad (rango de la columna INTEGER).
const MaxQuantity = math.MaxInt32

// CheckQuantity valida una cantidad absoluta: 0 <= v <= MaxQuantity.
func CheckQuantity(field string, v int) error {
	switch {
	case v < 0:
		return domain.NewValidationError(field, "no puede ser negativa")
	case v > MaxQuantity:
		return domain.NewValidationError(field, "excede el máximo permitido")
	}
	return nil
}

// NextQuantity aplica un movimiento sobre la cantidad anterior (servicio de dominio).
// atual = anterior + quantidade (entrada) o anterior - quantidade (saida).
// Una salida que deje el stock negativo se rechaza, nunca se recorta.
func NextQuantity(previous int, t entity.MovementType, quantity int) (int, error) {
	if quantity <= 0 {
		return previous, domain.NewValidationError("quantidade", "debe ser mayor que cero")
	}
	if quantity > MaxQuantity {
		return previous, domain.NewValidationError("quantidade", "excede el máximo permitido")
	}
	switch t {
	case entity.MovementTypeIn:
		if previous > MaxQuantity-quantity {
			return previous, domain.NewValidationError("quantidade", "el stock resultante excede el máximo permitido")
		}
		return previous + quantity, nil
	case entity.MovementTypeOut:
		next := previous - quantity
		if next < 0 {
			return previous, domain.ErrInsufficientStock
		}
		return next, nil
	}
	return previous, domain.NewValidationError("tipo", "debe ser entrada o saida")
}

// CorrectionFor traduce una cantidad objetivo a la entrada/salida equivalente.
// ok=false cuando no hay diferencia y no corresponde registrar movimiento.
func CorrectionFor(previous, target int) (t entity.MovementType, quantity int, ok bool) {
	switch delta := target - previous; {
	case delta > 0:
		return entity.MovementTypeIn, delta, true
	case delta < 0:
		return entity.MovementTypeOut, -delta, true
	}
	return "", 0, false
}
