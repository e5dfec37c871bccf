package dto

// DefaultListLimit y MaxListLimit acotan los listados de movimientos.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ClampLimit aplica los valores por defecto de paginación.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
