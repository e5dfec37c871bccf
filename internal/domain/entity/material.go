package entity

import "time"

// DefaultMinStock punto de reorden cuando no se informa estoqueMinimo.
const DefaultMinStock = 5

// Lifecycle estado de ciclo de vida del material (baja lógica, nunca se borra).
type Lifecycle string

const (
	LifecycleActive   Lifecycle = "active"
	LifecycleInactive Lifecycle = "inactive"
)

// LifecycleFromActive traduce el flag "ativo" de la API al estado explícito.
func LifecycleFromActive(active bool) Lifecycle {
	if active {
		return LifecycleActive
	}
	return LifecycleInactive
}

// Categorías admitidas (conjunto fijo heredado del cliente web).
const (
	CategoryPeripherals = "Periféricos"
	CategoryComponents  = "Componentes"
	CategoryCables      = "Cabos"
	CategoryAccessories = "Acessórios"
	CategoryTools       = "Ferramentas"
	CategoryConsumables = "Consumíveis"
)

var validCategories = map[string]struct{}{
	CategoryPeripherals: {},
	CategoryComponents:  {},
	CategoryCables:      {},
	CategoryAccessories: {},
	CategoryTools:       {},
	CategoryConsumables: {},
}

// IsValidCategory indica si c pertenece al conjunto fijo. Vacío significa "sin categoría".
func IsValidCategory(c string) bool {
	if c == "" {
		return true
	}
	_, ok := validCategories[c]
	return ok
}

// Material representa un ítem físico del almacén con su cantidad disponible.
// Quantity solo la modifica el coordinador de movimientos; Version crece con cada cambio de Quantity.
type Material struct {
	ID          string
	Name        string
	Description string
	Quantity    int
	Location    string
	MinStock    int
	Category    string // vacío = sin categoría
	Lifecycle   Lifecycle
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive true si el material no fue dado de baja.
func (m *Material) IsActive() bool {
	return m.Lifecycle != LifecycleInactive
}

// Clone devuelve una copia independiente (los stores en memoria nunca exponen su puntero interno).
func (m *Material) Clone() *Material {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
