package inventory

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// Fold normaliza texto para búsquedas: sin acentos y sin distinción de mayúsculas.
// "Periféricos" y "perifericos" producen la misma clave.
func Fold(s string) string {
	// transform.Chain y cases.Caser guardan estado: uno por llamada.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(strings.TrimSpace(out))
}

// Matches aplica búsqueda, categoría y estado de f sobre m.
func Matches(m *entity.Material, f repository.MaterialFilter) bool {
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	if !matchesStatus(m, f.Status) {
		return false
	}
	if q := Fold(f.Search); q != "" {
		return strings.Contains(Fold(m.Name), q) ||
			strings.Contains(Fold(m.Location), q) ||
			strings.Contains(Fold(m.Description), q)
	}
	return true
}

func matchesStatus(m *entity.Material, s repository.StatusFilter) bool {
	switch s {
	case repository.StatusActive:
		return m.IsActive()
	case repository.StatusLowStock:
		return IsLowStock(m)
	case repository.StatusZeroed:
		return m.IsActive() && m.Quantity == 0
	case repository.StatusInactive:
		return !m.IsActive()
	}
	return true
}

// ValidStatusFilter indica si s es un filtro de estado conocido (vacío = todos).
func ValidStatusFilter(s repository.StatusFilter) bool {
	switch s {
	case "", repository.StatusAll, repository.StatusActive, repository.StatusLowStock,
		repository.StatusZeroed, repository.StatusInactive:
		return true
	}
	return false
}

// ValidSortField indica si s es un orden conocido.
func ValidSortField(s repository.SortField) bool {
	switch s {
	case repository.SortInsertion, repository.SortName, repository.SortQuantity, repository.SortUpdatedAt:
		return true
	}
	return false
}

// FilterMaterials filtra y ordena una instantánea. Sin orden pedido conserva el orden de entrada.
func FilterMaterials(list []*entity.Material, f repository.MaterialFilter) []*entity.Material {
	out := make([]*entity.Material, 0, len(list))
	for _, m := range list {
		if Matches(m, f) {
			out = append(out, m)
		}
	}
	switch f.SortBy {
	case repository.SortName:
		sort.SliceStable(out, func(i, j int) bool { return Fold(out[i].Name) < Fold(out[j].Name) })
	case repository.SortQuantity:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	case repository.SortUpdatedAt:
		sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	}
	return out
}
