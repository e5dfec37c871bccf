// Package analytics contiene las vistas derivadas de solo lectura: clasificación de estado,
// resumen del almacén y reportes de movimientos por período.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// UncategorizedBucket nombre del grupo de materiales sin categoría.
const UncategorizedBucket = "Sem categoria"

// DateLayout formato de las fechas de los reportes.
const DateLayout = "2006-01-02"

// StatisticsUseCase nunca escribe en los repositorios.
type StatisticsUseCase struct {
	materials repository.MaterialRepository
	movements repository.MovementRepository
	loc       *time.Location
	now       func() time.Time
}

// NewStatisticsUseCase loc define el día calendario local ("hoy" y fechas de reporte).
func NewStatisticsUseCase(
	materials repository.MaterialRepository,
	movements repository.MovementRepository,
	loc *time.Location,
) *StatisticsUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &StatisticsUseCase{materials: materials, movements: movements, loc: loc, now: time.Now}
}

// Classify estado derivado del material (Inativo > Zerado > Baixo > Normal).
func (uc *StatisticsUseCase) Classify(m *entity.Material) inventory.Status {
	return inventory.Classify(m)
}

// Summary resumen del almacén.
//
// Dos lecturas en paralelo:
//  1. instantánea de materiales  → totales, bajo stock, zerados, categorías
//  2. conteo de movimientos de hoy (00:00:00.000 – 23:59:59.999 local)
func (uc *StatisticsUseCase) Summary(ctx context.Context) (*dto.SummaryDTO, error) {
	todayStart, todayEnd := inventory.DayRange(uc.now().In(uc.loc))

	var (
		materials []*entity.Material
		today     int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := uc.materials.List(gctx, repository.MaterialFilter{})
		if err != nil {
			return fmt.Errorf("resumen: materiales: %w", err)
		}
		materials = list
		return nil
	})
	g.Go(func() error {
		n, err := uc.movements.Count(gctx, todayStart, todayEnd)
		if err != nil {
			return fmt.Errorf("resumen: movimientos de hoy: %w", err)
		}
		today = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.SummaryDTO{
		TotalMateriais:    len(materials),
		MovimentacoesHoje: today,
		Categorias:        []dto.CategoryDTO{},
	}
	buckets := map[string]int{}
	for _, m := range materials {
		if !m.IsActive() {
			continue
		}
		out.MateriaisAtivos++
		if inventory.IsLowStock(m) {
			out.MateriaisBaixoEstoque++
		}
		if m.Quantity == 0 {
			out.MateriaisZerados++
		}
		name := m.Category
		if name == "" {
			name = UncategorizedBucket
		}
		buckets[name]++
	}
	for name, total := range buckets {
		out.Categorias = append(out.Categorias, dto.CategoryDTO{Nome: name, Total: total})
	}
	sort.Slice(out.Categorias, func(i, j int) bool {
		if out.Categorias[i].Total != out.Categorias[j].Total {
			return out.Categorias[i].Total > out.Categorias[j].Total
		}
		return out.Categorias[i].Nome < out.Categorias[j].Nome
	})
	return out, nil
}

// MovementReport movimientos del período (fechas YYYY-MM-DD, ambas opcionales e inclusivas) y tipo opcional.
func (uc *StatisticsUseCase) MovementReport(ctx context.Context, in dto.MovementReportRequest) (*dto.MovementReportResponse, error) {
	filter, err := uc.reportFilter(in)
	if err != nil {
		return nil, err
	}

	var (
		list []*entity.Movement
		refs map[string]*entity.Material
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := uc.movements.List(gctx, filter)
		if err != nil {
			return fmt.Errorf("reporte: movimientos: %w", err)
		}
		list = l
		return nil
	})
	g.Go(func() error {
		all, err := uc.materials.List(gctx, repository.MaterialFilter{})
		if err != nil {
			return fmt.Errorf("reporte: materiales: %w", err)
		}
		refs = make(map[string]*entity.Material, len(all))
		for _, m := range all {
			refs[m.ID] = m
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.MovementReportResponse{
		Total:         len(list),
		Movimentacoes: dto.NewMovementResponses(list, refs),
	}
	for _, mv := range list {
		if mv.Type == entity.MovementTypeIn {
			out.TotalEntradas += mv.Quantity
		} else {
			out.TotalSaidas += mv.Quantity
		}
	}
	return out, nil
}

// reportFilter traduce el request aplicando la regla de fin de día a dataFim.
func (uc *StatisticsUseCase) reportFilter(in dto.MovementReportRequest) (repository.MovementFilter, error) {
	var f repository.MovementFilter
	if s := strings.TrimSpace(in.DataInicio); s != "" {
		d, err := time.ParseInLocation(DateLayout, s, uc.loc)
		if err != nil {
			return f, domain.NewValidationError("dataInicio", "formato esperado YYYY-MM-DD")
		}
		start := inventory.StartOfDay(d)
		f.From = &start
	}
	if s := strings.TrimSpace(in.DataFim); s != "" {
		d, err := time.ParseInLocation(DateLayout, s, uc.loc)
		if err != nil {
			return f, domain.NewValidationError("dataFim", "formato esperado YYYY-MM-DD")
		}
		end := inventory.EndOfDay(d)
		f.To = &end
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, domain.NewValidationError("dataInicio", "no puede ser posterior a dataFim")
	}
	if s := strings.ToLower(strings.TrimSpace(in.Tipo)); s != "" && s != "todos" {
		t := entity.MovementType(s)
		if !t.Valid() {
			return f, domain.NewValidationError("tipo", "debe ser entrada o saida")
		}
		f.Type = t
	}
	return f, nil
}
