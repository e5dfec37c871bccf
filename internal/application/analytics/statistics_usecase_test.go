package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/memory"
)

var brt = time.FixedZone("BRT", -3*3600)

type statsFixture struct {
	uc        *StatisticsUseCase
	materials *memory.MaterialRepo
	movements *memory.MovementRepo
	seq       int
}

func newStatsFixture(t *testing.T, now time.Time) *statsFixture {
	t.Helper()
	store := memory.NewStore()
	f := &statsFixture{
		materials: memory.NewMaterialRepository(store),
		movements: memory.NewMovementRepository(store),
	}
	f.uc = NewStatisticsUseCase(f.materials, f.movements, brt)
	f.uc.now = func() time.Time { return now }
	return f
}

func (f *statsFixture) material(t *testing.T, id string, qty, minStock int, category string, active bool) {
	t.Helper()
	require.NoError(t, f.materials.Create(context.Background(), &entity.Material{
		ID: id, Name: "Material " + id, Quantity: qty, MinStock: minStock, Category: category,
		Lifecycle: entity.LifecycleFromActive(active),
	}))
}

func (f *statsFixture) movement(t *testing.T, materialID string, tipo entity.MovementType, qty int, at time.Time) {
	t.Helper()
	f.seq++
	require.NoError(t, f.movements.Create(context.Background(), &entity.Movement{
		ID: materialID + "-" + string(rune('a'+f.seq)), MaterialID: materialID, Type: tipo,
		Quantity: qty, Technician: "Ana", Timestamp: at,
	}))
}

func TestSummary_ExcluyeInactivos(t *testing.T) {
	now := time.Date(2026, 6, 15, 14, 0, 0, 0, brt)
	f := newStatsFixture(t, now)
	f.material(t, "a", 10, 5, entity.CategoryCables, true)
	f.material(t, "b", 3, 5, entity.CategoryCables, true)
	f.material(t, "c", 0, 5, "", true)
	f.material(t, "d", 2, 5, entity.CategoryTools, false) // bajo pero inactivo

	sum, err := f.uc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, sum.TotalMateriais)
	assert.Equal(t, 3, sum.MateriaisAtivos)
	assert.Equal(t, 2, sum.MateriaisBaixoEstoque, "b y c; d está inactivo")
	assert.Equal(t, 1, sum.MateriaisZerados)
	assert.Equal(t, []dto.CategoryDTO{
		{Nome: entity.CategoryCables, Total: 2},
		{Nome: UncategorizedBucket, Total: 1},
	}, sum.Categorias)
}

func TestSummary_MovimientosDeHoyEnHoraLocal(t *testing.T) {
	now := time.Date(2026, 6, 15, 14, 0, 0, 0, brt)
	f := newStatsFixture(t, now)
	f.material(t, "a", 10, 5, "", true)

	f.movement(t, "a", entity.MovementTypeIn, 1, time.Date(2026, 6, 15, 0, 0, 0, 0, brt))
	f.movement(t, "a", entity.MovementTypeOut, 1, time.Date(2026, 6, 15, 23, 59, 59, 900_000_000, brt))
	f.movement(t, "a", entity.MovementTypeIn, 1, time.Date(2026, 6, 14, 23, 59, 59, 0, brt))
	// 01:00 UTC del 16 todavía es día 15 en BRT
	f.movement(t, "a", entity.MovementTypeIn, 1, time.Date(2026, 6, 16, 1, 0, 0, 0, time.UTC))

	sum, err := f.uc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.MovimentacoesHoje)
}

func TestSummary_Vacio(t *testing.T) {
	f := newStatsFixture(t, time.Now())
	sum, err := f.uc.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.TotalMateriais)
	assert.NotNil(t, sum.Categorias)
	assert.Empty(t, sum.Categorias)
}

func TestMovementReport_FechaFinIncluyeDiaCompleto(t *testing.T) {
	f := newStatsFixture(t, time.Now())
	f.material(t, "a", 10, 5, entity.CategoryCables, true)
	f.material(t, "b", 10, 5, "", false)

	f.movement(t, "a", entity.MovementTypeIn, 5, time.Date(2026, 6, 1, 8, 0, 0, 0, brt))
	f.movement(t, "a", entity.MovementTypeOut, 2, time.Date(2026, 6, 10, 23, 30, 0, 0, brt))
	f.movement(t, "b", entity.MovementTypeOut, 3, time.Date(2026, 6, 10, 12, 0, 0, 0, brt))
	f.movement(t, "a", entity.MovementTypeIn, 7, time.Date(2026, 6, 11, 0, 0, 0, 0, brt))

	rep, err := f.uc.MovementReport(context.Background(), dto.MovementReportRequest{
		DataInicio: "2026-06-01", DataFim: "2026-06-10",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Total)
	assert.Equal(t, 5, rep.TotalEntradas)
	assert.Equal(t, 5, rep.TotalSaidas)
	require.Len(t, rep.Movimentacoes, 3)
	assert.Equal(t, 2, rep.Movimentacoes[0].Quantidade, "más reciente primero")
	for _, mv := range rep.Movimentacoes {
		require.NotNil(t, mv.Material)
	}

	saidas, err := f.uc.MovementReport(context.Background(), dto.MovementReportRequest{Tipo: "saida"})
	require.NoError(t, err)
	assert.Equal(t, 2, saidas.Total)
	assert.Zero(t, saidas.TotalEntradas)

	todos, err := f.uc.MovementReport(context.Background(), dto.MovementReportRequest{Tipo: "todos"})
	require.NoError(t, err)
	assert.Equal(t, 4, todos.Total)
}

func TestMovementReport_Validaciones(t *testing.T) {
	f := newStatsFixture(t, time.Now())
	tests := []struct {
		name  string
		in    dto.MovementReportRequest
		field string
	}{
		{"fecha inicial inválida", dto.MovementReportRequest{DataInicio: "01/06/2026"}, "dataInicio"},
		{"fecha final inválida", dto.MovementReportRequest{DataFim: "2026-13-01"}, "dataFim"},
		{"rango invertido", dto.MovementReportRequest{DataInicio: "2026-06-10", DataFim: "2026-06-01"}, "dataInicio"},
		{"tipo desconocido", dto.MovementReportRequest{Tipo: "ajuste"}, "tipo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.MovementReport(context.Background(), tt.in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	rep, err := f.uc.MovementReport(context.Background(), dto.MovementReportRequest{DataInicio: "2026-06-10", DataFim: "2026-06-10"})
	require.NoError(t, err, "mismo día es un rango válido")
	assert.Zero(t, rep.Total)
}

func TestClassify(t *testing.T) {
	uc := NewStatisticsUseCase(nil, nil, nil)
	assert.Equal(t, "Baixo", string(uc.Classify(&entity.Material{Quantity: 5, MinStock: 5})))
	assert.Equal(t, "Normal", string(uc.Classify(&entity.Material{Quantity: 6, MinStock: 5})))
}
