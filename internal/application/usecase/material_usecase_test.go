package usecase_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/lock"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/memory"
)

type env struct {
	materials *usecase.MaterialUseCase
	movements *usecase.MovementUseCase
	ledger    *inventory.RegisterMovementUseCase
}

func newEnv() *env {
	store := memory.NewStore()
	matRepo := memory.NewMaterialRepository(store)
	movRepo := memory.NewMovementRepository(store)
	ledger := inventory.NewRegisterMovementUseCase(inventory.Deps{
		TxRunner: memory.NewTxRunner(store),
		Locker:   lock.NewLocalLocker(time.Second),
	})
	return &env{
		materials: usecase.NewMaterialUseCase(matRepo, movRepo, ledger),
		movements: usecase.NewMovementUseCase(movRepo, matRepo),
		ledger:    ledger,
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestMaterialUseCase_CreateConValoresPorDefecto(t *testing.T) {
	e := newEnv()
	out, err := e.materials.Create(context.Background(), dto.CreateMaterialRequest{
		Nome: "  Mouse USB  ", Localizacao: "Armário A",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "Mouse USB", out.Nome)
	assert.Equal(t, 0, out.Quantidade)
	assert.Equal(t, 5, out.EstoqueMinimo)
	assert.Nil(t, out.Categoria)
	assert.True(t, out.Ativo)
	assert.Equal(t, "Zerado", out.Status)
}

func TestMaterialUseCase_CreateValidaciones(t *testing.T) {
	e := newEnv()
	tests := []struct {
		name  string
		in    dto.CreateMaterialRequest
		field string
	}{
		{"sin nombre", dto.CreateMaterialRequest{Nome: "  "}, "nome"},
		{"cantidad negativa", dto.CreateMaterialRequest{Nome: "X", Quantidade: intPtr(-1)}, "quantidade"},
		{"mínimo negativo", dto.CreateMaterialRequest{Nome: "X", EstoqueMinimo: intPtr(-3)}, "estoqueMinimo"},
		{"categoría desconocida", dto.CreateMaterialRequest{Nome: "X", Categoria: strPtr("Móveis")}, "categoria"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.materials.Create(context.Background(), tt.in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
	list, err := e.materials.List(context.Background(), dto.MaterialFilterRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMaterialUseCase_UpdateConCorreccion(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	created, err := e.materials.Create(ctx, dto.CreateMaterialRequest{
		Nome: "Cabo HDMI", Quantidade: intPtr(7), Categoria: strPtr("Cabos"),
	})
	require.NoError(t, err)

	out, err := e.materials.Update(ctx, created.ID, dto.UpdateMaterialRequest{
		Nome:       strPtr("Cabo HDMI 2m"),
		Quantidade: intPtr(10),
		Tecnico:    "Rui",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cabo HDMI 2m", out.Nome)
	assert.Equal(t, 10, out.Quantidade)
	require.NotNil(t, out.Correcao)
	assert.Equal(t, "entrada", out.Correcao.Tipo)
	assert.Equal(t, 3, out.Correcao.Quantidade)
	assert.Equal(t, 7, out.Correcao.QuantidadeAnterior)
	assert.Equal(t, 10, out.Correcao.QuantidadeAtual)
	require.NotNil(t, out.Correcao.Observacao)
	assert.Equal(t, inventory.DefaultCorrectionNote, *out.Correcao.Observacao)

	detail, err := e.materials.GetWithHistory(ctx, created.ID, 0)
	require.NoError(t, err)
	require.Len(t, detail.Movimentacoes, 1)
	assert.Equal(t, out.Correcao.ID, detail.Movimentacoes[0].ID)
	require.NotNil(t, detail.Movimentacoes[0].Material)
	assert.Equal(t, "Cabo HDMI 2m", detail.Movimentacoes[0].Material.Nome)
}

func TestMaterialUseCase_UpdateSinDiferenciaNoRegistraMovimiento(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	created, err := e.materials.Create(ctx, dto.CreateMaterialRequest{Nome: "Alicate", Quantidade: intPtr(4)})
	require.NoError(t, err)

	out, err := e.materials.Update(ctx, created.ID, dto.UpdateMaterialRequest{
		Localizacao: strPtr("Bancada 2"),
		Quantidade:  intPtr(4),
	})
	require.NoError(t, err)
	assert.Nil(t, out.Correcao)
	assert.Equal(t, "Bancada 2", out.Localizacao)

	movs, err := e.movements.List(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestMaterialUseCase_UpdateRechazadoNoEscribe(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	created, err := e.materials.Create(ctx, dto.CreateMaterialRequest{Nome: "Alicate", Quantidade: intPtr(4)})
	require.NoError(t, err)

	_, err = e.materials.Update(ctx, created.ID, dto.UpdateMaterialRequest{
		Nome:       strPtr("Alicate novo"),
		Quantidade: intPtr(9),
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "tecnico", ve.Field)

	_, err = e.materials.Update(ctx, created.ID, dto.UpdateMaterialRequest{
		Nome:      strPtr("Alicate novo"),
		Categoria: strPtr("Outros"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := e.materials.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicate", got.Nome)
	assert.Equal(t, 4, got.Quantidade)

	_, err = e.materials.Update(ctx, "nope", dto.UpdateMaterialRequest{Nome: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMaterialUseCase_SetActive(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	created, err := e.materials.Create(ctx, dto.CreateMaterialRequest{Nome: "Teclado", Quantidade: intPtr(2)})
	require.NoError(t, err)

	out, err := e.materials.SetActive(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, out.Ativo)
	assert.Equal(t, "Inativo", out.Status)
	assert.Equal(t, 2, out.Quantidade)

	_, err = e.ledger.ApplyMovement(ctx, inventory.MovementInputDTO{
		MaterialID: created.ID, Type: "entrada", Quantity: 1, Technician: "Ana",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "inativo no admite movimientos")

	out, err = e.materials.SetActive(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, out.Ativo)
	assert.Equal(t, "Baixo", out.Status)
}

func TestMaterialUseCase_GetValidaID(t *testing.T) {
	e := newEnv()
	_, err := e.materials.Get(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.materials.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMaterialUseCase_ListFiltros(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	for _, in := range []dto.CreateMaterialRequest{
		{Nome: "Mouse óptico", Quantidade: intPtr(10), Categoria: strPtr("Periféricos")},
		{Nome: "Cabo HDMI", Quantidade: intPtr(0), Categoria: strPtr("Cabos")},
		{Nome: "Alicate", Quantidade: intPtr(3), Categoria: strPtr("Ferramentas")},
	} {
		_, err := e.materials.Create(ctx, in)
		require.NoError(t, err)
	}

	all, err := e.materials.List(ctx, dto.MaterialFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mouse óptico", "Cabo HDMI", "Alicate"}, names(all))

	byName, err := e.materials.List(ctx, dto.MaterialFilterRequest{Ordenar: "nome"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alicate", "Cabo HDMI", "Mouse óptico"}, names(byName))

	low, err := e.materials.List(ctx, dto.MaterialFilterRequest{Status: "baixoEstoque"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cabo HDMI", "Alicate"}, names(low))

	found, err := e.materials.List(ctx, dto.MaterialFilterRequest{Busca: "OPTICO"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mouse óptico"}, names(found))

	_, err = e.materials.List(ctx, dto.MaterialFilterRequest{Status: "quebrados"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.materials.List(ctx, dto.MaterialFilterRequest{Ordenar: "preco"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMovementUseCase_ListConReferencia(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a, err := e.materials.Create(ctx, dto.CreateMaterialRequest{Nome: "Mouse", Quantidade: intPtr(5)})
	require.NoError(t, err)
	b, err := e.materials.Create(ctx, dto.CreateMaterialRequest{Nome: "Cabo", Quantidade: intPtr(5)})
	require.NoError(t, err)

	for _, id := range []string{a.ID, b.ID, a.ID} {
		_, err := e.ledger.ApplyMovement(ctx, inventory.MovementInputDTO{MaterialID: id, Type: "saida", Quantity: 1, Technician: "Ana"})
		require.NoError(t, err)
	}
	_, err = e.materials.SetActive(ctx, b.ID, false)
	require.NoError(t, err)

	all, err := e.movements.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, mv := range all {
		require.NotNil(t, mv.Material, "materiales inactivos también se resuelven")
	}

	onlyA, err := e.movements.List(ctx, a.ID, 1)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, 3, onlyA[0].QuantidadeAtual, "el más reciente primero")
}

func names(list []dto.MaterialResponse) []string {
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m.Nome)
	}
	return out
}

// interleavedMaterials ejecuta hook una sola vez justo después de la primera lectura.
type interleavedMaterials struct {
	repository.MaterialRepository
	once sync.Once
	hook func()
}

func (r *interleavedMaterials) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	m, err := r.MaterialRepository.GetByID(ctx, id)
	r.once.Do(r.hook)
	return m, err
}

func TestMaterialUseCase_UpdateNoRevierteDesactivacionConcurrente(t *testing.T) {
	store := memory.NewStore()
	base := memory.NewMaterialRepository(store)
	movRepo := memory.NewMovementRepository(store)
	ledger := inventory.NewRegisterMovementUseCase(inventory.Deps{
		TxRunner: memory.NewTxRunner(store),
		Locker:   lock.NewLocalLocker(time.Second),
	})
	direct := usecase.NewMaterialUseCase(base, movRepo, ledger)
	ctx := context.Background()
	created, err := direct.Create(ctx, dto.CreateMaterialRequest{Nome: "Mouse", Quantidade: intPtr(3)})
	require.NoError(t, err)

	var deactivateErr error
	wrapped := &interleavedMaterials{MaterialRepository: base, hook: func() {
		_, deactivateErr = direct.SetActive(ctx, created.ID, false)
	}}
	renamer := usecase.NewMaterialUseCase(wrapped, movRepo, ledger)

	out, err := renamer.Update(ctx, created.ID, dto.UpdateMaterialRequest{Nome: strPtr("Mouse USB")})
	require.NoError(t, err)
	require.NoError(t, deactivateErr)
	assert.Equal(t, "Mouse USB", out.Nome)
	assert.False(t, out.Ativo, "la desactivación concurrente se conserva")

	got, err := direct.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Ativo)
	assert.Equal(t, "Inativo", got.Status)
}

// failingUpdateMaterials falla solo la escritura de atributos.
type failingUpdateMaterials struct {
	repository.MaterialRepository
}

func (failingUpdateMaterials) Update(context.Context, *entity.Material) error {
	return errors.New("conexión perdida")
}

func TestMaterialUseCase_UpdateParcialInformaCorreccion(t *testing.T) {
	store := memory.NewStore()
	base := memory.NewMaterialRepository(store)
	movRepo := memory.NewMovementRepository(store)
	ledger := inventory.NewRegisterMovementUseCase(inventory.Deps{
		TxRunner: memory.NewTxRunner(store),
		Locker:   lock.NewLocalLocker(time.Second),
	})
	ctx := context.Background()
	created, err := usecase.NewMaterialUseCase(base, movRepo, ledger).
		Create(ctx, dto.CreateMaterialRequest{Nome: "Alicate", Quantidade: intPtr(4)})
	require.NoError(t, err)

	uc := usecase.NewMaterialUseCase(failingUpdateMaterials{base}, movRepo, ledger)
	out, err := uc.Update(ctx, created.ID, dto.UpdateMaterialRequest{
		Nome: strPtr("Alicate novo"), Quantidade: intPtr(9), Tecnico: "Rui",
	})
	var partial *usecase.PartialUpdateError
	require.ErrorAs(t, err, &partial)
	require.NotNil(t, partial.Correction)
	assert.Equal(t, 9, partial.Correction.CurrentQuantity)
	require.NotNil(t, out)
	require.NotNil(t, out.Correcao)
	assert.Equal(t, 9, out.Quantidade)
	assert.Equal(t, "Alicate", out.Nome)

	// Sin corrección el error se devuelve tal cual.
	_, err = uc.Update(ctx, created.ID, dto.UpdateMaterialRequest{Nome: strPtr("Alicate novo")})
	require.Error(t, err)
	assert.False(t, errors.As(err, &partial))
}

func TestMaterialUseCase_CantidadesSobreElTope(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, err := e.materials.Create(ctx, dto.CreateMaterialRequest{Nome: "X", Quantidade: intPtr(math.MaxInt)})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantidade", ve.Field)

	created, err := e.materials.Create(ctx, dto.CreateMaterialRequest{Nome: "Y", Quantidade: intPtr(1)})
	require.NoError(t, err)
	_, err = e.materials.Update(ctx, created.ID, dto.UpdateMaterialRequest{
		EstoqueMinimo: intPtr(math.MaxInt32 + 1),
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "estoqueMinimo", ve.Field)

	_, err = e.materials.Update(ctx, created.ID, dto.UpdateMaterialRequest{
		Quantidade: intPtr(math.MaxInt), Tecnico: "Rui",
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantidade", ve.Field)
}
