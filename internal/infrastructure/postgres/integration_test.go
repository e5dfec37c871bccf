package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/lock"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/postgres"
)

// Requiere TEST_DATABASE_URL apuntando a una base descartable.
func newPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	return pool
}

func seedMaterial(t *testing.T, pool *pgxpool.Pool, qty int) *entity.Material {
	t.Helper()
	now := time.Now().UTC()
	m := &entity.Material{
		ID: uuid.New().String(), Name: "Mouse", Quantity: qty, MinStock: 5,
		Lifecycle: entity.LifecycleActive, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, postgres.NewMaterialRepository(pool).Create(context.Background(), m))
	return m
}

func TestPostgres_SalidasConcurrentesSinPerdidas(t *testing.T) {
	pool := newPool(t)
	ctx := context.Background()
	m := seedMaterial(t, pool, 10)

	uc := inventory.NewRegisterMovementUseCase(inventory.Deps{
		TxRunner: postgres.NewTxRunner(pool, 2*time.Second),
		// sin lock de proceso: la exclusión la da FOR UPDATE
		Locker: noLock{},
	})

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, insufficient := 0, 0
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.ApplyMovement(ctx, inventory.MovementInputDTO{
				MaterialID: m.ID, Type: "saida", Quantity: 1, Technician: "Ana",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				insufficient++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 5, insufficient)

	got, err := postgres.NewMaterialRepository(pool).GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	movs, err := postgres.NewMovementRepository(pool).ListByMaterial(ctx, m.ID, 0)
	require.NoError(t, err)
	require.Len(t, movs, 10)
	for i := 0; i+1 < len(movs); i++ {
		assert.Equal(t, movs[i+1].CurrentQuantity, movs[i].PreviousQuantity, "cadena enlazada")
	}
}

func TestPostgres_MovimientosInmutables(t *testing.T) {
	pool := newPool(t)
	ctx := context.Background()
	m := seedMaterial(t, pool, 3)

	uc := inventory.NewRegisterMovementUseCase(inventory.Deps{
		TxRunner: postgres.NewTxRunner(pool, time.Second),
		Locker:   lock.NewLocalLocker(time.Second),
	})
	mov, err := uc.ApplyMovement(ctx, inventory.MovementInputDTO{MaterialID: m.ID, Type: "entrada", Quantity: 2, Technician: "Ana"})
	require.NoError(t, err)
	assert.Positive(t, mov.Sequence)

	_, err = pool.Exec(ctx, `UPDATE movimentacoes SET quantidade = 99 WHERE id = $1`, mov.ID)
	assert.Error(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM movimentacoes WHERE id = $1`, mov.ID)
	assert.Error(t, err)
}

func TestPostgres_VersionCompareAndSet(t *testing.T) {
	pool := newPool(t)
	ctx := context.Background()
	m := seedMaterial(t, pool, 3)
	repo := postgres.NewMaterialRepository(pool)

	require.NoError(t, repo.UpdateQuantity(ctx, m.ID, 0, 4, time.Now()))
	err := repo.UpdateQuantity(ctx, m.ID, 0, 5, time.Now())
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPostgres_UpdateYSetLifecycleSonDisjuntos(t *testing.T) {
	pool := newPool(t)
	ctx := context.Background()
	m := seedMaterial(t, pool, 3)
	repo := postgres.NewMaterialRepository(pool)

	stale := *m
	require.NoError(t, repo.SetLifecycle(ctx, m.ID, entity.LifecycleInactive, time.Now()))
	stale.Name = "Mouse USB"
	stale.Lifecycle = entity.LifecycleActive
	require.NoError(t, repo.Update(ctx, &stale))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mouse USB", got.Name)
	assert.Equal(t, entity.LifecycleInactive, got.Lifecycle)
	assert.ErrorIs(t, repo.SetLifecycle(ctx, uuid.New().String(), entity.LifecycleActive, time.Now()), domain.ErrNotFound)
}

type noLock struct{}

func (noLock) Acquire(context.Context, string) (func(), error) { return func() {}, nil }
