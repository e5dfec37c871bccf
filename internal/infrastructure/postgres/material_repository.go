package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

const materialColumns = `id, nome, descricao, quantidade, localizacao, estoque_minimo,
	categoria, ciclo_vida, versao, criado_em, atualizado_em`

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

// Create persiste un material nuevo.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `
		INSERT INTO materiais (id, nome, descricao, quantidade, localizacao, estoque_minimo,
			categoria, ciclo_vida, versao, criado_em, atualizado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Name, m.Description, m.Quantity, m.Location, m.MinStock,
		nullableString(m.Category), string(m.Lifecycle), m.Version, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return mapError("create material", err)
	}
	return nil
}

// GetByID obtiene un material por ID; (nil, nil) si no existe.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	return r.get(ctx, `SELECT `+materialColumns+` FROM materiais WHERE id = $1`, id)
}

// GetForUpdate obtiene el material y bloquea la fila (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	return r.get(ctx, `SELECT `+materialColumns+` FROM materiais WHERE id = $1 FOR UPDATE`, id)
}

func (r *MaterialRepo) get(ctx context.Context, query, id string) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get material", err)
	}
	return m, nil
}

// Update reemplaza los atributos editables; cantidad, versión y ciclo de vida no se tocan.
func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	query := `
		UPDATE materiais
		SET nome = $2, descricao = $3, localizacao = $4, estoque_minimo = $5,
			categoria = $6, atualizado_em = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.Name, m.Description, m.Location, m.MinStock,
		nullableString(m.Category), m.UpdatedAt,
	)
	if err != nil {
		return mapError("update material", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetLifecycle escribe solo ciclo_vida y atualizado_em.
func (r *MaterialRepo) SetLifecycle(ctx context.Context, id string, lifecycle entity.Lifecycle, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE materiais SET ciclo_vida = $2, atualizado_em = $3 WHERE id = $1`,
		id, string(lifecycle), at,
	)
	if err != nil {
		return mapError("update ciclo_vida", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateQuantity compare-and-set sobre versao: 0 filas afectadas = otro escritor llegó antes.
func (r *MaterialRepo) UpdateQuantity(ctx context.Context, id string, expectedVersion int64, quantity int, at time.Time) error {
	query := `
		UPDATE materiais
		SET quantidade = $3, versao = versao + 1, atualizado_em = $4
		WHERE id = $1 AND versao = $2`
	tag, err := r.q.Exec(ctx, query, id, expectedVersion, quantity, at)
	if err != nil {
		return mapError("update quantidade", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("material %s versión %d: %w", id, expectedVersion, domain.ErrConflict)
	}
	return nil
}

// List filtra categoría y estado en SQL; búsqueda sin acentos y orden se resuelven con las
// mismas reglas de dominio que el store en memoria.
func (r *MaterialRepo) List(ctx context.Context, f repository.MaterialFilter) ([]*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materiais WHERE 1=1`
	args := []any{}
	pos := 1
	if f.Category != "" {
		query += fmt.Sprintf(" AND categoria = $%d", pos)
		args = append(args, f.Category)
		pos++
	}
	switch f.Status {
	case repository.StatusActive:
		query += " AND ciclo_vida = 'active'"
	case repository.StatusInactive:
		query += " AND ciclo_vida = 'inactive'"
	case repository.StatusLowStock:
		query += " AND ciclo_vida = 'active' AND quantidade <= estoque_minimo"
	case repository.StatusZeroed:
		query += " AND ciclo_vida = 'active' AND quantidade = 0"
	}
	query += " ORDER BY seq ASC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list materiais", err)
	}
	defer rows.Close()

	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, mapError("scan material", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list materiais", err)
	}
	return inventory.FilterMaterials(list, f), nil
}

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var m entity.Material
	var category *string
	var lifecycle string
	if err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.Quantity, &m.Location, &m.MinStock,
		&category, &lifecycle, &m.Version, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if category != nil {
		m.Category = *category
	}
	m.Lifecycle = entity.Lifecycle(lifecycle)
	return &m, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
