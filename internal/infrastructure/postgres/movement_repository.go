package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, seq, material_id, tipo, quantidade, tecnico, observacao,
	quantidade_anterior, quantidade_atual, data_hora`

// MovementRepo libro de movimientos sobre PostgreSQL. Solo INSERT: un trigger rechaza UPDATE/DELETE.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste el movimiento y completa Sequence con el valor asignado por la base.
func (r *MovementRepo) Create(ctx context.Context, mov *entity.Movement) error {
	query := `
		INSERT INTO movimentacoes (id, material_id, tipo, quantidade, tecnico, observacao,
			quantidade_anterior, quantidade_atual, data_hora)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		mov.ID, mov.MaterialID, string(mov.Type), mov.Quantity, mov.Technician,
		nullableString(mov.Note), mov.PreviousQuantity, mov.CurrentQuantity, mov.Timestamp,
	).Scan(&mov.Sequence)
	if err != nil {
		return mapError("create movimentacao", err)
	}
	return nil
}

// ListByMaterial movimientos del material, más recientes primero.
func (r *MovementRepo) ListByMaterial(ctx context.Context, materialID string, limit int) ([]*entity.Movement, error) {
	return r.List(ctx, repository.MovementFilter{MaterialID: materialID, Limit: limit})
}

// List consulta con filtros opcionales; To es inclusivo.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movimentacoes WHERE 1=1`
	args := []any{}
	pos := 1
	if f.MaterialID != "" {
		query += fmt.Sprintf(" AND material_id = $%d", pos)
		args = append(args, f.MaterialID)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND data_hora >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND data_hora <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	if f.Type != "" {
		query += fmt.Sprintf(" AND tipo = $%d", pos)
		args = append(args, string(f.Type))
		pos++
	}
	query += " ORDER BY data_hora DESC, seq DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, f.Limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list movimentacoes", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, mapError("scan movimentacao", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list movimentacoes", err)
	}
	return list, nil
}

// Count movimientos con from <= data_hora <= to.
func (r *MovementRepo) Count(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM movimentacoes WHERE data_hora >= $1 AND data_hora <= $2`,
		from, to,
	).Scan(&n)
	if err != nil {
		return 0, mapError("count movimentacoes", err)
	}
	return n, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var tipo string
	var note *string
	if err := row.Scan(
		&m.ID, &m.Sequence, &m.MaterialID, &tipo, &m.Quantity, &m.Technician, &note,
		&m.PreviousQuantity, &m.CurrentQuantity, &m.Timestamp,
	); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(tipo)
	if note != nil {
		m.Note = *note
	}
	return &m, nil
}
