package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
)

// Códigos SQLSTATE usados por el adaptador.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeLockNotAvailable     = "55P03" // lock_timeout vencido
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapError traduce errores transitorios de concurrencia a domain.ErrConflict (el coordinador reintenta)
// y las violaciones de CHECK a ErrInvalidInput. El resto se envuelve como error interno.
func mapError(op string, err error) error {
	switch pgCode(err) {
	case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s: %w (%v)", op, domain.ErrConflict, err)
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w (%v)", op, domain.ErrConflict, err)
	case codeCheckViolation:
		return fmt.Errorf("%s: %w (%v)", op, domain.ErrInvalidInput, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
