package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{codeLockNotAvailable, domain.ErrConflict},
		{codeSerializationFailure, domain.ErrConflict},
		{codeDeadlockDetected, domain.ErrConflict},
		{codeUniqueViolation, domain.ErrConflict},
		{codeCheckViolation, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := mapError("op", &pgconn.PgError{Code: tt.code})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	plain := errors.New("conexión caída")
	err := mapError("op", plain)
	assert.ErrorIs(t, err, plain)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}
