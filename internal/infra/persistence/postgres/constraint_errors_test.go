package postgres

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueConstraintViolation(t *testing.T) {
	assert.True(t, isUniqueConstraintViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueConstraintViolation(errors.Wrap(gorm.ErrDuplicatedKey, "create")))
	assert.True(t, isUniqueConstraintViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_accounts_email"})))

	assert.False(t, isUniqueConstraintViolation(&pgconn.PgError{Code: "23502"}))
	assert.False(t, isUniqueConstraintViolation(errors.New("connection reset")))
}

func TestIsNotNullConstraintViolation(t *testing.T) {
	assert.True(t, isNotNullConstraintViolation(&pgconn.PgError{Code: "23502"}))
	assert.True(t, isNotNullConstraintViolation(errors.New(`null value in column "email" violates not-null constraint`)))

	assert.False(t, isNotNullConstraintViolation(&pgconn.PgError{Code: "23505", Message: "duplicate key value"}))
}
