package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"identity/config"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferedGormLogger(t *testing.T, debug bool) (logger.Interface, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	base := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := &config.Config{}
	cfg.Env.Debug = debug

	return newGormSlogLogger(base, cfg), buf
}

func sqlFn(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormSlogLogger_Trace(t *testing.T) {
	ctx := context.Background()

	t.Run("skips expected account outcomes", func(t *testing.T) {
		l, buf := newBufferedGormLogger(t, false)

		l.Trace(ctx, time.Now(), sqlFn("SELECT 1"), gorm.ErrRecordNotFound)
		l.Trace(ctx, time.Now(), sqlFn("INSERT"), &pgconn.PgError{Code: pgUniqueViolation})

		assert.Empty(t, buf.String())
	})

	t.Run("logs unexpected failures", func(t *testing.T) {
		l, buf := newBufferedGormLogger(t, false)

		l.Trace(ctx, time.Now(), sqlFn("UPDATE accounts"), errors.New("connection reset"))

		assert.Contains(t, buf.String(), "GORM query failed")
		assert.Contains(t, buf.String(), "connection reset")
	})

	t.Run("logs slow queries", func(t *testing.T) {
		l, buf := newBufferedGormLogger(t, false)

		l.Trace(ctx, time.Now().Add(-time.Second), sqlFn("SELECT * FROM accounts"), nil)

		assert.Contains(t, buf.String(), "GORM slow query")
	})

	t.Run("debug mode logs every query", func(t *testing.T) {
		l, buf := newBufferedGormLogger(t, true)

		l.Trace(ctx, time.Now(), sqlFn("SELECT * FROM accounts"), nil)

		assert.Contains(t, buf.String(), `"msg":"GORM query"`)
	})

	t.Run("silent mode logs nothing", func(t *testing.T) {
		l, buf := newBufferedGormLogger(t, true)

		l.LogMode(logger.Silent).Trace(ctx, time.Now(), sqlFn("SELECT 1"), errors.New("boom"))

		assert.Empty(t, buf.String())
	})
}

func TestGormSlogLogger_ParamsFilter(t *testing.T) {
	l, _ := newBufferedGormLogger(t, false)

	filter, ok := l.(interface {
		ParamsFilter(ctx context.Context, sql string, params ...any) (string, []any)
	})
	require.True(t, ok)

	sql, params := filter.ParamsFilter(context.Background(), "INSERT INTO accounts VALUES ($1,$2)", "a@example.com", "$2a$12$hash")
	assert.Equal(t, "INSERT INTO accounts VALUES ($1,$2)", sql)
	assert.Nil(t, params)
}
