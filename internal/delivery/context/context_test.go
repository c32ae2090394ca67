package context

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"identity/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetAuth(t *testing.T) {
	t.Run("defaults to anonymous", func(t *testing.T) {
		auth := GetAuth(context.Background())
		assert.False(t, auth.IsAuthenticated())
	})

	t.Run("returns stored context", func(t *testing.T) {
		id := uuid.New()
		ctx := WithAuth(context.Background(), entity.Authenticated(id, "a@example.com"))

		auth := GetAuth(ctx)
		assert.True(t, auth.IsAuthenticated())
		assert.Equal(t, id, auth.AccountID)
		assert.Equal(t, "a@example.com", auth.Email)
	})
}

func TestLoggerHelpers(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	scoped := fallback.With(slog.String("request_id", "abc"))

	assert.Nil(t, GetLogger(context.Background()))
	assert.Same(t, fallback, GetLoggerOrDefault(context.Background(), fallback))
	assert.Same(t, scoped, GetLoggerOrDefault(WithLogger(context.Background(), scoped), fallback))
}

func TestRequestIDHelpers(t *testing.T) {
	assert.Empty(t, GetRequestIDFromContext(context.Background()))
	assert.Equal(t, "req-1", GetRequestIDFromContext(WithRequestID(context.Background(), "req-1")))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Response().Header().Set(echo.HeaderXRequestID, "req-2")

	assert.Equal(t, "req-2", GetRequestID(c))
}
