package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "identity/internal/delivery/context"
	"identity/internal/domain/entity"
	"identity/internal/domain/service"
	"identity/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const bearerScheme = "bearer"

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenService service.TokenService
	Metrics      *metrics.Metrics `optional:"true"`
	Logger       *slog.Logger
}

// AuthMiddleware derives the per-request authentication context from the bearer token.
type AuthMiddleware struct {
	tokens  service.TokenService
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:  params.TokenService,
		metrics: params.Metrics,
		logger:  params.Logger,
	}
}

// Resolve never rejects a request. A missing or invalid token leaves the request anonymous;
// operations that need an identity fail on their own with NOT_AUTHENTICATED.
func (m *AuthMiddleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		auth := m.resolve(c, bearerToken(req.Header.Get(echo.HeaderAuthorization)))
		c.SetRequest(req.WithContext(deliverycontext.WithAuth(req.Context(), auth)))

		return next(c)
	}
}

func (m *AuthMiddleware) resolve(c echo.Context, token string) entity.AuthContext {
	if token == "" {
		m.metrics.ObserveTokenResolution(metrics.TokenAbsent)

		return entity.Anonymous()
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		result := tokenResult(err)
		m.metrics.ObserveTokenResolution(result)
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).
			Debug("Bearer token rejected", slog.String("result", result))

		return entity.Anonymous()
	}

	m.metrics.ObserveTokenResolution(metrics.TokenValid)

	return entity.Authenticated(claims.AccountID, claims.Email)
}

// bearerToken strips an optional "Bearer " prefix, matching the scheme case-insensitively.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	scheme, rest, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, bearerScheme) {
		return strings.TrimSpace(rest)
	}
	if strings.EqualFold(header, bearerScheme) {
		return ""
	}

	return header
}

func tokenResult(err error) string {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return metrics.TokenExpired
	case errors.Is(err, service.ErrTokenSignatureInvalid):
		return metrics.TokenBadSignature
	case errors.Is(err, service.ErrTokenMalformed):
		return metrics.TokenMalformed
	case errors.Is(err, service.ErrTokenMissing):
		return metrics.TokenAbsent
	default:
		return metrics.TokenUnknownReject
	}
}
