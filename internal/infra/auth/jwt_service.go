package auth

import (
	"strings"
	"time"

	"identity/config"
	"identity/internal/domain/service"
	"identity/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// registeredClaims cannot be set through extra claims.
var registeredClaims = map[string]struct{}{
	"sub": {}, "iat": {}, "exp": {}, "nbf": {}, "jti": {}, "iss": {}, "aud": {},
}

// jwtService is a concrete implementation of the TokenService interface using HS256 JWTs.
type jwtService struct {
	secret []byte           // Process-wide signing secret, never logged or returned.
	ttl    time.Duration    // Default token lifetime.
	now    func() time.Time // Clock for issuance and expiry checks.
}

// NewJWTService is the constructor for jwtService.
// It refuses to build without a signing secret so the process fails at startup.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	ttl := time.Duration(0)
	if cfg.Auth != nil {
		ttl = cfg.Auth.TokenTTL
	}

	return newJWTService([]byte(cfg.SecretKey.Access), ttl, time.Now), nil
}

func newJWTService(secret []byte, ttl time.Duration, now func() time.Time) *jwtService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &jwtService{
		secret: secret,
		ttl:    ttl,
		now:    now,
	}
}

// Issue creates a signed token bound to accountID.
func (s *jwtService) Issue(accountID uuid.UUID, extraClaims map[string]any, ttl time.Duration) (string, error) {
	if accountID == uuid.Nil {
		return "", errors.New("token subject must not be empty")
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	claims := make(jwt.MapClaims, len(extraClaims)+4)
	for name, value := range extraClaims {
		if _, reserved := registeredClaims[name]; reserved {
			continue
		}
		claims[name] = value
	}

	issuedAt := s.now()
	claims["sub"] = accountID.String()
	claims["iat"] = jwt.NewNumericDate(issuedAt)
	claims["exp"] = jwt.NewNumericDate(issuedAt.Add(ttl))
	claims["jti"] = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Verify checks the signature first, then expiry, and only then reads the claims.
func (s *jwtService) Verify(tokenString string) (*service.Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, service.ErrTokenMissing
	}

	mapClaims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, mapClaims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, classifyParseError(err)
	}

	return claimsFromMap(mapClaims)
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return service.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return service.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return service.ErrTokenExpired
	default:
		return service.ErrTokenMalformed
	}
}

func claimsFromMap(mapClaims jwt.MapClaims) (*service.Claims, error) {
	subject, err := mapClaims.GetSubject()
	if err != nil || subject == "" {
		return nil, service.ErrTokenMalformed
	}

	accountID, err := uuid.Parse(subject)
	if err != nil {
		return nil, service.ErrTokenMalformed
	}

	claims := &service.Claims{AccountID: accountID}

	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if email, ok := mapClaims[service.ClaimEmail].(string); ok {
		claims.Email = email
	}

	for name, value := range mapClaims {
		if _, reserved := registeredClaims[name]; reserved || name == service.ClaimEmail {
			continue
		}
		if claims.Extra == nil {
			claims.Extra = make(map[string]any)
		}
		claims.Extra[name] = value
	}

	return claims, nil
}
