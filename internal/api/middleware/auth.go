package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/payrollhq/payroll-system/internal/api/metrics"
	"github.com/payrollhq/payroll-system/internal/core/domain"
	"github.com/payrollhq/payroll-system/pkg/token"
)

const identityKey = "identity"

// TokenVerifier checks a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// Authenticate resolves the caller from an "Authorization: Bearer" header
// and stores it on the context. It never rejects a request: a missing or
// unusable token leaves the request anonymous and Authorize decides.
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.TokenVerificationsTotal.WithLabelValues("absent").Inc()
				return next(c)
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues(verificationResult(err)).Inc()
				return next(c)
			}

			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
			c.Set(identityKey, &domain.Identity{Username: claims.Subject, Role: claims.Role})
			return next(c)
		}
	}
}

// IdentityFrom returns the caller established by Authenticate, or nil for an
// anonymous request.
func IdentityFrom(c echo.Context) *domain.Identity {
	id, _ := c.Get(identityKey).(*domain.Identity)
	return id
}

// SetIdentity stores id as the request caller.
func SetIdentity(c echo.Context, id *domain.Identity) {
	c.Set(identityKey, id)
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}

func verificationResult(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}
