package middleware

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kirana-labs/kirana/internal/entity"
	"github.com/kirana-labs/kirana/internal/presentation/http/response"
	"github.com/kirana-labs/kirana/pkg/errorbank"
)

// Trusted identity headers. Authentication happens upstream; these headers are
// assumed to have been set by the gateway.
const (
	HeaderCallerID   = "X-Caller-ID"
	HeaderCallerRole = "X-Caller-Role"
)

const callerContextKey = "kirana.caller"

// Caller is the authenticated principal attached to a request.
type Caller struct {
	ID   int64
	Role string
}

// IsProvider reports whether the caller acts as a provider.
func (c Caller) IsProvider() bool {
	return c.Role == entity.RoleProvider
}

// CallerFrom extracts the caller set by Identity. The boolean is false on
// routes that were not guarded.
func CallerFrom(c echo.Context) (Caller, bool) {
	caller, ok := c.Get(callerContextKey).(Caller)
	return caller, ok
}

// Identity parses the trusted identity headers and stores the caller on the
// request context. Requests without a parseable caller id are rejected.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b := response.New(c)

			rawID := strings.TrimSpace(c.Request().Header.Get(HeaderCallerID))
			if rawID == "" {
				return b.WithError(errorbank.Unauthorized("caller identity is required")).Build()
			}
			id, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil || id <= 0 {
				return b.WithError(errorbank.Unauthorized("invalid caller identity")).Build()
			}

			role := strings.ToLower(strings.TrimSpace(c.Request().Header.Get(HeaderCallerRole)))
			if role == "" {
				role = entity.RoleConsumer
			}

			c.Set(callerContextKey, Caller{ID: id, Role: role})
			return next(c)
		}
	}
}

// RequireRole rejects callers whose role differs from the one given.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFrom(c)
			if !ok {
				return response.New(c).WithError(errorbank.Unauthorized("caller identity is required")).Build()
			}
			if caller.Role != role {
				return response.New(c).WithError(errorbank.Unauthorized("this action requires the " + role + " role")).Build()
			}
			return next(c)
		}
	}
}
