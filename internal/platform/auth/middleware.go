package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	AccountIDKey   contextKey = "account_id"
	AccountTypeKey contextKey = "account_type"
	AccountNameKey contextKey = "account_name"
)

// JWTMiddleware validates the Authorization bearer token and places the
// authenticated account on the request context.
func JWTMiddleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := issuer.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			accountID, err := claims.AccountID()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, AccountIDKey, accountID)
			ctx = context.WithValue(ctx, AccountTypeKey, claims.AccountType)
			ctx = context.WithValue(ctx, AccountNameKey, claims.Name)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequireAccountType restricts a route to the given account types.
func RequireAccountType(types ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			at := AccountTypeFromContext(c.Request().Context())
			if !allowed[at] {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}

func AccountIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(AccountIDKey).(int64)
	return id
}

func AccountTypeFromContext(ctx context.Context) string {
	at, _ := ctx.Value(AccountTypeKey).(string)
	return at
}

func AccountNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(AccountNameKey).(string)
	return name
}
