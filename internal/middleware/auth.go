package middleware

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"usermgmt/internal/auth"
	apperrors "usermgmt/internal/errors"
	"usermgmt/internal/model"
)

const claimsContextKey = "claims"

// TokenVerifier verifies a raw token string.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate reads the token from the named cookie, verifies it and
// stores the claims on the request context. Missing, invalid and revoked
// tokens are rejected with 401 before reaching the handler.
func Authenticate(verifier TokenVerifier, revocations auth.TokenStoreInterface, cookieName string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + cookieName,
		ContextKey:  claimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := verifier.Verify(token)
			if err != nil {
				return nil, err
			}
			revoked, err := revocations.IsRevoked(c.Request().Context(), claims.ID)
			if err != nil || revoked {
				return nil, apperrors.ErrInvalidToken
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.ErrInvalidToken.WithMessage("authentication required")
		},
	})
}

// ClaimsFrom returns the claims stored by Authenticate.
func ClaimsFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// RequireRole rejects requests whose role is not in roles. It must run
// after Authenticate.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return apperrors.ErrInvalidToken.WithMessage("authentication required")
			}
			if _, ok := allowed[claims.Role]; !ok {
				return apperrors.ErrForbidden.WithMessage("insufficient permissions")
			}
			return next(c)
		}
	}
}
