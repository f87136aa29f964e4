package middleware

import (
	"crypto/subtle"
	"notesync/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

type AuthMiddlewareConfig struct {
	// Token is the shared secret every client sends as a bearer token.
	Token string
}

// NewAuthMiddleware rejects every request that does not carry
// "Authorization: Bearer <token>". An empty token rejects everything.
func NewAuthMiddleware(cfg *AuthMiddlewareConfig) echo.MiddlewareFunc {
	expected := []byte(cfg.Token)

	return echomw.KeyAuthWithConfig(echomw.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			return len(expected) > 0 && subtle.ConstantTimeCompare([]byte(key), expected) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			log.Debugf("rejected unauthenticated request to %s: %v", c.Request().URL.Path, err)
			return c.JSON(apierror.UnauthorizedError.Code(), apierror.UnauthorizedError)
		},
	})
}
