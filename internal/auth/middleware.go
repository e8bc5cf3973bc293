package auth

import (
	"github.com/labstack/echo/v4"

	apperrors "download-service/pkg/errors"
)

type Middleware struct {
	resolver *Resolver
}

func NewMiddleware(resolver *Resolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// RequireIdentity rejects requests that do not carry a verifiable bearer
// token and stores the resolved identity on the echo context.
func (m *Middleware) RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(headerAuthorization)

			identity, err := m.resolver.Resolve(c.Request().Context(), header)
			if err != nil {
				return err
			}
			if identity == nil {
				return apperrors.Unauthorized(msgBearerRequired)
			}

			c.Set(ContextKeyIdentity, identity)
			return next(c)
		}
	}
}

func GetIdentity(c echo.Context) (*Identity, error) {
	value := c.Get(ContextKeyIdentity)
	if value == nil {
		return nil, apperrors.Unauthorized(msgIdentityNotResolved)
	}

	identity, ok := value.(*Identity)
	if !ok {
		return nil, apperrors.InternalServer(msgInvalidIdentityCtx, nil)
	}

	return identity, nil
}
