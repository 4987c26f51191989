package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/parking-finder/internal/pkg/auth"
	apperrors "github.com/parking-finder/internal/pkg/errors"
	"github.com/parking-finder/internal/pkg/utils"
)

const (
	AuthorizationHeaderKey = "Authorization"
	PrincipalKey           = "principal"
)

// Authenticator проверяет токен доступа
type Authenticator interface {
	Authenticate(raw string) (*auth.Principal, error)
}

// RequireAuth пропускает запрос только с валидным токеном.
// Принимаются схемы "Bearer" и "Token".
func RequireAuth(authenticator Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fields := strings.Fields(c.Get(AuthorizationHeaderKey))
		if len(fields) != 2 || !(strings.EqualFold(fields[0], "Bearer") || strings.EqualFold(fields[0], "Token")) {
			return utils.SendError(c, apperrors.ErrUnauthorized)
		}

		principal, err := authenticator.Authenticate(fields[1])
		if err != nil {
			return utils.SendError(c, apperrors.ErrUnauthorized)
		}

		c.Locals(PrincipalKey, principal)
		return c.Next()
	}
}

// CurrentPrincipal возвращает пользователя, сохранённый RequireAuth
func CurrentPrincipal(c *fiber.Ctx) (*auth.Principal, bool) {
	p, ok := c.Locals(PrincipalKey).(*auth.Principal)
	return p, ok && p != nil
}
