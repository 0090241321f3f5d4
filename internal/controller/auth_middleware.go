package controller

import (
	"net/http"
	"strings"

	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/pkg/jwt"

	"github.com/google/uuid"
	"github.com/labstack/echo"
)

const principalContextKey = "principal"

// authMiddleware verifies the bearer token and attaches the rebuilt
// Principal to the request context. Everything behind it can assume a
// well-formed caller identity.
func authMiddleware(tokens *jwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, errorResponse{"Missing bearer token"})
			}

			claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorResponse{"Invalid or expired token"})
			}

			id, err := uuid.Parse(claims.Subject)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorResponse{"Invalid or expired token"})
			}

			p := entity.Principal{
				Id:   id,
				Kind: claims.Kind,
				Role: claims.Role,
			}
			if claims.OrganizationId != "" {
				orgId, err := uuid.Parse(claims.OrganizationId)
				if err != nil {
					return c.JSON(http.StatusUnauthorized, errorResponse{"Invalid or expired token"})
				}
				p.OrganizationId = orgId
			}

			c.Set(principalContextKey, p)

			return next(c)
		}
	}
}

func principalFrom(c echo.Context) entity.Principal {
	p, _ := c.Get(principalContextKey).(entity.Principal)
	return p
}
