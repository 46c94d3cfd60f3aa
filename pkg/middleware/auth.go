package middleware

import (
	"context"
	"strings"

	"makerspace/internal/authz"
	"makerspace/internal/entities"
	apperrors "makerspace/pkg/errors"
	"makerspace/pkg/service"
	"makerspace/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PrivilegeResolver returns the current privilege of a user.
type PrivilegeResolver interface {
	GetPrivilege(ctx context.Context, userID uint64) (entities.Privilege, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	privileges PrivilegeResolver
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, privileges PrivilegeResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtSvc, privileges: privileges, logger: logger}
}

// tokenFrom reads "Authorization: Bearer <token>". Browsers cannot set headers
// on websocket upgrades, so the token query parameter is accepted as well.
func tokenFrom(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", apperrors.ErrEmptyAuthHeader
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", apperrors.ErrInvalidAuthHeader
	}
	return parts[1], nil
}

func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := tokenFrom(c)
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.logger.Warn("token rejected", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx := c.Request().Context()
		privilege, err := m.privileges.GetPrivilege(ctx, claims.UserID)
		if err != nil {
			m.logger.Warn("could not resolve privilege", zap.Uint64("userID", claims.UserID), zap.Error(err))
			return utils.ErrorResponse(c, apperrors.ErrUnauthorized, m.logger)
		}
		if !privilege.Valid() {
			return utils.ErrorResponse(c, apperrors.ErrUnauthorized, m.logger)
		}

		c.SetRequest(c.Request().WithContext(authz.WithActor(ctx, claims.UserID, privilege)))
		return next(c)
	}
}
