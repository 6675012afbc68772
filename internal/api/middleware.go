package api

import (
	"github.com/labstack/echo/v4"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"github.com/ougirez/pricelist/internal/pkg/logger"
	"github.com/ougirez/pricelist/internal/pkg/utils"
	"go.uber.org/zap"
)

func (svc *APIService) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		token := utils.AuthToken(ctx.Request())
		if token == "" {
			return constants.ErrMissingAuthToken
		}

		claims, err := svc.authService.Claims(token)
		if err != nil {
			return err
		}

		ctx.Set(constants.CtxKeyClaims, claims)
		reqCtx := logger.With(ctx.Request().Context(),
			zap.String("user_id", claims.UserID),
			zap.String("company_id", claims.CompanyID),
		)
		ctx.SetRequest(ctx.Request().WithContext(reqCtx))

		return next(ctx)
	}
}
