package controller

import (
	"github.com/labstack/echo/v4"
	"github.com/ougirez/pricelist/internal/domain"
	"net/http"
)

func (c *Controller) GetTemplate(ctx echo.Context) error {
	template, err := c.service.GetTemplate(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, template)
}

func (c *Controller) SaveTemplate(ctx echo.Context) error {
	template := &domain.Template{ProviderID: ctx.Param("id")}
	if err := ctx.Bind(template); err != nil {
		return err
	}
	template.ProviderID = ctx.Param("id")

	saved, err := c.service.SaveTemplate(ctx.Request().Context(), template)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, saved)
}
