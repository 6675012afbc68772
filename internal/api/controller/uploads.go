package controller

import (
	"github.com/labstack/echo/v4"
	"net/http"
)

func (c *Controller) GetUpload(ctx echo.Context) error {
	status, err := c.service.JobStatus(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, status)
}

func (c *Controller) CancelUpload(ctx echo.Context) error {
	if err := c.service.CancelUpload(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}
