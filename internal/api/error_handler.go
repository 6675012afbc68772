package api

import (
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"github.com/ougirez/pricelist/internal/pkg/logger"
	"net/http"
)

func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	msg := err.Error()
	code := http.StatusInternalServerError

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		msg = fmt.Sprint(httpErr.Message)
	}
	for err != nil {
		if ce, ok := err.(*constants.CodedError); ok {
			code = ce.Code()
			break
		}
		err = errors.Unwrap(err)
	}

	if code >= http.StatusInternalServerError {
		logger.Errorf(c.Request().Context(), "%s %s: %s", c.Request().Method, c.Path(), msg)
	}

	_ = c.JSON(code, domain.ErrorResponse{
		Message: msg,
		Code:    code,
	})
}
