package apperrors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler turns AppErrors and echo HTTPErrors into the structured
// {"success": false, "error": ..., "code": ...} body every endpoint uses.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "Internal server error"

	var appErr *AppError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status = appErr.Status
		code = appErr.Code
		message = appErr.Message
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
		code = codeForStatus(status)
	default:
		c.Logger().Error(err)
	}

	resp := echo.Map{"success": false, "error": message, "code": code}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}
