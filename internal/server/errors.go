package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/suitent/sui-deepbook-swap/internal/apperror"
)

// JSONErrorHandler returns a custom HTTP error handler so every error,
// including echo's own 404/405, uses the same envelope.
func JSONErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if he, ok := err.(*echo.HTTPError); ok {
			_ = c.JSON(he.Code, ErrorResponse{Error: ErrorBody{
				Message: http.StatusText(he.Code),
				Code:    string(apperror.CodeInvalidRequest),
			}})
			return
		}

		code := apperror.CodeOf(err)
		_ = c.JSON(code.HTTPStatus(), ErrorResponse{Error: ErrorBody{
			Message: apperror.MessageOf(err),
			Code:    string(code),
		}})
	}
}
