package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"finai/internal/domain"
	"finai/internal/resilient"
)

// DataSourceHeader tells clients whether a read-path payload is real or synthetic
const DataSourceHeader = "X-Data-Source"

// ErrorBody is the JSON body of every error response
type ErrorBody struct {
	Error string `json:"error"`
}

// SuccessResponse sends a 200 with the bare payload
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// CreatedResponse sends a 201 Created response
func CreatedResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

// SourcedResponse sends a 200 tagged with the source of the data
func SourcedResponse[T any](c echo.Context, result resilient.Result[T]) error {
	c.Response().Header().Set(DataSourceHeader, string(result.Source))
	return c.JSON(http.StatusOK, result.Data)
}

// MessageResponse sends a 200 with a message body
func MessageResponse(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}

// ErrorResponse sends an error response with an explicit status
func ErrorResponse(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, ErrorBody{Error: message})
}

// BadRequestResponse sends a 400 Bad Request response
func BadRequestResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusBadRequest, message)
}

// UnauthorizedResponse sends a 401 Unauthorized response
func UnauthorizedResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusUnauthorized, message)
}

// AppErrorResponse maps err to a status through its kind. Errors without a kind
// are reported as a generic 500 so driver details never reach clients.
func AppErrorResponse(c echo.Context, err error) error {
	kind := domain.KindOf(err)
	return ErrorResponse(c, domain.StatusCode(kind), domain.MessageOf(err))
}

// ServerErrorResponse is AppErrorResponse with persistence failures reported as 500
func ServerErrorResponse(c echo.Context, err error) error {
	if domain.KindOf(err) == domain.KindPersistence {
		return ErrorResponse(c, http.StatusInternalServerError, domain.MessageOf(err))
	}
	return AppErrorResponse(c, err)
}
