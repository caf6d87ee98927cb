package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shoplytic/reminder-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithError sends an error response, mapping AppError codes to HTTP
// status codes.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
		switch appErr.Code {
		case errors.ErrNotFound:
			status = http.StatusNotFound
		case errors.ErrBadRequest:
			status = http.StatusBadRequest
		case errors.ErrUnauthorized:
			status = http.StatusUnauthorized
		}
	}

	c.JSON(status, Response{
		Status:  "error",
		Message: message,
	})
}
