// File: /utils/response.go
package utils

import (
	"errors"
	"net/http"

	"filmogram-api/models"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SendError(c *gin.Context, status int, err string) {
	c.JSON(status, ErrorResponse{
		Error: err,
		Code:  status,
	})
}

func SendValidationError(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Validation failed",
		Message: err,
		Code:    http.StatusBadRequest,
	})
}

// SendBindError reports a failed ShouldBindJSON, naming the offending fields
// when the validator produced them.
func SendBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		SendValidationError(c, err.Error())
		return
	}
	msg := ""
	for i, fe := range verrs {
		if i > 0 {
			msg += "; "
		}
		msg += fe.Field() + " failed on " + fe.Tag()
	}
	SendValidationError(c, msg)
}

// SendDomainError maps service errors to a status code: NotFound is 404,
// InvalidArgument is 400 and anything else is 500. Internal errors are
// attached to the context for the ErrorHandler middleware to log.
func SendDomainError(c *gin.Context, err error) {
	switch {
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found", Message: err.Error(), Code: http.StatusNotFound})
	case models.IsInvalidArgument(err):
		SendValidationError(c, err.Error())
	default:
		_ = c.Error(err)
		SendError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func SendSuccess(c *gin.Context, message string, data interface{}) {
	response := SuccessResponse{
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(http.StatusOK, response)
}
