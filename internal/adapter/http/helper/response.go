package helper

import (
	"errors"
	"net/http"

	. "cpfregistry/internal/adapter/http/validation"
	"cpfregistry/internal/adapter/spreadsheet"
	"cpfregistry/internal/core/domain"
	"cpfregistry/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

func SendSuccess(c *gin.Context, statusCode int, data any, message ...string) {
	response := response.SuccessResponse{
		Data: data,
	}

	if len(message) > 0 && message[0] != "" {
		response.Message = message[0]
	}

	c.JSON(statusCode, response)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.JSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, err error) {
	validationErrors := FormatValidationErrors(err)
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors)
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors, details...)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errors)
}

func SendNotFoundError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "resource",
			Message: message,
		},
	}

	SendError(c, http.StatusNotFound, "NOT_FOUND", errors)
}

func SendConflictError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusConflict, "CONFLICT", errors)
}

// SendDomainError maps registry errors to their HTTP status. It reports false for any other
// error so the caller can log it and answer 500.
func SendDomainError(c *gin.Context, err error) bool {
	var (
		validationErr  *domain.ValidationError
		duplicateErr   *domain.DuplicateError
		notFoundErr    *domain.NotFoundError
		mismatchErr    *domain.TypeMismatchError
		spreadsheetErr *spreadsheet.Error
	)

	switch {
	case errors.As(err, &spreadsheetErr):
		SendBadRequestError(c, "file", spreadsheetErr.Error())
	case errors.Is(err, spreadsheet.ErrEmptyContent):
		SendBadRequestError(c, "file", err.Error())
	case errors.As(err, &validationErr):
		SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", []response.ValidationError{
			{Field: validationErr.Field, Message: validationErr.Message},
		})
	case errors.As(err, &mismatchErr):
		SendBadRequestError(c, "users", mismatchErr.Error())
	case errors.As(err, &notFoundErr):
		SendNotFoundError(c, notFoundErr.Error())
	case errors.As(err, &duplicateErr):
		SendConflictError(c, duplicateErr.Field, duplicateErr.Error())
	default:
		return false
	}

	return true
}
