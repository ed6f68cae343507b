package util

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

const bodyField = "request"

var ErrEmptyBody = errors.New("The request body is empty")

// BindError names the payload field that could not be decoded.
type BindError struct {
	Field string
	Err   error
}

func (e *BindError) Error() string {
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(e.Err, &typeErr):
		return "The field " + e.Field + " must be a " + typeErr.Type.Kind().String()
	case errors.Is(e.Err, ErrEmptyBody):
		return ErrEmptyBody.Error()
	}

	return "Invalid request parameters"
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// ParamsToMap decodes the JSON body into T. Field rules are left to the request validator.
func ParamsToMap[T any](c *gin.Context) (T, error) {
	var params T

	err := c.ShouldBindJSON(&params)

	if err == nil {
		return params, nil
	}

	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, io.EOF):
		return params, &BindError{Field: bodyField, Err: ErrEmptyBody}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return params, &BindError{Field: typeErr.Field, Err: err}
	}

	return params, &BindError{Field: bodyField, Err: err}
}
