package port

import "cpfregistry/internal/core/model/response"

// Validator checks request payloads before they reach the service.
type Validator interface {
	ValidateStruct(s any) error
	FormatValidationErrors(err error) []response.ValidationError
}
