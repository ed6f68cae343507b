package response

import "cpfregistry/internal/core/domain"

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Cpf   string `json:"cpf"`
}

type UserDetailsResponse struct {
	UserResponse
	IsCreditEligible bool `json:"is_credit_eligible"`
}

type EditNameResponse struct {
	Name     string `json:"name"`
	DateTime string `json:"date_time"`
}

type EditCpfResponse struct {
	Cpf      string `json:"cpf"`
	DateTime string `json:"date_time"`
}

type EditEmailResponse struct {
	Email    string `json:"email"`
	DateTime string `json:"date_time"`
}

type SpreadsheetImportResponse struct {
	CreatedUsers int    `json:"created_users"`
	DateTime     string `json:"date_time"`
}

type SpreadsheetExportResponse struct {
	Csv string `json:"csv"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Errors  []ValidationError `json:"errors"`
	Details any               `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}

func NewUserResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID(),
		Name:  user.Name(),
		Email: user.Email(),
		Cpf:   user.Cpf(),
	}
}

func NewUserResponses(users []domain.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))

	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}

	return responses
}

func NewUserDetailsResponse(details domain.UserDetails) UserDetailsResponse {
	return UserDetailsResponse{
		UserResponse:     NewUserResponse(details.User),
		IsCreditEligible: details.IsCreditEligible,
	}
}
