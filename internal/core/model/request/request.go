package request

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=100"`
	Cpf   string `json:"cpf" validate:"required"`
}

type EditNameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type EditCpfRequest struct {
	Cpf string `json:"cpf" validate:"required"`
}

type EditEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=100"`
}
