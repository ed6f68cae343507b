package port

import (
	"context"

	"cpfregistry/internal/core/domain"
)

// UserStore is the persistence contract every backend satisfies.
// Reads and predicates only see active (non-deleted) records.
type UserStore interface {
	Create(ctx context.Context, user domain.User) error

	// IsCpfAlreadyCreated reports whether an active record other than exceptID owns cpf.
	IsCpfAlreadyCreated(ctx context.Context, cpf string, exceptID string) (bool, error)

	// IsEmailAlreadyCreated reports whether an active record other than exceptID owns email.
	IsEmailAlreadyCreated(ctx context.Context, email string, exceptID string) (bool, error)

	FindAll(ctx context.Context) ([]domain.User, error)
	IsExistentID(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (domain.UserDetails, error)

	// Edits and Delete return *domain.NotFoundError when id has no active record.
	EditName(ctx context.Context, edit domain.FieldEdit) error
	EditCpf(ctx context.Context, edit domain.FieldEdit) error
	EditEmail(ctx context.Context, edit domain.FieldEdit) error
	Delete(ctx context.Context, id string) error
}

type IDGenerator interface {
	Generate() string
}

type UserService interface {
	GenerateID() string
	Build(name, email, cpf string) (domain.User, error)
	Create(ctx context.Context, user domain.User) error
	CreateFromBatch(ctx context.Context, users []*domain.User) error
	CheckAlreadyCreatedCpf(ctx context.Context, user domain.User) error
	CheckAlreadyCreatedEmail(ctx context.Context, user domain.User) error
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id string) (domain.UserDetails, error)
	DeleteUser(ctx context.Context, id string) error
	EditName(ctx context.Context, id string, name string) (domain.FieldEdit, error)
	EditCpf(ctx context.Context, id string, cpf string) (domain.FieldEdit, error)
	EditEmail(ctx context.Context, id string, email string) (domain.FieldEdit, error)
}
