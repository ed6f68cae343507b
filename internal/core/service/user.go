package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"cpfregistry/internal/core/domain"
	"cpfregistry/internal/core/port"
	"cpfregistry/internal/core/telemetry"
)

const serviceName = "user"

var _ port.UserService = (*UserService)(nil)

type UserService struct {
	store     port.UserStore
	ids       port.IDGenerator
	validator *domain.UserValidator
	telemetry port.Telemetry
	now       func() time.Time
}

type Option func(*UserService)

// WithClock replaces time.Now, mostly for eligibility tests.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) {
		s.now = now
	}
}

func WithTelemetry(probe port.Telemetry) Option {
	return func(s *UserService) {
		if probe != nil {
			s.telemetry = probe
		}
	}
}

func WithValidator(v *domain.UserValidator) Option {
	return func(s *UserService) {
		if v != nil {
			s.validator = v
		}
	}
}

func NewUserService(store port.UserStore, ids port.IDGenerator, opts ...Option) *UserService {
	s := &UserService{
		store:     store,
		ids:       ids,
		validator: domain.DefaultValidator(),
		telemetry: telemetry.NewNoOpProbe(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GenerateID returns a fresh id. Generated ids skip field validation.
func (s *UserService) GenerateID() string {
	return s.ids.Generate()
}

// Build assembles a new, not yet persisted user stamped with the current time.
func (s *UserService) Build(name, email, cpf string) (domain.User, error) {
	return s.validator.NewUser(domain.UserParams{
		ID:           s.GenerateID(),
		Name:         name,
		Email:        email,
		Cpf:          cpf,
		DateCreation: domain.FormatDateTime(s.now()),
	})
}

func (s *UserService) Create(ctx context.Context, user domain.User) error {
	return s.observe(ctx, "create", func(ctx context.Context) error {
		if !user.IsComplete() {
			return &domain.TypeMismatchError{Index: 0}
		}

		if err := s.CheckAlreadyCreatedCpf(ctx, user); err != nil {
			return err
		}

		if err := s.CheckAlreadyCreatedEmail(ctx, user); err != nil {
			return err
		}

		if err := s.store.Create(ctx, user); err != nil {
			return err
		}

		s.telemetry.RecordBusinessEvent(ctx, "user.created", serviceName, user.ID(), nil)

		return nil
	})
}

// CreateFromBatch persists users in order. The batch is rejected before any write when an
// element is not a complete user or when a cpf/email collides with an active record or with
// another element. A store failure midway is returned as is; earlier rows stay persisted.
func (s *UserService) CreateFromBatch(ctx context.Context, users []*domain.User) error {
	return s.observe(ctx, "create_from_batch", func(ctx context.Context) error {
		for i, user := range users {
			if user == nil || !user.IsComplete() {
				return &domain.TypeMismatchError{Index: i}
			}
		}

		cpfs := make(map[string]struct{}, len(users))
		emails := make(map[string]struct{}, len(users))

		for _, user := range users {
			if _, seen := cpfs[user.Cpf()]; seen {
				return &domain.DuplicateError{Field: domain.FieldCpf}
			}

			if _, seen := emails[user.Email()]; seen {
				return &domain.DuplicateError{Field: domain.FieldEmail}
			}

			cpfs[user.Cpf()] = struct{}{}
			emails[user.Email()] = struct{}{}

			if err := s.CheckAlreadyCreatedCpf(ctx, *user); err != nil {
				return err
			}

			if err := s.CheckAlreadyCreatedEmail(ctx, *user); err != nil {
				return err
			}
		}

		for _, user := range users {
			if err := s.store.Create(ctx, *user); err != nil {
				return err
			}
		}

		s.telemetry.RecordBusinessEvent(ctx, "user.batch_created", serviceName, "", map[string]any{
			"count": len(users),
		})

		return nil
	})
}

func (s *UserService) CheckAlreadyCreatedCpf(ctx context.Context, user domain.User) error {
	exists, err := s.store.IsCpfAlreadyCreated(ctx, user.Cpf(), user.ID())

	if err != nil {
		return err
	}

	if exists {
		return &domain.DuplicateError{Field: domain.FieldCpf}
	}

	return nil
}

func (s *UserService) CheckAlreadyCreatedEmail(ctx context.Context, user domain.User) error {
	exists, err := s.store.IsEmailAlreadyCreated(ctx, user.Email(), user.ID())

	if err != nil {
		return err
	}

	if exists {
		return &domain.DuplicateError{Field: domain.FieldEmail}
	}

	return nil
}

func (s *UserService) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User

	err := s.observe(ctx, "find_all", func(ctx context.Context) error {
		found, err := s.store.FindAll(ctx)
		users = found
		return err
	})

	if err != nil {
		return nil, err
	}

	return users, nil
}

// FindByID loads an active user and attaches its credit eligibility as of now.
func (s *UserService) FindByID(ctx context.Context, id string) (domain.UserDetails, error) {
	var details domain.UserDetails

	err := s.observe(ctx, "find_by_id", func(ctx context.Context) error {
		if err := s.checkExistentID(ctx, id); err != nil {
			return err
		}

		found, err := s.store.FindByID(ctx, id)

		if err != nil {
			return err
		}

		found.IsCreditEligible = domain.IsCreditEligible(found.DateCreation(), s.now())
		details = found

		return nil
	})

	if err != nil {
		return domain.UserDetails{}, err
	}

	return details, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	return s.observe(ctx, "delete", func(ctx context.Context) error {
		if err := s.checkExistentID(ctx, id); err != nil {
			return err
		}

		if err := s.store.Delete(ctx, id); err != nil {
			return err
		}

		s.telemetry.RecordBusinessEvent(ctx, "user.deleted", serviceName, id, nil)

		return nil
	})
}

func (s *UserService) EditName(ctx context.Context, id string, name string) (domain.FieldEdit, error) {
	var edit domain.FieldEdit

	err := s.observe(ctx, "edit_name", func(ctx context.Context) error {
		if err := s.validator.ValidateName(name); err != nil {
			return err
		}

		if err := s.checkExistentID(ctx, id); err != nil {
			return err
		}

		edit = s.stamp(id, name)

		return s.store.EditName(ctx, edit)
	})

	if err != nil {
		return domain.FieldEdit{}, err
	}

	return edit, nil
}

func (s *UserService) EditCpf(ctx context.Context, id string, cpf string) (domain.FieldEdit, error) {
	var edit domain.FieldEdit

	err := s.observe(ctx, "edit_cpf", func(ctx context.Context) error {
		if err := s.validator.ValidateCpf(cpf); err != nil {
			return err
		}

		if err := s.checkExistentID(ctx, id); err != nil {
			return err
		}

		edit = s.stamp(id, strings.TrimSpace(cpf))

		exists, err := s.store.IsCpfAlreadyCreated(ctx, edit.Value, id)

		if err != nil {
			return err
		}

		if exists {
			return &domain.DuplicateError{Field: domain.FieldCpf}
		}

		return s.store.EditCpf(ctx, edit)
	})

	if err != nil {
		return domain.FieldEdit{}, err
	}

	return edit, nil
}

func (s *UserService) EditEmail(ctx context.Context, id string, email string) (domain.FieldEdit, error) {
	var edit domain.FieldEdit

	err := s.observe(ctx, "edit_email", func(ctx context.Context) error {
		if err := s.validator.ValidateEmail(email); err != nil {
			return err
		}

		if err := s.checkExistentID(ctx, id); err != nil {
			return err
		}

		edit = s.stamp(id, email)

		exists, err := s.store.IsEmailAlreadyCreated(ctx, edit.Value, id)

		if err != nil {
			return err
		}

		if exists {
			return &domain.DuplicateError{Field: domain.FieldEmail}
		}

		return s.store.EditEmail(ctx, edit)
	})

	if err != nil {
		return domain.FieldEdit{}, err
	}

	return edit, nil
}

func (s *UserService) checkExistentID(ctx context.Context, id string) error {
	if err := s.validator.ValidateID(id); err != nil {
		return err
	}

	exists, err := s.store.IsExistentID(ctx, id)

	if err != nil {
		return err
	}

	if !exists {
		return &domain.NotFoundError{ID: id}
	}

	return nil
}

// stamp truncates to whole seconds so the stored edition matches the timestamp layout.
func (s *UserService) stamp(id, value string) domain.FieldEdit {
	return domain.FieldEdit{
		ID:          id,
		Value:       value,
		DateEdition: s.now().UTC().Truncate(time.Second),
	}
}

func (s *UserService) observe(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	start := time.Now()

	ctx, span := s.telemetry.StartServiceSpan(ctx, serviceName, operation, []attribute.KeyValue{
		attribute.String("user.operation", operation),
	})
	defer span.End()

	err := fn(ctx)

	s.telemetry.RecordServiceOperation(ctx, serviceName, operation, time.Since(start), err)

	return err
}
