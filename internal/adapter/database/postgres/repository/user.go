package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"

	database "cpfregistry/internal/adapter/database/postgres"
	"cpfregistry/internal/core/domain"
	"cpfregistry/internal/core/port"
	tel "cpfregistry/internal/core/telemetry"
)

const (
	usersTable = "users"
	entity     = "user"

	uniqueViolation = "23505"
)

var userColumns = []string{"id", "name", "email", "cpf", "created_at", "updated_at"}

const eligibleColumn = "created_at <= (now() AT TIME ZONE 'UTC') - interval '6 months' AS is_credit_eligible"

type UserRepository struct {
	db        database.Querier
	builder   *sq.StatementBuilderType
	telemetry port.Telemetry
}

func NewUserRepository(db database.Querier, telemetry port.Telemetry) port.UserStore {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{
		db:        db,
		builder:   database.NewQueryBuilder(),
		telemetry: telemetry,
	}
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) error {
	return ur.observe(ctx, "Create", func(ctx context.Context) error {
		var updatedAt *time.Time

		if edition, ok := user.DateEdition(); ok {
			updatedAt = &edition
		}

		stmt, args, err := ur.builder.Insert(usersTable).
			Columns(userColumns...).
			Values(user.ID(), user.Name(), user.Email(), user.Cpf(), user.DateCreation(), updatedAt).
			ToSql()

		if err != nil {
			return err
		}

		if _, err := ur.db.Exec(ctx, stmt, args...); err != nil {
			slog.Error("Error creating user", "error", err)
			return translateError(err)
		}

		return nil
	})
}

func (ur *UserRepository) IsCpfAlreadyCreated(ctx context.Context, cpf string, exceptID string) (bool, error) {
	return ur.existsActive(ctx, "IsCpfAlreadyCreated", sq.Eq{"cpf": cpf}, exceptID)
}

func (ur *UserRepository) IsEmailAlreadyCreated(ctx context.Context, email string, exceptID string) (bool, error) {
	return ur.existsActive(ctx, "IsEmailAlreadyCreated", sq.Eq{"email": email}, exceptID)
}

func (ur *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}

	err := ur.observe(ctx, "FindAll", func(ctx context.Context) error {
		query, args, err := ur.builder.Select(userColumns...).
			From(usersTable).
			Where(sq.Eq{"deleted_at": nil}).
			OrderBy("seq ASC").
			ToSql()

		if err != nil {
			return err
		}

		rows, err := ur.db.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			user, _, err := scanUser(rows, false)

			if err != nil {
				return err
			}

			users = append(users, user)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return users, nil
}

func (ur *UserRepository) IsExistentID(ctx context.Context, id string) (bool, error) {
	return ur.existsActive(ctx, "IsExistentID", sq.Eq{"id": id}, "")
}

func (ur *UserRepository) FindByID(ctx context.Context, id string) (domain.UserDetails, error) {
	var details domain.UserDetails

	err := ur.observe(ctx, "FindByID", func(ctx context.Context) error {
		query, args, err := ur.builder.Select(append(append([]string{}, userColumns...), eligibleColumn)...).
			From(usersTable).
			Where(sq.Eq{"id": id, "deleted_at": nil}).
			Limit(1).
			ToSql()

		if err != nil {
			return err
		}

		user, eligible, err := scanUser(ur.db.QueryRow(ctx, query, args...), true)

		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.NotFoundError{ID: id}
		}

		if err != nil {
			return err
		}

		details = domain.UserDetails{User: user, IsCreditEligible: eligible}

		return nil
	})

	if err != nil {
		return domain.UserDetails{}, err
	}

	return details, nil
}

func (ur *UserRepository) EditName(ctx context.Context, edit domain.FieldEdit) error {
	return ur.update(ctx, "EditName", "name", edit)
}

func (ur *UserRepository) EditCpf(ctx context.Context, edit domain.FieldEdit) error {
	return ur.update(ctx, "EditCpf", "cpf", edit)
}

func (ur *UserRepository) EditEmail(ctx context.Context, edit domain.FieldEdit) error {
	return ur.update(ctx, "EditEmail", "email", edit)
}

func (ur *UserRepository) Delete(ctx context.Context, id string) error {
	return ur.observe(ctx, "Delete", func(ctx context.Context) error {
		stmt, args, err := ur.builder.Update(usersTable).
			Set("deleted_at", sq.Expr("now() AT TIME ZONE 'UTC'")).
			Where(sq.Eq{"id": id, "deleted_at": nil}).
			ToSql()

		if err != nil {
			return err
		}

		return ur.execAffectingOne(ctx, id, stmt, args)
	})
}

func (ur *UserRepository) update(ctx context.Context, operation, column string, edit domain.FieldEdit) error {
	return ur.observe(ctx, operation, func(ctx context.Context) error {
		stmt, args, err := ur.builder.Update(usersTable).
			Set(column, edit.Value).
			Set("updated_at", edit.DateEdition.UTC()).
			Where(sq.Eq{"id": edit.ID, "deleted_at": nil}).
			ToSql()

		if err != nil {
			return err
		}

		return ur.execAffectingOne(ctx, edit.ID, stmt, args)
	})
}

func (ur *UserRepository) execAffectingOne(ctx context.Context, id, stmt string, args []any) error {
	tag, err := ur.db.Exec(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error updating user", "id", id, "error", err)
		return translateError(err)
	}

	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{ID: id}
	}

	return nil
}

func (ur *UserRepository) existsActive(ctx context.Context, operation string, match sq.Eq, exceptID string) (bool, error) {
	var exists bool

	err := ur.observe(ctx, operation, func(ctx context.Context) error {
		query := ur.builder.Select("1").
			From(usersTable).
			Where(match).
			Where(sq.Eq{"deleted_at": nil})

		if exceptID != "" {
			query = query.Where(sq.NotEq{"id": exceptID})
		}

		stmt, args, err := query.Prefix("SELECT EXISTS (").Suffix(")").ToSql()

		if err != nil {
			return err
		}

		return ur.db.QueryRow(ctx, stmt, args...).Scan(&exists)
	})

	return exists, err
}

func (ur *UserRepository) observe(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, operation, entity, []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.table", usersTable),
	})
	defer span.End()

	op := tel.StartOperation(ctx, ur.telemetry, operation, entity)
	err := fn(ctx)
	op.End(err)

	return err
}

func scanUser(row pgx.Row, withEligibility bool) (domain.User, bool, error) {
	var (
		id, name, email, cpf string
		createdAt            time.Time
		updatedAt            *time.Time
		eligible             bool
	)

	dest := []any{&id, &name, &email, &cpf, &createdAt, &updatedAt}

	if withEligibility {
		dest = append(dest, &eligible)
	}

	if err := row.Scan(dest...); err != nil {
		return domain.User{}, false, err
	}

	params := domain.UserParams{
		ID:           id,
		Name:         name,
		Email:        email,
		Cpf:          cpf,
		DateCreation: domain.FormatDateTime(createdAt),
	}

	if updatedAt != nil {
		params.DateEdition = domain.FormatDateTime(*updatedAt)
	}

	user, err := domain.NewUser(params)

	return user, eligible, err
}

func translateError(err error) error {
	var pgErr *pgconn.PgError

	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case "users_active_cpf_idx":
		return &domain.DuplicateError{Field: domain.FieldCpf}
	case "users_active_email_idx":
		return &domain.DuplicateError{Field: domain.FieldEmail}
	}

	return err
}
