package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"

	"cpfregistry/internal/adapter/database/sqlite"
	"cpfregistry/internal/core/domain"
	"cpfregistry/internal/core/port"
	tel "cpfregistry/internal/core/telemetry"
)

const (
	usersTable = "users"
	entity     = "user"
)

// eligibleColumn flags rows created at least six months before the database clock.
const eligibleColumn = "CASE WHEN datetime(created_at) <= datetime('now', '-6 months') THEN 1 ELSE 0 END"

type UserRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *sqlite.DB, telemetry port.Telemetry) port.UserStore {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) error {
	return ur.observe(ctx, "Create", func(ctx context.Context) error {
		var updatedAt any

		if edition, ok := user.DateEdition(); ok {
			updatedAt = domain.FormatDateTime(edition)
		}

		tx, err := ur.db.BeginTx(ctx, nil)

		if err != nil {
			return err
		}

		defer tx.Rollback()

		stmt, args, err := ur.db.QueryBuilder.Insert(usersTable).
			Columns(sqlite.UserColumns...).
			Values(
				user.ID(),
				user.Name(),
				user.Email(),
				user.Cpf(),
				domain.FormatDateTime(user.DateCreation()),
				updatedAt,
			).
			ToSql()

		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			slog.Error("Error creating user", "error", err)
			return sqlite.TranslateError(err)
		}

		return tx.Commit()
	})
}

func (ur *UserRepository) IsCpfAlreadyCreated(ctx context.Context, cpf string, exceptID string) (bool, error) {
	return ur.existsActive(ctx, "IsCpfAlreadyCreated", sq.Eq{"cpf": cpf}, exceptID)
}

func (ur *UserRepository) IsEmailAlreadyCreated(ctx context.Context, email string, exceptID string) (bool, error) {
	return ur.existsActive(ctx, "IsEmailAlreadyCreated", sq.Eq{"email": email}, exceptID)
}

func (ur *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User

	err := ur.observe(ctx, "FindAll", func(ctx context.Context) error {
		query, args, err := ur.db.QueryBuilder.Select(sqlite.UserColumns...).
			From(usersTable).
			Where(sq.Eq{"deleted_at": nil}).
			OrderBy("rowid ASC").
			ToSql()

		if err != nil {
			return err
		}

		rows, err := ur.db.QueryContext(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		users, err = sqlite.ScanUsers(rows)

		return err
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
		query, args, err := ur.db.QueryBuilder.Select(append(append([]string{}, sqlite.UserColumns...), eligibleColumn)...).
			From(usersTable).
			Where(sq.Eq{"id": id, "deleted_at": nil}).
			Limit(1).
			ToSql()

		if err != nil {
			return err
		}

		row := ur.db.QueryRowContext(ctx, query, args...)

		var (
			params    domain.UserParams
			updatedAt sql.NullString
			eligible  int
		)

		err = row.Scan(
			&params.ID,
			&params.Name,
			&params.Email,
			&params.Cpf,
			&params.DateCreation,
			&updatedAt,
			&eligible,
		)

		if errors.Is(err, sql.ErrNoRows) {
			return &domain.NotFoundError{ID: id}
		}

		if err != nil {
			return err
		}

		if updatedAt.Valid {
			params.DateEdition = updatedAt.String
		}

		user, err := domain.NewUser(params)

		if err != nil {
			return err
		}

		details = domain.UserDetails{User: user, IsCreditEligible: eligible == 1}

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

// Delete marks the row as deleted; the row itself is kept.
func (ur *UserRepository) Delete(ctx context.Context, id string) error {
	return ur.observe(ctx, "Delete", func(ctx context.Context) error {
		stmt, args, err := ur.db.QueryBuilder.Update(usersTable).
			Set("deleted_at", sq.Expr("datetime('now')")).
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
		stmt, args, err := ur.db.QueryBuilder.Update(usersTable).
			Set(column, edit.Value).
			Set("updated_at", domain.FormatDateTime(edit.DateEdition)).
			Where(sq.Eq{"id": edit.ID, "deleted_at": nil}).
			ToSql()

		if err != nil {
			return err
		}

		return ur.execAffectingOne(ctx, edit.ID, stmt, args)
	})
}

func (ur *UserRepository) execAffectingOne(ctx context.Context, id, stmt string, args []any) error {
	result, err := ur.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		slog.Error("Error updating user", "id", id, "error", err)
		return sqlite.TranslateError(err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return &domain.NotFoundError{ID: id}
	}

	return nil
}

func (ur *UserRepository) existsActive(ctx context.Context, operation string, match sq.Eq, exceptID string) (bool, error) {
	var count int

	err := ur.observe(ctx, operation, func(ctx context.Context) error {
		query := ur.db.QueryBuilder.Select("COUNT(1)").
			From(usersTable).
			Where(match).
			Where(sq.Eq{"deleted_at": nil})

		if exceptID != "" {
			query = query.Where(sq.NotEq{"id": exceptID})
		}

		stmt, args, err := query.ToSql()

		if err != nil {
			return err
		}

		return ur.db.QueryRowContext(ctx, stmt, args...).Scan(&count)
	})

	return count > 0, err
}

func (ur *UserRepository) observe(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, operation, entity, []attribute.KeyValue{
		attribute.String("db.system", "sqlite"),
		attribute.String("db.table", usersTable),
	})
	defer span.End()

	op := tel.StartOperation(ctx, ur.telemetry, operation, entity)
	err := fn(ctx)
	op.End(err)

	return err
}
