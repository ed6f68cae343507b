package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpfregistry/internal/adapter/database/postgres/repository"
	"cpfregistry/internal/core/domain"
	"cpfregistry/internal/core/telemetry"
	"cpfregistry/pkg/test/factory"
)

var columns = []string{"id", "name", "email", "cpf", "created_at", "updated_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	user := factory.NewUser()

	t.Run("Successful user creation", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectExec("INSERT INTO users \\(id,name,email,cpf,created_at,updated_at\\)").
			WithArgs(user.ID(), user.Name(), user.Email(), user.Cpf(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := repository.NewUserRepository(mock, telemetry.NewNoOpProbe())

		require.NoError(t, repo.Create(ctx, user))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unique index violation on cpf", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID(), user.Name(), user.Email(), user.Cpf(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_active_cpf_idx"})

		repo := repository.NewUserRepository(mock, nil)
		err := repo.Create(ctx, user)

		var duplicate *domain.DuplicateError
		require.ErrorAs(t, err, &duplicate)
		assert.Equal(t, domain.FieldCpf, duplicate.Field)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_DuplicatePredicates(t *testing.T) {
	ctx := context.Background()

	t.Run("Cpf held by another active user", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery("SELECT EXISTS \\( SELECT 1 FROM users WHERE cpf = \\$1 (.+) id <> \\$2 \\)").
			WithArgs("52998224725", "own-id").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		repo := repository.NewUserRepository(mock, nil)
		taken, err := repo.IsCpfAlreadyCreated(ctx, "52998224725", "own-id")

		require.NoError(t, err)
		assert.True(t, taken)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Email without exclusion", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery("SELECT EXISTS \\( SELECT 1 FROM users WHERE email = \\$1 (.+)\\)").
			WithArgs("free@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		repo := repository.NewUserRepository(mock, nil)
		taken, err := repo.IsEmailAlreadyCreated(ctx, "free@example.com", "")

		require.NoError(t, err)
		assert.False(t, taken)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error", func(t *testing.T) {
		mock := newMock(t)
		dbErr := errors.New("connection reset")

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("some-id").
			WillReturnError(dbErr)

		repo := repository.NewUserRepository(mock, nil)
		_, err := repo.IsExistentID(ctx, "some-id")

		require.ErrorIs(t, err, dbErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC)
	editedAt := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("Returns active users", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery("SELECT id, name, email, cpf, created_at, updated_at FROM users WHERE deleted_at IS NULL ORDER BY seq ASC").
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow("3f1c2a4e-8d7b-4c1a-9e2f-0a1b2c3d4e5f", "Ana", "ana@example.com", "52998224725", createdAt, (*time.Time)(nil)).
				AddRow("7a9b8c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d", "Bia", "bia@example.com", "11144477735", createdAt, &editedAt))

		repo := repository.NewUserRepository(mock, nil)
		users, err := repo.FindAll(ctx)

		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "Ana", users[0].Name())

		_, edited := users[0].DateEdition()
		assert.False(t, edited)

		edition, edited := users[1].DateEdition()
		assert.True(t, edited)
		assert.True(t, edition.Equal(editedAt))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Returns an empty list", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery("SELECT (.+) FROM users").
			WillReturnRows(pgxmock.NewRows(columns))

		repo := repository.NewUserRepository(mock, nil)
		users, err := repo.FindAll(ctx)

		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	id := "3f1c2a4e-8d7b-4c1a-9e2f-0a1b2c3d4e5f"
	createdAt := time.Date(2023, 1, 10, 8, 30, 0, 0, time.UTC)

	t.Run("Returns the user with eligibility", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery("SELECT (.+) AS is_credit_eligible FROM users WHERE (.+) LIMIT 1").
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(append(columns, "is_credit_eligible")).
				AddRow(id, "Ana", "ana@example.com", "52998224725", createdAt, (*time.Time)(nil), true))

		repo := repository.NewUserRepository(mock, nil)
		details, err := repo.FindByID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, id, details.ID())
		assert.True(t, details.IsCreditEligible)
		assert.True(t, details.DateCreation().Equal(createdAt))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("The user was not found", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs(id).
			WillReturnError(pgx.ErrNoRows)

		repo := repository.NewUserRepository(mock, nil)
		_, err := repo.FindByID(ctx, id)

		assert.True(t, domain.IsNotFoundError(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Edit(t *testing.T) {
	ctx := context.Background()
	edit := domain.FieldEdit{
		ID:          "3f1c2a4e-8d7b-4c1a-9e2f-0a1b2c3d4e5f",
		Value:       "Renamed",
		DateEdition: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	t.Run("Successful name edit", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectExec("UPDATE users SET name = \\$1, updated_at = \\$2 WHERE (.+)id = \\$3").
			WithArgs(edit.Value, edit.DateEdition, edit.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := repository.NewUserRepository(mock, nil)

		require.NoError(t, repo.EditName(ctx, edit))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Email edit on an unknown id", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectExec("UPDATE users SET email = \\$1").
			WithArgs(edit.Value, edit.DateEdition, edit.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := repository.NewUserRepository(mock, nil)

		assert.True(t, domain.IsNotFoundError(repo.EditEmail(ctx, edit)))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Cpf edit racing another user", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectExec("UPDATE users SET cpf = \\$1").
			WithArgs(edit.Value, edit.DateEdition, edit.ID).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_active_cpf_idx"})

		repo := repository.NewUserRepository(mock, nil)

		assert.True(t, domain.IsDuplicateError(repo.EditCpf(ctx, edit)))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := context.Background()
	id := "3f1c2a4e-8d7b-4c1a-9e2f-0a1b2c3d4e5f"

	t.Run("Marks the row as deleted", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectExec("UPDATE users SET deleted_at = now\\(\\) AT TIME ZONE 'UTC' WHERE (.+)id = \\$1").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := repository.NewUserRepository(mock, nil)

		require.NoError(t, repo.Delete(ctx, id))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("The user was not found", func(t *testing.T) {
		mock := newMock(t)

		mock.ExpectExec("UPDATE users SET deleted_at").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := repository.NewUserRepository(mock, nil)

		assert.True(t, domain.IsNotFoundError(repo.Delete(ctx, id)))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
