package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"cpfregistry/internal/core/domain"
)

// UserColumns is the column order ScanUser expects.
var UserColumns = []string{"id", "name", "email", "cpf", "created_at", "updated_at"}

type RowScanner interface {
	Scan(dest ...any) error
}

// ScanUser reads one row selected with UserColumns and rebuilds the user through the validator.
func ScanUser(row RowScanner) (domain.User, error) {
	var (
		params    domain.UserParams
		updatedAt sql.NullString
	)

	err := row.Scan(
		&params.ID,
		&params.Name,
		&params.Email,
		&params.Cpf,
		&params.DateCreation,
		&updatedAt,
	)

	if err != nil {
		return domain.User{}, err
	}

	if updatedAt.Valid {
		params.DateEdition = updatedAt.String
	}

	return domain.NewUser(params)
}

// ScanUsers drains rows into users. The caller closes rows.
func ScanUsers(rows *sql.Rows) ([]domain.User, error) {
	users := []domain.User{}

	for rows.Next() {
		user, err := ScanUser(rows)

		if err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// TranslateError maps unique index violations on cpf/email to duplicate errors.
func TranslateError(err error) error {
	var sqliteErr sqlite3.Error

	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}

	message := sqliteErr.Error()

	switch {
	case strings.Contains(message, "users.cpf"):
		return &domain.DuplicateError{Field: domain.FieldCpf}
	case strings.Contains(message, "users.email"):
		return &domain.DuplicateError{Field: domain.FieldEmail}
	}

	return err
}
