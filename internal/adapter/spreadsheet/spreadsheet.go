// Package spreadsheet turns CSV uploads into users and users back into CSV.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"cpfregistry/internal/core/domain"
)

var Header = []string{"name", "cpf", "email"}

var (
	ErrEmptyContent  = errors.New("The spreadsheet content is empty")
	ErrInvalidHeader = errors.New("The spreadsheet header must be name,cpf,email")
	ErrColumnCount   = errors.New("The spreadsheet line must have exactly 3 columns")
)

// Error locates a failure on a spreadsheet line. Line 1 is the header.
type Error struct {
	Line int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("Spreadsheet error: line %d | %s", e.Line, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func IsError(err error) bool {
	var spreadsheetErr *Error
	return errors.As(err, &spreadsheetErr)
}

// Builder stamps a new user from raw fields.
type Builder interface {
	Build(name, email, cpf string) (domain.User, error)
}

// Read parses every data line into a user. It stops at the first invalid line.
func Read(r io.Reader, builder Builder) ([]*domain.User, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()

	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyContent
	}

	if err != nil {
		return nil, &Error{Line: 1, Err: err}
	}

	if !isHeader(header) {
		return nil, &Error{Line: 1, Err: ErrInvalidHeader}
	}

	users := []*domain.User{}
	line := 1

	for {
		record, err := reader.Read()
		line++

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, &Error{Line: line, Err: err}
		}

		if len(record) != len(Header) {
			return nil, &Error{Line: line, Err: ErrColumnCount}
		}

		user, err := builder.Build(record[0], record[2], record[1])

		if err != nil {
			return nil, &Error{Line: line, Err: err}
		}

		users = append(users, &user)
	}

	if len(users) == 0 {
		return nil, ErrEmptyContent
	}

	return users, nil
}

// Write renders users under the standard header.
func Write(w io.Writer, users []domain.User) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return err
	}

	for _, user := range users {
		if err := writer.Write([]string{user.Name(), user.Cpf(), user.Email()}); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}

func Content(users []domain.User) (string, error) {
	var buf bytes.Buffer

	if err := Write(&buf, users); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func isHeader(record []string) bool {
	if len(record) != len(Header) {
		return false
	}

	for i, column := range record {
		column = strings.TrimPrefix(column, "\ufeff")

		if strings.TrimSpace(column) != Header[i] {
			return false
		}
	}

	return true
}
