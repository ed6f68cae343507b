package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	DateTimeLayout = "2006-01-02 15:04:05"

	NameMaxLength  = 100
	EmailMaxLength = 100
)

var (
	uuidRegex  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	nonDigit   = regexp.MustCompile(`\D`)
	defaultVal = NewUserValidator()
)

// UserValidator holds the field rules every User goes through before a value is accepted.
type UserValidator struct {
	validate *validator.Validate
}

func NewUserValidator() *UserValidator {
	return &UserValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// DefaultValidator returns the validator used by NewUser.
func DefaultValidator() *UserValidator {
	return defaultVal
}

func (v *UserValidator) ValidateID(id string) error {
	if !uuidRegex.MatchString(id) {
		return newValidationError(FieldID, "The user id is not valid")
	}

	return nil
}

func (v *UserValidator) ValidateName(name string) error {
	if name == "" {
		return newValidationError(FieldName, "The user name cannot be empty")
	}

	if utf8.RuneCountInString(name) > NameMaxLength {
		return newValidationError(FieldName, "The user name exceeds the max length")
	}

	return nil
}

func (v *UserValidator) ValidateEmail(email string) error {
	if email == "" {
		return newValidationError(FieldEmail, "The user email cannot be empty")
	}

	if utf8.RuneCountInString(email) > EmailMaxLength {
		return newValidationError(FieldEmail, "The user email exceeds the max length")
	}

	if err := v.validate.Var(email, "email"); err != nil {
		return newValidationError(FieldEmail, "The user email is not valid")
	}

	return nil
}

func (v *UserValidator) ValidateCpf(cpf string) error {
	trimmed := strings.TrimSpace(cpf)

	if trimmed == "" {
		return newValidationError(FieldCpf, "The user cpf cannot be empty")
	}

	if nonDigit.MatchString(trimmed) {
		return newValidationError(FieldCpf, "The user cpf is not valid")
	}

	digits := nonDigit.ReplaceAllString(trimmed, "")

	if len(digits) != cpfLength || !IsValidCpf(digits) {
		return newValidationError(FieldCpf, "The user cpf is not valid")
	}

	return nil
}

func (v *UserValidator) ValidateDateCreation(date string) error {
	if date == "" {
		return newValidationError(FieldDateCreation, "The user date creation cannot be empty")
	}

	if !isValidDateTime(date) {
		return newValidationError(FieldDateCreation, "The user date creation is not in a valid format")
	}

	return nil
}

func (v *UserValidator) ValidateDateEdition(date string) error {
	if date == "" {
		return newValidationError(FieldDateEdition, "The user date edition cannot be empty")
	}

	if !isValidDateTime(date) {
		return newValidationError(FieldDateEdition, "The user date edition is not in a valid format")
	}

	return nil
}

func isValidDateTime(date string) bool {
	parsed, err := time.Parse(DateTimeLayout, date)

	if err != nil {
		return false
	}

	return parsed.Format(DateTimeLayout) == date
}

// FormatDateTime renders t in the registry's timestamp layout, in UTC.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}

// ParseDateTime reads a timestamp in the registry's layout as UTC.
func ParseDateTime(date string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, date, time.UTC)
}
