package domain

import (
	"strings"
	"time"
)

// UserParams carries raw field values, as read from a request, a spreadsheet row or a database row.
type UserParams struct {
	ID           string
	Name         string
	Email        string
	Cpf          string
	DateCreation string
	DateEdition  string
}

// User is a registry entry whose fields have all passed UserValidator.
// Only NewUser produces a complete User.
type User struct {
	id           string
	name         string
	email        string
	cpf          string
	dateCreation time.Time
	dateEdition  *time.Time
}

// NewUser validates every field and returns a complete User.
// DateEdition is optional; when present it must not precede DateCreation.
func NewUser(params UserParams) (User, error) {
	return DefaultValidator().NewUser(params)
}

func (v *UserValidator) NewUser(params UserParams) (User, error) {
	if err := v.ValidateID(params.ID); err != nil {
		return User{}, err
	}

	if err := v.ValidateName(params.Name); err != nil {
		return User{}, err
	}

	if err := v.ValidateEmail(params.Email); err != nil {
		return User{}, err
	}

	if err := v.ValidateCpf(params.Cpf); err != nil {
		return User{}, err
	}

	if err := v.ValidateDateCreation(params.DateCreation); err != nil {
		return User{}, err
	}

	created, _ := ParseDateTime(params.DateCreation)

	user := User{
		id:           params.ID,
		name:         params.Name,
		email:        params.Email,
		cpf:          strings.TrimSpace(params.Cpf),
		dateCreation: created,
	}

	if params.DateEdition == "" {
		return user, nil
	}

	if err := v.ValidateDateEdition(params.DateEdition); err != nil {
		return User{}, err
	}

	edited, _ := ParseDateTime(params.DateEdition)

	if edited.Before(created) {
		return User{}, newValidationError(FieldDateEdition, "The user date edition cannot precede the date creation")
	}

	user.dateEdition = &edited

	return user, nil
}

func (u User) ID() string              { return u.id }
func (u User) Name() string            { return u.name }
func (u User) Email() string           { return u.email }
func (u User) Cpf() string             { return u.cpf }
func (u User) DateCreation() time.Time { return u.dateCreation }

// DateEdition returns the last edition time and whether the user was ever edited.
func (u User) DateEdition() (time.Time, bool) {
	if u.dateEdition == nil {
		return time.Time{}, false
	}

	return *u.dateEdition, true
}

// IsComplete is false for a zero User built without NewUser.
func (u User) IsComplete() bool {
	return u.id != "" && u.name != "" && u.email != "" && u.cpf != "" && !u.dateCreation.IsZero()
}

func (u User) Params() UserParams {
	params := UserParams{
		ID:           u.id,
		Name:         u.name,
		Email:        u.email,
		Cpf:          u.cpf,
		DateCreation: FormatDateTime(u.dateCreation),
	}

	if u.dateEdition != nil {
		params.DateEdition = FormatDateTime(*u.dateEdition)
	}

	return params
}

// UserDetails is the single-record fetch result. IsCreditEligible is derived, never stored.
type UserDetails struct {
	User
	IsCreditEligible bool
}

// FieldEdit is a single-field update keyed by id, stamped with the edition time.
type FieldEdit struct {
	ID          string
	Value       string
	DateEdition time.Time
}
