package factory

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	fab "github.com/Goldziher/fabricator"
	"github.com/google/uuid"

	"cpfregistry/internal/core/domain"
)

var sequence atomic.Int64

// NewUserParams fabricates valid user fields. Overrides are keyed by UserParams field name.
func NewUserParams(overrides ...map[string]any) domain.UserParams {
	n := sequence.Add(1)

	data := map[string]any{
		"ID":           uuid.NewString(),
		"Name":         fmt.Sprintf("User %d", n),
		"Email":        fmt.Sprintf("user%d@example.com", n),
		"Cpf":          NewCpf(),
		"DateCreation": domain.FormatDateTime(time.Now()),
		"DateEdition":  "",
	}

	for _, override := range overrides {
		for key, value := range override {
			data[key] = value
		}
	}

	return fab.New(domain.UserParams{}).Build(data)
}

// NewUser fabricates a valid user and panics if the overrides make it invalid.
func NewUser(overrides ...map[string]any) domain.User {
	user, err := domain.NewUser(NewUserParams(overrides...))

	if err != nil {
		panic(err)
	}

	return user
}

// NewCpf returns a random cpf with valid check digits.
func NewCpf() string {
	for {
		digits := make([]int, 11)

		for i := 0; i < 9; i++ {
			digits[i] = rand.IntN(10)
		}

		digits[9] = checkDigit(digits[:9])
		digits[10] = checkDigit(digits[:10])

		cpf := make([]byte, 11)
		for i, d := range digits {
			cpf[i] = byte('0' + d)
		}

		if domain.IsValidCpf(string(cpf)) {
			return string(cpf)
		}
	}
}

func checkDigit(digits []int) int {
	sum := 0
	weight := len(digits) + 1

	for _, d := range digits {
		sum += d * weight
		weight--
	}

	return (sum * 10 % 11) % 10
}
