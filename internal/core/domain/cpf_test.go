package domain

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var validCpfs = []string{
	"48472338088",
	"32016170085",
	"16742019077",
	"52998224725",
	"11144477735",
	"39053344705",
	"12345678909",
}

func TestIsValidCpf(t *testing.T) {
	t.Run("should accept checksum-correct cpfs", func(t *testing.T) {
		for _, cpf := range validCpfs {
			assert.True(t, IsValidCpf(cpf), cpf)
		}
	})

	t.Run("should reject a corrupted check digit", func(t *testing.T) {
		assert.False(t, IsValidCpf("48472338080"))
		assert.False(t, IsValidCpf("48472338098"))
	})

	t.Run("should reject every repeated-digit sequence", func(t *testing.T) {
		for d := 0; d <= 9; d++ {
			cpf := strings.Repeat(strconv.Itoa(d), 11)
			assert.False(t, IsValidCpf(cpf), cpf)
		}
	})

	t.Run("should reject wrong lengths", func(t *testing.T) {
		assert.False(t, IsValidCpf(""))
		assert.False(t, IsValidCpf("4847233808"))
		assert.False(t, IsValidCpf("484723380880"))
	})

	t.Run("should reject non digits", func(t *testing.T) {
		assert.False(t, IsValidCpf("484.723.380"))
		assert.False(t, IsValidCpf("4847233808a"))
	})

	t.Run("should reject nearly all single digit mutations", func(t *testing.T) {
		total, rejected := 0, 0

		for _, cpf := range validCpfs {
			for i := 0; i < len(cpf); i++ {
				for d := byte('0'); d <= '9'; d++ {
					if cpf[i] == d {
						continue
					}

					mutated := cpf[:i] + string(d) + cpf[i+1:]
					total++

					if !IsValidCpf(mutated) {
						rejected++
					}
				}
			}
		}

		assert.GreaterOrEqual(t, float64(rejected)/float64(total), 0.99)
	})
}
