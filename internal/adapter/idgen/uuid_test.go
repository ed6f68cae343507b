package idgen_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpfregistry/internal/adapter/idgen"
	"cpfregistry/internal/core/domain"
)

func TestUUIDGenerator(t *testing.T) {
	gen := idgen.NewUUIDGenerator()
	validator := domain.DefaultValidator()
	seen := make(map[string]struct{}, 1000)

	for i := 0; i < 1000; i++ {
		id := gen.Generate()

		require.NoError(t, validator.ValidateID(id))

		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())

		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
