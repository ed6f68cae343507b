package idgen

import (
	"github.com/google/uuid"

	"cpfregistry/internal/core/port"
)

// UUIDGenerator produces random (version 4) UUIDs in canonical hyphenated form.
type UUIDGenerator struct{}

var _ port.IDGenerator = UUIDGenerator{}

func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) Generate() string {
	return uuid.NewString()
}
