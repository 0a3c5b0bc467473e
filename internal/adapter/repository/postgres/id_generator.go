package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator issues lexicographically sortable job run identifiers.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a fresh ULID. Sorting job IDs sorts runs by start time.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
