package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

type UUIDGenerator struct {
	newUUID func() (uuid.UUID, error)
}

// NewUUIDGenerator returns random (v4) UUIDs.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{newUUID: uuid.NewRandom}
}

// NewSortableGenerator returns v7 UUIDs, which sort by creation time. Job runs
// use it so the newest run is also the greatest ID.
func NewSortableGenerator() *UUIDGenerator {
	return &UUIDGenerator{newUUID: uuid.NewV7}
}

func (g *UUIDGenerator) NewID() (string, error) {
	gen := uuid.NewRandom
	if g != nil && g.newUUID != nil {
		gen = g.newUUID
	}
	value, err := gen()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return value.String(), nil
}
