package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator_Versions(t *testing.T) {
	t.Parallel()

	random, err := NewUUIDGenerator().NewID()
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), uuid.MustParse(random).Version())

	sortable, err := NewSortableGenerator().NewID()
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), uuid.MustParse(sortable).Version())

	var zero UUIDGenerator
	fallback, err := zero.NewID()
	require.NoError(t, err)
	assert.NotEmpty(t, fallback)
}

func TestSortableGenerator_IncreasesWithTime(t *testing.T) {
	t.Parallel()

	gen := NewSortableGenerator()
	prev := ""
	for range 50 {
		next, err := gen.NewID()
		require.NoError(t, err)
		assert.Greater(t, next, prev)
		prev = next
	}
}
