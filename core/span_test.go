package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRange(t *testing.T) {
	r := NewRange(3, 8)
	assert.Equal(t, 5, r.Len())
	assert.True(t, r.Contains(3))
	assert.False(t, r.Contains(8))
	assert.True(t, r.ContainsRange(Range{4, 8}))
	assert.Equal(t, Range{5, 8}, r.Intersect(Range{5, 12}))
	assert.True(t, r.Intersect(Range{10, 12}).IsEmpty())
	assert.Equal(t, Range{0, 5}, r.Shift(-3))
	assert.Equal(t, "[3…8)", r.String())
	assert.Panics(t, func() { NewRange(4, 2) })
}
