package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDs_InOrder(t *testing.T) {
	ids := NewFixedIDs("a", "b")

	assert.Equal(t, 2, ids.Remaining())
	assert.Equal(t, "a", ids.Next())
	assert.Equal(t, "b", ids.Next())
	assert.Equal(t, 0, ids.Remaining())
}

func TestFixedIDs_ContinuesAfterList(t *testing.T) {
	ids := NewFixedIDs("r")

	assert.Equal(t, "r", ids.Next())
	assert.Equal(t, "r-1", ids.Next())
	assert.Equal(t, "r-2", ids.Next())
}

func TestFixedIDs_Empty(t *testing.T) {
	ids := NewFixedIDs()

	assert.Equal(t, "id-1", ids.Next())
	assert.Equal(t, "id-2", ids.Next())
	assert.Equal(t, "id-12", func() string {
		for i := 0; i < 9; i++ {
			ids.Next()
		}
		return ids.Next()
	}())
}
