package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointIndex_WithinRadius(t *testing.T) {
	idx := NewPointIndex[string]()
	idx.Insert(0, 0, "origin")
	idx.Insert(5, 0, "near")
	idx.Insert(1000, 0, "far")

	var got []string
	idx.WithinRadius(0, 0, 10, func(px, py float64, data string) {
		got = append(got, data)
	})

	assert.ElementsMatch(t, []string{"origin", "near"}, got)
}

func TestPointIndex_Nearest(t *testing.T) {
	idx := NewPointIndex[string]()
	idx.Insert(0, 0, "a")
	idx.Insert(10, 0, "b")
	idx.Insert(20, 0, "c")
	idx.Insert(30, 0, "d")

	res := idx.Nearest(0, 0, 2)
	assert.Len(t, res, 2)
	assert.Equal(t, "a", res[0].Data)
	assert.Equal(t, "b", res[1].Data)
}

func TestPointIndex_Nearest_EmptyIndex(t *testing.T) {
	idx := NewPointIndex[string]()
	assert.Nil(t, idx.Nearest(0, 0, 3))
}

func TestPointIndex_Nearest_FewerThanRequested(t *testing.T) {
	idx := NewPointIndex[int]()
	idx.Insert(0, 0, 1)
	res := idx.Nearest(0, 0, 5)
	assert.Len(t, res, 1)
}

func TestPointIndex_Len(t *testing.T) {
	idx := NewPointIndex[int]()
	assert.Equal(t, 0, idx.Len())
	idx.Insert(1, 1, 1)
	idx.Insert(2, 2, 2)
	assert.Equal(t, 2, idx.Len())
}
