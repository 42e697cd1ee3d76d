package mask

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	m := New(20, 10)
	fillRect(m, image.Rect(1, 2, 4, 8), 1)
	fillRect(m, image.Rect(6, 0, 7, 1), 2)
	// An L-shaped instance: the box must cover both arms.
	fillRect(m, image.Rect(10, 1, 11, 9), 3)
	fillRect(m, image.Rect(10, 8, 15, 9), 3)

	boxes := Decode(m, []uint32{1, 2, 3})
	require.Len(t, boxes, 3)
	assert.Equal(t, Box{ID: 1, X1: 1, Y1: 2, X2: 3, Y2: 7}, boxes[0])
	assert.Equal(t, Box{ID: 2, X1: 6, Y1: 0, X2: 6, Y2: 0}, boxes[1])
	assert.Equal(t, Box{ID: 3, X1: 10, Y1: 1, X2: 14, Y2: 8}, boxes[2])
}

func TestDecode_EmissionOrderAndMissingIDs(t *testing.T) {
	m := New(10, 10)
	fillRect(m, image.Rect(0, 0, 2, 2), 1)
	fillRect(m, image.Rect(5, 5, 6, 6), 3)

	// ID 2 never reached the final mask; ID 9 was not requested but is present.
	m.Set(9, 9, 9)
	boxes := Decode(m, []uint32{3, 2, 1})
	require.Len(t, boxes, 2)
	assert.Equal(t, uint32(3), boxes[0].ID)
	assert.Equal(t, uint32(1), boxes[1].ID)
}

func TestDecode_WideIDs(t *testing.T) {
	m := New(3, 1)
	m.Set(0, 0, 70000)
	m.Set(2, 0, 70001)

	boxes := Decode(m, []uint32{70000, 70001})
	require.Len(t, boxes, 2)
	assert.Equal(t, 0, boxes[0].X1)
	assert.Equal(t, 2, boxes[1].X1)
}

func TestBox_FlipY(t *testing.T) {
	b := Box{ID: 1, X1: 2, Y1: 3, X2: 5, Y2: 8}
	f := b.FlipY(32)
	assert.Equal(t, Box{ID: 1, X1: 2, Y1: 24, X2: 5, Y2: 29}, f)
	assert.LessOrEqual(t, f.Y1, f.Y2)
}
