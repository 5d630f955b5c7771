package rangeshape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeSizeOne(t *testing.T) {
	assert.True(t, NewRange(0, 1, 1).SizeOne())
	assert.False(t, NewRange(0, 1, 2).SizeOne())
}

func TestRangeEq(t *testing.T) {
	assert.True(t, NewRange(0, 2, 5).Eq(NewRange(0, 2, 5)))
	assert.False(t, NewRange(0, 2, 5).Eq(NewRange(1, 2, 5)))
}

func TestRangeAt(t *testing.T) {
	r := NewRange(3, 2, 5)
	assert.Equal(t, int64(3), r.At(0))
	assert.Equal(t, int64(11), r.At(4))
}

func TestRangeStepMustBePositive(t *testing.T) {
	assert.Panics(t, func() { NewRange(0, 0, 1) })
	assert.Panics(t, func() { NewRange(0, -1, 1) })
}

func TestShapeRankAndSize(t *testing.T) {
	s := NewShape(NewRange(0, 1, 10), NewRange(0, 1, 20))
	assert.Equal(t, 2, s.Rank())
	assert.Equal(t, uint64(200), s.Size())
	assert.Equal(t, []uint64{10, 20}, s.Dimensions())
}

func TestShapeEq(t *testing.T) {
	a := NewShape(NewRange(0, 1, 10))
	b := NewShape(NewRange(0, 1, 10))
	c := NewShape(NewRange(0, 1, 11))
	assert.True(t, a.Eq(b))
	assert.False(t, a.Eq(c))
}

func TestShapeLessIsATotalOrderGroupingEqualShapes(t *testing.T) {
	shapes := []Shape{
		NewShape(NewRange(0, 1, 10)),
		NewShape(NewRange(0, 1, 5)),
		NewShape(NewRange(0, 1, 10)),
		NewShape(NewRange(1, 1, 10)),
	}
	// Equal shapes (index 0 and 2) must compare neither-less-than-the-other.
	assert.False(t, shapes[0].Less(shapes[2]))
	assert.False(t, shapes[2].Less(shapes[0]))
	assert.True(t, shapes[1].Less(shapes[0]))
}

func TestBroadcastRanges(t *testing.T) {
	a := NewRange(0, 1, 1)
	b := NewRange(5, 2, 7)
	out, ok := BroadcastRanges(a, b)
	assert.True(t, ok)
	assert.True(t, out.Eq(b))

	_, ok = BroadcastRanges(NewRange(0, 1, 3), NewRange(0, 1, 4))
	assert.False(t, ok)
}
