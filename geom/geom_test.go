package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAABBValid(t *testing.T) {
	assert.True(t, NewAABB(Pt(0, 0), Pt(1, 1)).Valid())
	assert.True(t, AABB{LL: Pt(0, 0), UR: Pt(0, 0)}.Valid())
	assert.False(t, AABB{LL: Pt(1, 0), UR: Pt(0, 0)}.Valid())
}

func TestAABBIntersectsAABB(t *testing.T) {
	a := NewAABB(Pt(0, 0), Pt(10, 10))
	b := NewAABB(Pt(5, 5), Pt(15, 15))
	c := NewAABB(Pt(20, 20), Pt(30, 30))

	assert.True(t, a.IntersectsAABB(b))
	assert.False(t, a.IntersectsAABB(c))
}

func TestVec2Finite(t *testing.T) {
	assert.True(t, Pt(1, 2).Finite())
	assert.False(t, Pt(float32(posInf()), 0).Finite())
	assert.False(t, Pt(0, float32(nan())).Finite())
}

func TestCircleRectangle(t *testing.T) {
	// From spec scenario 7: circle at (15,15) r=6, cell_size=10.
	c := Circle{Center: Pt(15, 15), Radius: 6}

	cellZero := NewAABB(Pt(0, 0), Pt(10, 10))
	assert.False(t, c.Intersects(cellZero), "circle must not touch cell (0,0)")

	queryNear := Circle{Center: Pt(5, 5), Radius: 6}
	queryFar := Circle{Center: Pt(5, 5), Radius: 10}

	assert.False(t, queryNear.Intersects(c))
	assert.True(t, queryFar.Intersects(c))
}

func TestCircleCircle(t *testing.T) {
	a := Circle{Center: Pt(0, 0), Radius: 1}
	b := Circle{Center: Pt(1.5, 0), Radius: 1}
	d := Circle{Center: Pt(10, 0), Radius: 1}

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(d))
}

func TestSegmentSegment(t *testing.T) {
	a := Segment{Src: Pt(0, 0), Dst: Pt(10, 10)}
	b := Segment{Src: Pt(0, 10), Dst: Pt(10, 0)}
	c := Segment{Src: Pt(20, 20), Dst: Pt(30, 30)}

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(c))
}

func TestSegmentRectangle(t *testing.T) {
	s := Segment{Src: Pt(-5, 5), Dst: Pt(15, 5)}
	box := NewAABB(Pt(0, 0), Pt(10, 10))
	outside := NewAABB(Pt(100, 100), Pt(110, 110))

	assert.True(t, s.Intersects(box))
	assert.False(t, s.Intersects(outside))
}

func TestSegmentCircle(t *testing.T) {
	s := Segment{Src: Pt(0, 0), Dst: Pt(10, 0)}
	near := Circle{Center: Pt(5, 0.5), Radius: 1}
	far := Circle{Center: Pt(5, 10), Radius: 1}

	assert.True(t, s.Intersects(near))
	assert.False(t, s.Intersects(far))
}

func TestPointRectangle(t *testing.T) {
	box := NewAABB(Pt(0, 0), Pt(10, 10))
	assert.True(t, Pt(5, 5).Intersects(box))
	assert.False(t, Pt(50, 50).Intersects(box))
}

func posInf() float64 { v := 1e308; return v * 10 }
func nan() float64     { v := 0.0; return v / v }
