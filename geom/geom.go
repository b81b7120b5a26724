// Package geom provides the 2-D vector, AABB, and shape contract consumed
// by the spatial grids, plus concrete rectangle/circle/segment/point
// implementations and their pairwise intersection predicates.
//
// The grids in the parent package never construct geometry themselves —
// they accept anything satisfying Shape and call BBox/Intersects on it —
// so this package is a default, concrete instantiation of that contract,
// not a dependency of the core grid algorithms.
package geom

import "math"

// Vec2 is a 2-D world-space point.
type Vec2 struct {
	X, Y float32
}

// Pt constructs a Vec2.
func Pt(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

// Finite reports whether both components are finite (not NaN or ±Inf).
func (v Vec2) Finite() bool {
	return !math.IsNaN(float64(v.X)) && !math.IsInf(float64(v.X), 0) &&
		!math.IsNaN(float64(v.Y)) && !math.IsInf(float64(v.Y), 0)
}

// BBox implements Shape: a point's bounding box is the degenerate
// rectangle at the point itself.
func (v Vec2) BBox() AABB { return AABB{LL: v, UR: v} }

func (v Vec2) sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) dot(o Vec2) float32 { return v.X*o.X + v.Y*o.Y }

// AABB is an axis-aligned bounding box, lower-left/upper-right inclusive.
type AABB struct {
	LL, UR Vec2
}

// NewAABB builds the AABB spanning p1 and p2, normalizing corner order.
func NewAABB(p1, p2 Vec2) AABB {
	return AABB{
		LL: Vec2{X: min32(p1.X, p2.X), Y: min32(p1.Y, p2.Y)},
		UR: Vec2{X: max32(p1.X, p2.X), Y: max32(p1.Y, p2.Y)},
	}
}

// Valid reports whether LL <= UR component-wise, the contract every
// accepted AABB must satisfy (spec.md §6).
func (a AABB) Valid() bool {
	return a.LL.X <= a.UR.X && a.LL.Y <= a.UR.Y
}

// Contains reports whether p lies within the closed rectangle a.
func (a AABB) Contains(p Vec2) bool {
	return p.X >= a.LL.X && p.Y >= a.LL.Y && p.X <= a.UR.X && p.Y <= a.UR.Y
}

// BBox implements Shape: an AABB is its own bounding box.
func (a AABB) BBox() AABB { return a }

// Segments returns the four edges of a, in counter-clockwise order
// starting at the lower-left corner.
func (a AABB) Segments() [4]Segment {
	ul := Vec2{X: a.LL.X, Y: a.UR.Y}
	lr := Vec2{X: a.UR.X, Y: a.LL.Y}
	return [4]Segment{
		{Src: a.LL, Dst: lr},
		{Src: lr, Dst: a.UR},
		{Src: a.UR, Dst: ul},
		{Src: ul, Dst: a.LL},
	}
}

// IntersectsAABB is the rectangle-rectangle predicate: min-sum axis test.
func (a AABB) IntersectsAABB(b AABB) bool {
	x := absf((a.LL.X+a.UR.X)-(b.LL.X+b.UR.X)) <= (a.UR.X - a.LL.X + b.UR.X - b.LL.X)
	y := absf((a.LL.Y+a.UR.Y)-(b.LL.Y+b.UR.Y)) <= (a.UR.Y - a.LL.Y + b.UR.Y - b.LL.Y)
	return x && y
}

// Shape is the contract the grids accept for stored and query geometry:
// a bounding box, consumed for cell fan-out, refined via a per-pair
// Intersects predicate supplied by the caller (see Intersector).
type Shape interface {
	BBox() AABB
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
