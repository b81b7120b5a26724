package geom

// Intersector is the shape contract ShapeGrid refines against: a bounding
// box for cell fan-out, plus an exact pairwise test against whatever
// concrete shape the cell-level refinement or the final query hands it.
// Recognized built-in shape variants are AABB, Circle, Segment, and Vec2
// (a degenerate point); Intersects type-switches on the argument, mirroring
// the per-pair trait impls of the crate this package is grounded on.
type Intersector interface {
	Shape
	Intersects(other Shape) bool
}

// Circle is a disc defined by center and radius.
type Circle struct {
	Center Vec2
	Radius float32
}

// BBox returns the square bounding box of the circle.
func (c Circle) BBox() AABB {
	return AABB{
		LL: Vec2{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius},
		UR: Vec2{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius},
	}
}

// Intersects dispatches to the pairwise predicate for other's concrete type.
func (c Circle) Intersects(other Shape) bool {
	switch s := other.(type) {
	case AABB:
		return c.intersectsAABB(s)
	case Circle:
		return c.intersectsCircle(s)
	case Segment:
		return c.intersectsSegment(s)
	case Vec2:
		return c.intersectsPoint(s)
	default:
		return other.BBox().IntersectsAABB(c.BBox())
	}
}

// intersectsAABB: nearest-point-to-center squared-distance test, expanded
// via the two axis-padded rectangles to short-circuit the common cases.
func (c Circle) intersectsAABB(b AABB) bool {
	r1 := AABB{
		LL: Vec2{X: b.LL.X - c.Radius, Y: b.LL.Y},
		UR: Vec2{X: b.UR.X + c.Radius, Y: b.UR.Y},
	}
	r2 := AABB{
		LL: Vec2{X: b.LL.X, Y: b.LL.Y - c.Radius},
		UR: Vec2{X: b.UR.X, Y: b.UR.Y + c.Radius},
	}
	if r1.Contains(c.Center) || r2.Contains(c.Center) {
		return true
	}

	r3 := AABB{
		LL: Vec2{X: b.LL.X - c.Radius, Y: b.LL.Y - c.Radius},
		UR: Vec2{X: b.UR.X + c.Radius, Y: b.UR.Y + c.Radius},
	}
	if !r3.Contains(c.Center) {
		return false
	}

	ul := Vec2{X: b.LL.X - c.Center.X, Y: b.UR.Y - c.Center.Y}
	lr := Vec2{X: b.UR.X - c.Center.X, Y: b.LL.Y - c.Center.Y}
	ll := Vec2{X: b.LL.X - c.Center.X, Y: b.LL.Y - c.Center.Y}
	ur := Vec2{X: b.UR.X - c.Center.X, Y: b.UR.Y - c.Center.Y}

	r2v := c.Radius * c.Radius
	return ul.dot(ul) < r2v || lr.dot(lr) < r2v || ll.dot(ll) < r2v || ur.dot(ur) < r2v
}

// intersectsCircle: squared-distance vs sum-of-radii.
func (c Circle) intersectsCircle(o Circle) bool {
	v := c.Center.sub(o.Center)
	r := c.Radius + o.Radius
	return v.dot(v) < r*r
}

// intersectsSegment: closest-point-on-segment to center, squared distance.
func (c Circle) intersectsSegment(s Segment) bool {
	p := s.Project(c.Center)
	diff := p.sub(c.Center)
	return diff.dot(diff) < c.Radius*c.Radius
}

func (c Circle) intersectsPoint(p Vec2) bool {
	diff := c.Center.sub(p)
	return diff.dot(diff) < c.Radius*c.Radius
}

// Segment is a line segment from Src to Dst.
type Segment struct {
	Src, Dst Vec2
}

// BBox returns the segment's bounding rectangle.
func (s Segment) BBox() AABB { return NewAABB(s.Src, s.Dst) }

// Project returns the closest point on the segment to p.
func (s Segment) Project(p Vec2) Vec2 {
	diff := s.Dst.sub(s.Src)
	toP := p.sub(s.Src)
	fromDst := p.sub(s.Dst)

	proj1 := toP.dot(diff)
	proj2 := -fromDst.dot(diff)

	switch {
	case proj1 <= 0:
		return s.Src
	case proj2 <= 0:
		return s.Dst
	default:
		t := proj1 / diff.dot(diff)
		return Vec2{X: s.Src.X + diff.X*t, Y: s.Src.Y + diff.Y*t}
	}
}

// Intersects dispatches to the pairwise predicate for other's concrete type.
func (s Segment) Intersects(other Shape) bool {
	switch o := other.(type) {
	case AABB:
		return s.intersectsAABB(o)
	case Segment:
		return s.intersectsSegment(o)
	case Circle:
		return o.intersectsSegment(s)
	case Vec2:
		return false // a zero-width segment never contains an interior point
	default:
		return other.BBox().IntersectsAABB(s.BBox())
	}
}

// intersectsAABB: corner containment, else a 4-edge cross test.
func (s Segment) intersectsAABB(b AABB) bool {
	if b.Contains(s.Src) || b.Contains(s.Dst) {
		return true
	}
	for _, edge := range b.Segments() {
		if edge.intersectsSegment(s) {
			return true
		}
	}
	return false
}

func ccw(a, b, c Vec2) bool {
	return (c.Y-a.Y)*(b.X-a.X) > (b.Y-a.Y)*(c.X-a.X)
}

// intersectsSegment: counter-clockwise orientation test.
func (s Segment) intersectsSegment(o Segment) bool {
	return ccw(s.Src, o.Src, o.Dst) != ccw(s.Dst, o.Src, o.Dst) &&
		ccw(s.Src, s.Dst, o.Src) != ccw(s.Src, s.Dst, o.Dst)
}

// Intersects implements the point-rectangle predicate (containment) and
// degenerate point-vs-everything-else cases for Vec2 used as a shape.
func (v Vec2) Intersects(other Shape) bool {
	switch o := other.(type) {
	case AABB:
		return o.Contains(v)
	case Circle:
		return o.intersectsPoint(v)
	case Segment:
		return false
	case Vec2:
		return v == o
	default:
		return other.BBox().Contains(v)
	}
}

// Intersects implements the rectangle-X predicates for AABB against any
// recognized shape, delegating to the shape's own pairwise method where
// the geometry is easier to express from that side.
func (a AABB) Intersects(other Shape) bool {
	switch o := other.(type) {
	case AABB:
		return a.IntersectsAABB(o)
	case Circle:
		return o.intersectsAABB(a)
	case Segment:
		return o.intersectsAABB(a)
	case Vec2:
		return a.Contains(o)
	default:
		return a.IntersectsAABB(other.BBox())
	}
}
