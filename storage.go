package spatialgrid

import (
	"iter"
	"math"

	"github.com/kelindar/spatialgrid/geom"
)

// Storage abstracts indexed access to cells, parameterized by the cell
// payload type T and the index type Idx the concrete variant uses to name
// a cell (a linear int for Dense, a coordinate pair for Sparse). Dense and
// Sparse both implement it so PointGrid/ShapeGrid can be parameterized
// over either without duplicating the grid logic (spec.md §4.1).
type Storage[T any, Idx comparable] interface {
	// CellID is the pure projection from a world point to a cell index.
	CellID(pos geom.Vec2) Idx

	// Cell is a read-only lookup; a missing cell returns (nil, false).
	Cell(id Idx) (*T, bool)

	// CellMut returns the existing-or-new cell covering pos. onReindex is
	// invoked at most once, after storage has finished reassigning indices
	// (Dense growth); Sparse never invokes it.
	CellMut(pos geom.Vec2, onReindex func()) (Idx, *T)

	// CellMutUnchecked looks up a previously known cell. Undefined if id
	// is no longer valid for Dense; Sparse lazily inserts on miss.
	CellMutUnchecked(id Idx) *T

	// CellRange iterates, in row-major order, every cell index in the
	// inclusive rectangle [ll.x..ur.x] x [ll.y..ur.y].
	CellRange(ll, ur Idx) iter.Seq[Idx]

	// CellAABB is the world-space rectangle covered by cell id.
	CellAABB(id Idx) geom.AABB

	// Modify iterates mutably over every cell. f reports whether the cell
	// is now empty; Sparse evicts on true, Dense ignores the hint.
	Modify(f func(*T) bool)
}

// floorCell implements floor(v / cellSize) with floor-toward-negative-
// infinity semantics (spec.md §3), so negative world coordinates tile
// correctly instead of truncating toward zero.
func floorCell(v float32, cellSize int32) int32 {
	return int32(math.Floor(float64(v) / float64(cellSize)))
}
