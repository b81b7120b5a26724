package spatialgrid

import "github.com/kelindar/spatialgrid/geom"

// AABBGrid is a ShapeGrid specialized to axis-aligned bounding boxes, the
// simplest and most common shape flavor (spec.md §4.3 "AABBGrid is
// ShapeGrid<AABB>"). It exists as a named type mainly for call-site
// clarity; all behavior is ShapeGrid's.
type AABBGrid[O any, Idx comparable] = ShapeGrid[O, geom.AABB, Idx]

// AABBHit is a ShapeGrid query result specialized to AABB shapes.
type AABBHit[O any] = ShapeHit[O, geom.AABB]

// NewAABBGrid constructs an AABBGrid backed by Sparse cell storage.
// cellSize must be strictly positive.
func NewAABBGrid[O any](cellSize int32, opts ...Option) (*AABBGrid[O, SparseIdx], error) {
	return NewShapeGrid[O, geom.AABB](cellSize, opts...)
}

// NewAABBGridDense constructs an AABBGrid backed by Dense cell storage.
// cellSize must be strictly positive.
func NewAABBGridDense[O any](cellSize int32, opts ...Option) (*AABBGrid[O, int], error) {
	return NewShapeGridDense[O, geom.AABB](cellSize, opts...)
}
