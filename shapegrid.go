package spatialgrid

import (
	"bytes"
	"encoding/gob"
	"iter"

	"github.com/kelindar/spatialgrid/geom"
	"github.com/kelindar/spatialgrid/internal/arena"
	"github.com/pkg/errors"
)

// shapeRecord is the authoritative, handle-keyed state of a shape object:
// its payload and its current shape.
type shapeRecord[O any, S geom.Intersector] struct {
	obj   O
	shape S
}

type shapeRecordWire[O any, S geom.Intersector] struct {
	Obj   O
	Shape S
}

// GobEncode implements gob.GobEncoder.
func (r shapeRecord[O, S]) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	w := shapeRecordWire[O, S]{Obj: r.obj, Shape: r.shape}
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (r *shapeRecord[O, S]) GobDecode(data []byte) error {
	var w shapeRecordWire[O, S]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	r.obj, r.shape = w.Obj, w.Shape
	return nil
}

// ShapeGrid is an eager shape-based spatial partitioning structure: every
// mutation (insert, set_shape, remove) immediately updates cell
// membership, trading lazy-maintenance's O(1) updates for queries that
// never need a Maintain pass (spec.md §4.3, "Eager vs lazy").
//
// Best suited to mostly static objects with occasional shape/position
// changes; a shape spanning many cells makes every mutation touch all of
// them.
type ShapeGrid[O any, S geom.Intersector, Idx comparable] struct {
	storage Storage[shapeCell, Idx]
	objects *arena.Arena[shapeRecord[O, S]]
	cfg     *Config
}

// ShapeHit is a single query result from a ShapeGrid.
type ShapeHit[O any, S geom.Intersector] struct {
	Handle Handle
	Shape  S
	Object O
}

// NewShapeGrid constructs a ShapeGrid backed by Sparse cell storage, the
// default variant. cellSize must be strictly positive.
func NewShapeGrid[O any, S geom.Intersector](cellSize int32, opts ...Option) (*ShapeGrid[O, S, SparseIdx], error) {
	if cellSize <= 0 {
		return nil, errors.WithStack(ErrCellSizeInvalid)
	}
	cfg := newConfig(opts)
	storage := NewSparseStorage[shapeCell](cellSize, func() *shapeCell { return &shapeCell{} })
	storage.SetLogger(cfg.logger)
	return &ShapeGrid[O, S, SparseIdx]{storage: storage, objects: arena.New[shapeRecord[O, S]](), cfg: cfg}, nil
}

// NewShapeGridDense constructs a ShapeGrid backed by Dense cell storage.
// cellSize must be strictly positive.
func NewShapeGridDense[O any, S geom.Intersector](cellSize int32, opts ...Option) (*ShapeGrid[O, S, int], error) {
	if cellSize <= 0 {
		return nil, errors.WithStack(ErrCellSizeInvalid)
	}
	cfg := newConfig(opts)

	var storage *DenseStorage[shapeCell]
	factory := func() *shapeCell { return &shapeCell{} }
	if cfg.hasDenseBounds {
		storage = NewDenseStorageRect[shapeCell](cellSize, cfg.denseOrigin, cfg.denseExtent, factory)
	} else {
		storage = NewDenseStorage[shapeCell](cellSize, factory)
	}
	storage.SetLogger(cfg.logger)
	return &ShapeGrid[O, S, int]{storage: storage, objects: arena.New[shapeRecord[O, S]](), cfg: cfg}, nil
}

// cellsApply walks every cell whose AABB the shape actually intersects
// (not merely its bounding rectangle) and invokes f on it, passing
// whether the shape was confined to that single cell (spec.md §4.3
// "cells_apply").
func (g *ShapeGrid[O, S, Idx]) cellsApply(shape S, f func(cell *shapeCell, singleCell bool)) {
	bbox := shape.BBox()
	// Grow storage to cover both corners before taking either index: a
	// Dense regrow triggered by the second corner renumbers every cell.
	g.storage.CellMut(bbox.LL, g.onReindex)
	g.storage.CellMut(bbox.UR, g.onReindex)
	llID := g.storage.CellID(bbox.LL)
	urID := g.storage.CellID(bbox.UR)
	singleCell := llID == urID

	for id := range g.storage.CellRange(llID, urID) {
		if !shape.Intersects(g.storage.CellAABB(id)) {
			continue
		}
		f(g.storage.CellMutUnchecked(id), singleCell)
	}
}

func (g *ShapeGrid[O, S, Idx]) onReindex() {
	// Dense growth invalidates every previously-handed-out index; shape
	// cells hold no cached index of their own (unlike pointRecord), so
	// nothing needs rewriting here. Present for parity with PointGrid's
	// reindex hook and to document that invariant.
}

// validatable is implemented by shape types with an internal invariant
// worth checking at the grid boundary (geom.AABB's ll <= ur). Shapes
// that don't implement it (Circle, Segment) carry no such invariant.
type validatable interface {
	Valid() bool
}

func validateShape(shape any) error {
	if v, ok := shape.(validatable); ok && !v.Valid() {
		return errors.WithStack(ErrAABBInvalid)
	}
	return nil
}

// Insert adds shape with an associated payload and returns its stable
// handle. Fails with ErrAABBInvalid if S is geom.AABB and shape.ur < ll
// on any axis.
func (g *ShapeGrid[O, S, Idx]) Insert(shape S, payload O) (Handle, error) {
	if err := validateShape(shape); err != nil {
		return Handle{}, err
	}

	h := g.objects.Insert(shapeRecord[O, S]{obj: payload, shape: shape})
	g.cellsApply(shape, func(cell *shapeCell, singleCell bool) {
		cell.push(h, singleCell)
	})
	return h, nil
}

// SetShape eagerly moves the object referenced by h to a new shape,
// updating every cell it previously occupied and every cell it now
// occupies.
func (g *ShapeGrid[O, S, Idx]) SetShape(h Handle, shape S) error {
	if err := validateShape(shape); err != nil {
		return err
	}

	rec := g.objects.GetMut(h)
	if rec == nil {
		return errors.WithStack(ErrHandleInvalid)
	}

	old := rec.shape
	oldBBox, newBBox := old.BBox(), shape.BBox()
	g.storage.CellMut(newBBox.LL, g.onReindex)
	g.storage.CellMut(newBBox.UR, g.onReindex)
	oldLL, oldUR := g.storage.CellID(oldBBox.LL), g.storage.CellID(oldBBox.UR)
	newLL, newUR := g.storage.CellID(newBBox.LL), g.storage.CellID(newBBox.UR)

	rec.shape = shape
	if oldLL == newLL && oldUR == newUR {
		return nil
	}

	g.cellsApply(old, func(cell *shapeCell, _ bool) {
		cell.remove(h)
	})
	g.cellsApply(shape, func(cell *shapeCell, singleCell bool) {
		cell.push(h, singleCell)
	})
	return nil
}

// Remove eagerly evicts the object referenced by h from every cell it
// occupies and frees its handle.
func (g *ShapeGrid[O, S, Idx]) Remove(h Handle) error {
	rec, ok := g.objects.Get(h)
	if !ok {
		return errors.WithStack(ErrHandleInvalid)
	}
	g.cellsApply(rec.shape, func(cell *shapeCell, _ bool) {
		cell.remove(h)
	})
	g.objects.Remove(h)
	return nil
}

// Get returns the shape and payload for h, or ok=false if h is dead.
func (g *ShapeGrid[O, S, Idx]) Get(h Handle) (shape S, payload O, ok bool) {
	rec, found := g.objects.Get(h)
	if !found {
		return shape, payload, false
	}
	return rec.shape, rec.obj, true
}

// GetMut returns a mutable pointer to the payload for h, or nil if h is
// dead. The shape cannot be mutated through this pointer: use SetShape
// so cell membership stays consistent.
func (g *ShapeGrid[O, S, Idx]) GetMut(h Handle) *O {
	rec := g.objects.GetMut(h)
	if rec == nil {
		return nil
	}
	return &rec.obj
}

// Handles iterates every live handle.
func (g *ShapeGrid[O, S, Idx]) Handles() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		stop := false
		g.objects.Handles(func(h Handle) {
			if stop {
				return
			}
			if !yield(h) {
				stop = true
			}
		})
	}
}

// Objects iterates every live payload.
func (g *ShapeGrid[O, S, Idx]) Objects() iter.Seq[O] {
	return func(yield func(O) bool) {
		stop := false
		g.objects.Values(func(v shapeRecord[O, S]) {
			if stop {
				return
			}
			if !yield(v.obj) {
				stop = true
			}
		})
	}
}

// QueryBroad returns every handle in a cell the query shape's bounding
// box touches, without checking that the query shape actually intersects
// the stored shape — only that their cells overlap (spec.md §4.3
// "query_broad"). Results are deduplicated across cells unless the query
// shape fit in a single cell.
func (g *ShapeGrid[O, S, Idx]) QueryBroad(query geom.Intersector) iter.Seq[Handle] {
	bbox := query.BBox()
	llID := g.storage.CellID(bbox.LL)
	urID := g.storage.CellID(bbox.UR)
	singleCell := llID == urID

	return func(yield func(Handle) bool) {
		var seen map[Handle]struct{}
		if !singleCell {
			seen = make(map[Handle]struct{}, 5)
		}

		for id := range g.storage.CellRange(llID, urID) {
			cell, ok := g.storage.Cell(id)
			if !ok {
				continue
			}
			if !query.Intersects(g.storage.CellAABB(id)) {
				continue
			}
			for _, e := range cell.objs {
				if !e.singleCell && seen != nil {
					if _, dup := seen[e.handle]; dup {
						continue
					}
					seen[e.handle] = struct{}{}
				}
				if !yield(e.handle) {
					return
				}
			}
		}
	}
}

// Query returns every object whose shape actually intersects query,
// refining QueryBroad's cell-level candidates with a precise geometric
// test (spec.md §4.3 "query").
func (g *ShapeGrid[O, S, Idx]) Query(query geom.Intersector) iter.Seq[ShapeHit[O, S]] {
	return func(yield func(ShapeHit[O, S]) bool) {
		for h := range g.QueryBroad(query) {
			rec, ok := g.objects.Get(h)
			if !ok {
				continue
			}
			if !query.Intersects(rec.shape) {
				continue
			}
			if !yield(ShapeHit[O, S]{Handle: h, Shape: rec.shape, Object: rec.obj}) {
				return
			}
		}
	}
}

// QueryAround is shorthand for Query with a circle of the given radius
// centered at pos (spec.md §4.3 "query_around").
func (g *ShapeGrid[O, S, Idx]) QueryAround(center geom.Vec2, radius float32) iter.Seq[ShapeHit[O, S]] {
	return g.Query(geom.Circle{Center: center, Radius: radius})
}

// QueryBroadVisitor is the push-style counterpart to QueryBroad: it calls
// visitor once per handle found in a cell the query shape's bounding box
// touches, without allocating a dedup set for single-cell queries
// (spec.md §4.3 "query_broad_visitor").
func (g *ShapeGrid[O, S, Idx]) QueryBroadVisitor(query geom.Intersector, visitor func(Handle)) {
	bbox := query.BBox()
	llID := g.storage.CellID(bbox.LL)
	urID := g.storage.CellID(bbox.UR)

	if llID == urID {
		cell, ok := g.storage.Cell(llID)
		if !ok {
			return
		}
		for _, e := range cell.objs {
			visitor(e.handle)
		}
		return
	}

	seen := make(map[Handle]struct{}, 5)
	for id := range g.storage.CellRange(llID, urID) {
		cell, ok := g.storage.Cell(id)
		if !ok {
			continue
		}
		if !query.Intersects(g.storage.CellAABB(id)) {
			continue
		}
		for _, e := range cell.objs {
			if e.singleCell {
				visitor(e.handle)
				continue
			}
			if _, dup := seen[e.handle]; dup {
				continue
			}
			seen[e.handle] = struct{}{}
			visitor(e.handle)
		}
	}
}

// QueryVisitor is the push-style counterpart to Query: it calls visitor
// once per object whose shape actually intersects query (spec.md §4.3
// "query_visitor").
func (g *ShapeGrid[O, S, Idx]) QueryVisitor(query geom.Intersector, visitor func(Handle, S, O)) {
	g.QueryBroadVisitor(query, func(h Handle) {
		rec, ok := g.objects.Get(h)
		if !ok {
			return
		}
		if !query.Intersects(rec.shape) {
			return
		}
		visitor(h, rec.shape, rec.obj)
	})
}

// Clear empties the grid, returning every (shape, payload) pair it held.
func (g *ShapeGrid[O, S, Idx]) Clear() []ShapeHit[O, S] {
	hits := make([]ShapeHit[O, S], 0, g.objects.Len())
	for h := range g.Handles() {
		rec, ok := g.objects.Get(h)
		if !ok {
			continue
		}
		hits = append(hits, ShapeHit[O, S]{Handle: h, Shape: rec.shape, Object: rec.obj})
	}

	g.storage.Modify(func(cell *shapeCell) bool {
		cell.objs = cell.objs[:0]
		return true
	})
	for _, hit := range hits {
		g.objects.Remove(hit.Handle)
	}
	return hits
}

// Len returns the number of objects currently tracked.
func (g *ShapeGrid[O, S, Idx]) Len() int { return g.objects.Len() }

// IsEmpty reports whether the grid holds no objects.
func (g *ShapeGrid[O, S, Idx]) IsEmpty() bool { return g.objects.Len() == 0 }
