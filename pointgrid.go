package spatialgrid

import (
	"iter"

	"github.com/kelindar/spatialgrid/geom"
	"github.com/kelindar/spatialgrid/internal/arena"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PointHit is a single (handle, cached position) result from a PointGrid
// query. The position may be stale with respect to an in-flight Maintain.
type PointHit struct {
	Handle Handle
	Pos    geom.Vec2
}

// PointGrid is a point-based spatial partitioning structure over a generic
// CellStorage. Unlike AABBGrid/ShapeGrid, it supports lazy position
// updates and removals: set_position/remove only flip a lifecycle tag and
// mark a cell dirty, deferring the actual cell-list surgery to Maintain
// (spec.md §4.2, §5 "eventually consistent with the next maintain").
type PointGrid[O any, Idx comparable] struct {
	storage    Storage[pointCell, Idx]
	objects    *arena.Arena[pointRecord[O, Idx]]
	toRelocate []cellPointEntry
	cfg        *Config
}

// NewPointGrid constructs a PointGrid backed by Sparse cell storage, the
// default variant (spec.md §4.1 "Why two variants": wins on clustered or
// unbounded populations). cellSize must be strictly positive.
func NewPointGrid[O any](cellSize int32, opts ...Option) (*PointGrid[O, SparseIdx], error) {
	if cellSize <= 0 {
		return nil, errors.WithStack(ErrCellSizeInvalid)
	}
	cfg := newConfig(opts)
	storage := NewSparseStorage[pointCell](cellSize, func() *pointCell { return &pointCell{} })
	storage.SetLogger(cfg.logger)
	return &PointGrid[O, SparseIdx]{storage: storage, objects: arena.New[pointRecord[O, SparseIdx]](), cfg: cfg}, nil
}

// NewPointGridDense constructs a PointGrid backed by Dense cell storage
// (spec.md §4.1 "Why two variants": wins on uniformly populated bounded
// regions). cellSize must be strictly positive.
func NewPointGridDense[O any](cellSize int32, opts ...Option) (*PointGrid[O, int], error) {
	if cellSize <= 0 {
		return nil, errors.WithStack(ErrCellSizeInvalid)
	}
	cfg := newConfig(opts)

	var storage *DenseStorage[pointCell]
	factory := func() *pointCell { return &pointCell{} }
	if cfg.hasDenseBounds {
		storage = NewDenseStorageRect[pointCell](cellSize, cfg.denseOrigin, cfg.denseExtent, factory)
	} else {
		storage = NewDenseStorage[pointCell](cellSize, factory)
	}
	storage.SetLogger(cfg.logger)
	return &PointGrid[O, int]{storage: storage, objects: arena.New[pointRecord[O, int]](), cfg: cfg}, nil
}

func (g *PointGrid[O, Idx]) cellMut(pos geom.Vec2) (Idx, *pointCell) {
	return g.storage.CellMut(pos, func() {
		g.objects.MutateAll(func(_ Handle, rec *pointRecord[O, Idx]) {
			rec.cellID = g.storage.CellID(rec.pos)
		})
	})
}

// Insert allocates a new object at pos and returns its stable handle.
// Fails with ErrPositionInvalid if pos has a non-finite component.
func (g *PointGrid[O, Idx]) Insert(pos geom.Vec2, payload O) (Handle, error) {
	if !pos.Finite() {
		return Handle{}, errors.WithStack(ErrPositionInvalid)
	}

	cellID, cell := g.cellMut(pos)
	h := g.objects.Insert(pointRecord[O, Idx]{obj: payload, pos: pos, cellID: cellID, state: stateUnchanged})
	cell.objs = append(cell.objs, cellPointEntry{handle: h, pos: pos})
	return h, nil
}

// SetPosition lazily repositions the object referenced by h. The change is
// not reflected in cell lists (and therefore in queries) until Maintain
// runs. A no-op on a handle already marked Removed (spec.md §9 Open
// Questions: source treats this as a no-op, not an error).
func (g *PointGrid[O, Idx]) SetPosition(h Handle, pos geom.Vec2) error {
	rec := g.objects.GetMut(h)
	if rec == nil {
		return errors.WithStack(ErrHandleInvalid)
	}
	if !pos.Finite() {
		return errors.WithStack(ErrPositionInvalid)
	}

	oldCellID := rec.cellID
	if rec.state != stateRemoved {
		targetID := g.storage.CellID(pos)
		if targetID == rec.cellID {
			rec.state = stateNewPos
		} else {
			rec.state = stateRelocate
			rec.cellID = targetID
		}
		rec.pos = pos
	}

	g.storage.CellMutUnchecked(oldCellID).dirty = true
	return nil
}

// Remove lazily marks the object referenced by h for deletion. It remains
// visible to Len/Handles/Objects (and query results may still include it)
// until Maintain runs.
func (g *PointGrid[O, Idx]) Remove(h Handle) error {
	rec := g.objects.GetMut(h)
	if rec == nil {
		return errors.WithStack(ErrHandleInvalid)
	}
	rec.state = stateRemoved
	g.storage.CellMutUnchecked(rec.cellID).dirty = true
	return nil
}

// Maintain reconciles cell lists with authoritative object state in one
// linear sweep: NewPos entries are refreshed, Relocate entries move cells,
// Removed entries free their slot, and (for Sparse storage) any cell left
// empty is evicted. Complexity O(D + R): dirty-cell entries plus
// relocations (spec.md §4.2).
func (g *PointGrid[O, Idx]) Maintain() {
	g.toRelocate = g.toRelocate[:0]

	g.storage.Modify(func(cell *pointCell) bool {
		if !cell.dirty {
			return len(cell.objs) == 0
		}
		return maintainPointCell(cell, g.objects, &g.toRelocate)
	})

	if n := len(g.toRelocate); n > 0 {
		g.cfg.logger.Debug("point grid maintain relocating", zap.Int("count", n))
	}

	for _, e := range g.toRelocate {
		_, cell := g.cellMut(e.pos)
		cell.objs = append(cell.objs, e)
	}
	g.toRelocate = g.toRelocate[:0]
}

// Get returns the position and payload for h, or ok=false if h is dead.
func (g *PointGrid[O, Idx]) Get(h Handle) (pos geom.Vec2, payload O, ok bool) {
	rec, found := g.objects.Get(h)
	if !found {
		return geom.Vec2{}, payload, false
	}
	return rec.pos, rec.obj, true
}

// GetMut returns a mutable pointer to the payload for h, or nil if h is
// dead. Position cannot be mutated through this pointer: use SetPosition
// so the grid can track the pending cell move.
func (g *PointGrid[O, Idx]) GetMut(h Handle) *O {
	rec := g.objects.GetMut(h)
	if rec == nil {
		return nil
	}
	return &rec.obj
}

// Handles iterates every live handle.
func (g *PointGrid[O, Idx]) Handles() iter.Seq[Handle] {
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
func (g *PointGrid[O, Idx]) Objects() iter.Seq[O] {
	return func(yield func(O) bool) {
		stop := false
		g.objects.Values(func(v pointRecord[O, Idx]) {
			if stop {
				return
			}
			if !yield(v.obj) {
				stop = true
			}
		})
	}
}

// QueryRaw iterates every object in every cell whose coordinate lies in
// the inclusive rectangle [CellID(ll)..CellID(ur)]. Callers must supply
// ll <= ur component-wise; results include false positives inside cells
// but outside the rectangle, and are not deduplicated (a point object
// lives in exactly one cell).
func (g *PointGrid[O, Idx]) QueryRaw(ll, ur geom.Vec2) iter.Seq[PointHit] {
	llID := g.storage.CellID(ll)
	urID := g.storage.CellID(ur)

	return func(yield func(PointHit) bool) {
		for id := range g.storage.CellRange(llID, urID) {
			cell, ok := g.storage.Cell(id)
			if !ok {
				continue
			}
			for _, e := range cell.objs {
				if !yield(PointHit{Handle: e.handle, Pos: e.pos}) {
					return
				}
			}
		}
	}
}

// QueryAABB normalizes the two corners and returns every object whose
// current position lies inside the resulting rectangle, inclusive.
func (g *PointGrid[O, Idx]) QueryAABB(a, b geom.Vec2) iter.Seq[PointHit] {
	ll := geom.Pt(min32(a.X, b.X), min32(a.Y, b.Y))
	ur := geom.Pt(max32(a.X, b.X), max32(a.Y, b.Y))

	return func(yield func(PointHit) bool) {
		for hit := range g.QueryRaw(ll, ur) {
			if hit.Pos.X >= ll.X && hit.Pos.X <= ur.X && hit.Pos.Y >= ll.Y && hit.Pos.Y <= ur.Y {
				if !yield(hit) {
					return
				}
			}
		}
	}
}

// QueryAround returns every object whose squared distance to center is
// strictly less than radius² (spec.md §9 Open Questions: strict `<` at
// the boundary, matching the source).
func (g *PointGrid[O, Idx]) QueryAround(center geom.Vec2, radius float32) iter.Seq[PointHit] {
	ll := geom.Pt(center.X-radius, center.Y-radius)
	ur := geom.Pt(center.X+radius, center.Y+radius)
	radius2 := radius * radius

	return func(yield func(PointHit) bool) {
		for hit := range g.QueryRaw(ll, ur) {
			dx := hit.Pos.X - center.X
			dy := hit.Pos.Y - center.Y
			if dx*dx+dy*dy < radius2 {
				if !yield(hit) {
					return
				}
			}
		}
	}
}

// GetCell iterates the entries of the single cell covering pos.
func (g *PointGrid[O, Idx]) GetCell(pos geom.Vec2) iter.Seq[PointHit] {
	id := g.storage.CellID(pos)
	return func(yield func(PointHit) bool) {
		cell, ok := g.storage.Cell(id)
		if !ok {
			return
		}
		for _, e := range cell.objs {
			if !yield(PointHit{Handle: e.handle, Pos: e.pos}) {
				return
			}
		}
	}
}

// Len returns the number of objects currently tracked, including
// removals not yet confirmed by Maintain.
func (g *PointGrid[O, Idx]) Len() int { return g.objects.Len() }

// IsEmpty reports whether the grid holds no objects (removals not yet
// confirmed by Maintain still count).
func (g *PointGrid[O, Idx]) IsEmpty() bool { return g.objects.Len() == 0 }

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
