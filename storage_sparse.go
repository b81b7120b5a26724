package spatialgrid

import (
	"iter"

	"github.com/kelindar/spatialgrid/geom"
	"go.uber.org/zap"
)

// SparseIdx names a cell in SparseStorage by its own coordinates; indices
// are never invalidated, so growth never requires an on_reindex upcall.
type SparseIdx struct {
	X, Y int32
}

// SparseStorage is a hash-indexed cell container: a cell is allocated on
// first mutable access (CellMut/CellMutUnchecked) and dropped only when a
// Modify callback reports it empty. A cell emptied any other way stays
// allocated until the next Modify. Wins on clustered or unbounded
// populations since it pays no padding cost (spec.md §4.1 "Why two
// variants").
type SparseStorage[T any] struct {
	cellSize int32
	cells    map[SparseIdx]*T
	factory  func() *T
	logger   *zap.Logger
}

// NewSparseStorage constructs empty Sparse cell storage with the given
// cell side length. cellSize must be strictly positive.
func NewSparseStorage[T any](cellSize int32, zero func() *T) *SparseStorage[T] {
	return &SparseStorage[T]{
		cellSize: cellSize,
		cells:    make(map[SparseIdx]*T),
		factory:  zero,
		logger:   zap.NewNop(),
	}
}

// SetLogger attaches a structured logger used to report cell eviction.
func (s *SparseStorage[T]) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
}

// CellSize returns the configured cell side length.
func (s *SparseStorage[T]) CellSize() int32 { return s.cellSize }

// CellID implements Storage.
func (s *SparseStorage[T]) CellID(pos geom.Vec2) SparseIdx {
	return SparseIdx{
		X: floorCell(pos.X, s.cellSize),
		Y: floorCell(pos.Y, s.cellSize),
	}
}

// Cell implements Storage.
func (s *SparseStorage[T]) Cell(id SparseIdx) (*T, bool) {
	c, ok := s.cells[id]
	return c, ok
}

// CellMut implements Storage. Sparse never invalidates an existing index,
// so onReindex is never invoked.
func (s *SparseStorage[T]) CellMut(pos geom.Vec2, _ func()) (SparseIdx, *T) {
	id := s.CellID(pos)
	return id, s.CellMutUnchecked(id)
}

// CellMutUnchecked implements Storage, lazily inserting a default cell on miss.
func (s *SparseStorage[T]) CellMutUnchecked(id SparseIdx) *T {
	c, ok := s.cells[id]
	if !ok {
		c = s.factory()
		s.cells[id] = c
	}
	return c
}

// CellRange implements Storage, iterating the inclusive rectangle row-major.
func (s *SparseStorage[T]) CellRange(ll, ur SparseIdx) iter.Seq[SparseIdx] {
	return func(yield func(SparseIdx) bool) {
		for y := ll.Y; y <= ur.Y; y++ {
			for x := ll.X; x <= ur.X; x++ {
				if !yield(SparseIdx{X: x, Y: y}) {
					return
				}
			}
		}
	}
}

// CellAABB implements Storage.
func (s *SparseStorage[T]) CellAABB(id SparseIdx) geom.AABB {
	ll := geom.Pt(float32(id.X*s.cellSize), float32(id.Y*s.cellSize))
	ur := geom.Pt(ll.X+float32(s.cellSize), ll.Y+float32(s.cellSize))
	return geom.AABB{LL: ll, UR: ur}
}

// Modify implements Storage: f's "empty" hint evicts the cell, keeping
// Sparse's footprint bounded to occupied cells (spec.md invariant I3/§8
// "Sparse storage contains no empty cell" after maintain).
func (s *SparseStorage[T]) Modify(f func(*T) bool) {
	for id, cell := range s.cells {
		if f(cell) {
			delete(s.cells, id)
			s.logger.Debug("sparse cell evicted", zap.Int32("x", id.X), zap.Int32("y", id.Y))
		}
	}
}

// Len reports the number of currently allocated (occupied) cells.
func (s *SparseStorage[T]) Len() int { return len(s.cells) }

// SparseSnapshot is the exported, gob-friendly encoding of a
// SparseStorage's contents (spec.md §6 Persistence Format: round-trip
// fidelity for storage extents). Keys and Values are parallel slices.
type SparseSnapshot[T any] struct {
	CellSize int32
	Keys     []SparseIdx
	Values   []T
}

// Export snapshots s.
func (s *SparseStorage[T]) Export() SparseSnapshot[T] {
	snap := SparseSnapshot[T]{
		CellSize: s.cellSize,
		Keys:     make([]SparseIdx, 0, len(s.cells)),
		Values:   make([]T, 0, len(s.cells)),
	}
	for id, cell := range s.cells {
		snap.Keys = append(snap.Keys, id)
		snap.Values = append(snap.Values, *cell)
	}
	return snap
}

// ImportSparse rebuilds SparseStorage from a SparseSnapshot produced by
// Export.
func ImportSparse[T any](snap SparseSnapshot[T], factory func() *T) *SparseStorage[T] {
	s := NewSparseStorage[T](snap.CellSize, factory)
	for i, id := range snap.Keys {
		v := snap.Values[i]
		s.cells[id] = &v
	}
	return s
}
