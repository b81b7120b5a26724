package spatialgrid

import (
	"iter"

	"github.com/kelindar/spatialgrid/geom"
	"go.uber.org/zap"
)

// DenseStorage keeps cells in a contiguous, row-major slice over a growing
// rectangular envelope. Wins on uniformly populated bounded regions: no
// hashing, prefetch-friendly (spec.md §4.1 "Why two variants").
type DenseStorage[T any] struct {
	cellSize      int32
	startXCell    int32 // cell-coordinate of the envelope's lower-left corner
	startYCell    int32
	width, height int32 // envelope extent, in cells
	cells         []*T
	factory       func() *T
	logger        *zap.Logger
}

// NewDenseStorage constructs empty Dense cell storage; the envelope grows
// from the first insert (spec.md §4.1 Dense variant).
func NewDenseStorage[T any](cellSize int32, factory func() *T) *DenseStorage[T] {
	return &DenseStorage[T]{cellSize: cellSize, factory: factory, logger: zap.NewNop()}
}

// SetLogger attaches a structured logger used to report envelope regrows.
func (d *DenseStorage[T]) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d.logger = logger
}

// NewDenseStorageRect pre-sizes the envelope to originCells..originCells+extentCells,
// avoiding the reallocation cost of growing from a single cell (spec.md §6
// "initial_origin_cells, initial_extent_cells").
func NewDenseStorageRect[T any](cellSize int32, originCells [2]int32, extentCells [2]int32, factory func() *T) *DenseStorage[T] {
	d := &DenseStorage[T]{
		cellSize:   cellSize,
		startXCell: originCells[0],
		startYCell: originCells[1],
		width:      extentCells[0],
		height:     extentCells[1],
		factory:    factory,
		logger:     zap.NewNop(),
	}
	d.cells = make([]*T, d.width*d.height)
	for i := range d.cells {
		d.cells[i] = factory()
	}
	return d
}

// CellSize returns the configured cell side length.
func (d *DenseStorage[T]) CellSize() int32 { return d.cellSize }

// Extent returns the current envelope origin (in cells) and size (in cells).
func (d *DenseStorage[T]) Extent() (origin, size [2]int32) {
	return [2]int32{d.startXCell, d.startYCell}, [2]int32{d.width, d.height}
}

// CellID implements Storage. Positions outside the current envelope clamp
// to the nearest edge cell rather than growing — only CellMut grows the
// envelope, matching spec.md's "may enlarge the envelope" being scoped to
// cell_mut alone.
func (d *DenseStorage[T]) CellID(pos geom.Vec2) int {
	if d.width == 0 || d.height == 0 {
		return 0
	}
	relX := clamp32(floorCell(pos.X, d.cellSize)-d.startXCell, 0, d.width-1)
	relY := clamp32(floorCell(pos.Y, d.cellSize)-d.startYCell, 0, d.height-1)
	return int(relY*d.width + relX)
}

// Cell implements Storage.
func (d *DenseStorage[T]) Cell(id int) (*T, bool) {
	if id < 0 || id >= len(d.cells) {
		return nil, false
	}
	return d.cells[id], true
}

// CellMut implements Storage: grows the envelope by the minimum whole-cell
// padding needed to cover pos, rebuilding the backing slice and invoking
// onReindex exactly once if a reallocation happened.
func (d *DenseStorage[T]) CellMut(pos geom.Vec2, onReindex func()) (int, *T) {
	cx := floorCell(pos.X, d.cellSize)
	cy := floorCell(pos.Y, d.cellSize)

	if d.width == 0 || d.height == 0 {
		d.startXCell, d.startYCell = cx, cy
		d.width, d.height = 1, 1
		d.cells = []*T{d.factory()}
		return 0, d.cells[0]
	}

	oldWidth, oldHeight := d.width, d.height
	newStartX, newWidth := d.startXCell, d.width
	var padLeft, padDown int32

	switch {
	case cx < d.startXCell:
		padLeft = d.startXCell - cx
		newStartX -= padLeft
		newWidth += padLeft
	case cx >= d.startXCell+d.width:
		newWidth += cx - (d.startXCell + d.width) + 1
	}

	newStartY, newHeight := d.startYCell, d.height
	switch {
	case cy < d.startYCell:
		padDown = d.startYCell - cy
		newStartY -= padDown
		newHeight += padDown
	case cy >= d.startYCell+d.height:
		newHeight += cy - (d.startYCell + d.height) + 1
	}

	if newWidth != d.width || newHeight != d.height {
		newCells := make([]*T, newWidth*newHeight)
		for i := range newCells {
			newCells[i] = d.factory()
		}
		for y := int32(0); y < oldHeight; y++ {
			for x := int32(0); x < oldWidth; x++ {
				newCells[(y+padDown)*newWidth+(x+padLeft)] = d.cells[y*oldWidth+x]
			}
		}

		d.logger.Debug("dense storage envelope regrown",
			zap.Int32("old_width", oldWidth), zap.Int32("old_height", oldHeight),
			zap.Int32("new_width", newWidth), zap.Int32("new_height", newHeight))

		d.cells = newCells
		d.startXCell = newStartX
		d.startYCell = newStartY
		d.width = newWidth
		d.height = newHeight
		onReindex()
	}

	id := int((cy-d.startYCell)*d.width + (cx - d.startXCell))
	return id, d.cells[id]
}

// CellMutUnchecked implements Storage. Undefined for an index invalidated
// by a resize that hasn't run its onReindex yet: such an index may name a
// different cell, or panic if it falls outside the backing slice.
func (d *DenseStorage[T]) CellMutUnchecked(id int) *T {
	return d.cells[id]
}

// CellRange implements Storage.
func (d *DenseStorage[T]) CellRange(ll, ur int) iter.Seq[int] {
	width := int(d.width)
	return func(yield func(int) bool) {
		if width <= 0 {
			return
		}
		llx, lly := ll%width, ll/width
		urx, ury := ur%width, ur/width
		for y := lly; y <= ury; y++ {
			base := y * width
			for x := llx; x <= urx; x++ {
				if !yield(base + x) {
					return
				}
			}
		}
	}
}

// CellAABB implements Storage.
func (d *DenseStorage[T]) CellAABB(id int) geom.AABB {
	x := int32(id) % d.width
	y := int32(id) / d.width
	cellX := d.startXCell + x
	cellY := d.startYCell + y
	ll := geom.Pt(float32(cellX*d.cellSize), float32(cellY*d.cellSize))
	return geom.AABB{LL: ll, UR: geom.Pt(ll.X+float32(d.cellSize), ll.Y+float32(d.cellSize))}
}

// Modify implements Storage. Dense ignores the "empty" hint: growth is
// only outward, there is no shrink (spec.md §4.1).
func (d *DenseStorage[T]) Modify(f func(*T) bool) {
	for _, c := range d.cells {
		f(c)
	}
}

// DenseSnapshot is the exported, gob-friendly encoding of a
// DenseStorage's contents (spec.md §6 Persistence Format: round-trip
// fidelity for storage extents). Cells is row-major, matching the live
// layout.
type DenseSnapshot[T any] struct {
	CellSize               int32
	StartXCell, StartYCell int32
	Width, Height          int32
	Cells                  []T
}

// Export snapshots d.
func (d *DenseStorage[T]) Export() DenseSnapshot[T] {
	snap := DenseSnapshot[T]{
		CellSize:   d.cellSize,
		StartXCell: d.startXCell,
		StartYCell: d.startYCell,
		Width:      d.width,
		Height:     d.height,
		Cells:      make([]T, len(d.cells)),
	}
	for i, c := range d.cells {
		snap.Cells[i] = *c
	}
	return snap
}

// ImportDense rebuilds DenseStorage from a DenseSnapshot produced by
// Export.
func ImportDense[T any](snap DenseSnapshot[T], factory func() *T) *DenseStorage[T] {
	d := &DenseStorage[T]{
		cellSize:   snap.CellSize,
		startXCell: snap.StartXCell,
		startYCell: snap.StartYCell,
		width:      snap.Width,
		height:     snap.Height,
		factory:    factory,
		logger:     zap.NewNop(),
		cells:      make([]*T, len(snap.Cells)),
	}
	for i := range snap.Cells {
		v := snap.Cells[i]
		d.cells[i] = &v
	}
	return d
}

func clamp32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
