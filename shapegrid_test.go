package spatialgrid

import (
	"testing"

	"github.com/kelindar/spatialgrid/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAABBGridDedup(t *testing.T) {
	g, err := NewAABBGrid[string](10)
	require.NoError(t, err)

	// bbox spans cells (0..2, 0..1): x in [0,25], y in [0,15].
	box := geom.NewAABB(geom.Pt(0, 0), geom.Pt(25, 15))
	a, err := g.Insert(box, "a")
	require.NoError(t, err)

	query := geom.NewAABB(geom.Pt(0, 0), geom.Pt(25, 15))
	var seen []Handle
	for h := range g.QueryBroad(query) {
		seen = append(seen, h)
	}

	assert.Len(t, seen, 1)
	assert.Equal(t, a, seen[0])
}

func TestShapeGridRefinement(t *testing.T) {
	g, err := NewShapeGrid[string, geom.Circle](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.Circle{Center: geom.Pt(15, 15), Radius: 6}, "a")
	require.NoError(t, err)

	var near []Handle
	for hit := range g.QueryAround(geom.Pt(5, 5), 6) {
		near = append(near, hit.Handle)
	}
	assert.Empty(t, near)

	var far []Handle
	for hit := range g.QueryAround(geom.Pt(5, 5), 10) {
		far = append(far, hit.Handle)
	}
	assert.Equal(t, []Handle{a}, far)

	cellZero, ok := g.storage.Cell(g.storage.CellID(geom.Pt(5, 5)))
	require.True(t, ok)
	for _, e := range cellZero.objs {
		assert.NotEqual(t, a, e.handle, "circle does not touch cell (0,0)")
	}
}

func TestShapeGridSetShapeMovesCells(t *testing.T) {
	g, err := NewShapeGrid[string, geom.Circle](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.Circle{Center: geom.Pt(5, 5), Radius: 1}, "a")
	require.NoError(t, err)
	require.NoError(t, g.SetShape(a, geom.Circle{Center: geom.Pt(55, 55), Radius: 1}))

	var near []Handle
	for hit := range g.QueryAround(geom.Pt(5, 5), 3) {
		near = append(near, hit.Handle)
	}
	assert.Empty(t, near)

	var moved []Handle
	for hit := range g.QueryAround(geom.Pt(55, 55), 3) {
		moved = append(moved, hit.Handle)
	}
	assert.Equal(t, []Handle{a}, moved)
}

func TestShapeGridRemove(t *testing.T) {
	g, err := NewShapeGrid[string, geom.Circle](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.Circle{Center: geom.Pt(5, 5), Radius: 1}, "a")
	require.NoError(t, err)
	require.NoError(t, g.Remove(a))

	assert.Equal(t, 0, g.Len())
	_, _, ok := g.Get(a)
	assert.False(t, ok)
	assert.ErrorIs(t, g.Remove(a), ErrHandleInvalid)
}

func TestAABBGridInvalidBBox(t *testing.T) {
	g, err := NewAABBGrid[string](10)
	require.NoError(t, err)

	backwards := geom.AABB{LL: geom.Pt(10, 10), UR: geom.Pt(0, 0)}
	_, err = g.Insert(backwards, "a")
	assert.ErrorIs(t, err, ErrAABBInvalid)
}

func TestShapeGridInvalidCellSize(t *testing.T) {
	_, err := NewShapeGrid[string, geom.Circle](0)
	assert.ErrorIs(t, err, ErrCellSizeInvalid)

	_, err = NewAABBGridDense[string](-5)
	assert.ErrorIs(t, err, ErrCellSizeInvalid)
}

func TestAABBGridQueryVisitor(t *testing.T) {
	g, err := NewAABBGrid[string](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.NewAABB(geom.Pt(0, 0), geom.Pt(5, 5)), "a")
	require.NoError(t, err)
	_, err = g.Insert(geom.NewAABB(geom.Pt(100, 100), geom.Pt(105, 105)), "b")
	require.NoError(t, err)

	var hits []Handle
	g.QueryVisitor(geom.NewAABB(geom.Pt(0, 0), geom.Pt(5, 5)), func(h Handle, _ geom.AABB, _ string) {
		hits = append(hits, h)
	})
	assert.Equal(t, []Handle{a}, hits)
}

func TestAABBGridClear(t *testing.T) {
	g, err := NewAABBGrid[string](10)
	require.NoError(t, err)

	_, err = g.Insert(geom.NewAABB(geom.Pt(0, 0), geom.Pt(5, 5)), "a")
	require.NoError(t, err)
	_, err = g.Insert(geom.NewAABB(geom.Pt(20, 20), geom.Pt(25, 25)), "b")
	require.NoError(t, err)

	drained := g.Clear()
	assert.Len(t, drained, 2)
	assert.Equal(t, 0, g.Len())

	var remaining []Handle
	for h := range g.Handles() {
		remaining = append(remaining, h)
	}
	assert.Empty(t, remaining)
}

func TestShapeGridDense(t *testing.T) {
	g, err := NewShapeGridDense[string, geom.AABB](10)
	require.NoError(t, err)

	box := geom.NewAABB(geom.Pt(0, 0), geom.Pt(5, 5))
	a, err := g.Insert(box, "a")
	require.NoError(t, err)

	var hits []Handle
	for hit := range g.Query(geom.NewAABB(geom.Pt(0, 0), geom.Pt(5, 5))) {
		hits = append(hits, hit.Handle)
	}
	assert.Equal(t, []Handle{a}, hits)
}
