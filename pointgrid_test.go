package spatialgrid

import (
	"sort"
	"testing"

	"github.com/kelindar/spatialgrid/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aroundHandles[O any, Idx comparable](g *PointGrid[O, Idx], center geom.Vec2, radius float32) []Handle {
	var hs []Handle
	for hit := range g.QueryAround(center, radius) {
		hs = append(hs, hit.Handle)
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i].Index() < hs[j].Index() })
	return hs
}

func TestPointGridSmallQuery(t *testing.T) {
	g, err := NewPointGrid[string](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.Pt(5, 0), "a")
	require.NoError(t, err)
	b, err := g.Insert(geom.Pt(11, 0), "b")
	require.NoError(t, err)
	c, err := g.Insert(geom.Pt(5, 8), "c")
	require.NoError(t, err)

	assert.Equal(t, []Handle{a}, aroundHandles(g, geom.Pt(6, 0), 2.0))

	mid := aroundHandles(g, geom.Pt(8, 0), 4.0)
	assert.Contains(t, mid, a)
	assert.Contains(t, mid, b)

	far := aroundHandles(g, geom.Pt(6, 0), 10.0)
	assert.Contains(t, far, a)
	assert.Contains(t, far, b)
	assert.Contains(t, far, c)
}

func TestPointGridDistanceFilter(t *testing.T) {
	g, err := NewPointGrid[string](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.Pt(3, 4), "a")
	require.NoError(t, err)

	assert.Equal(t, []Handle{a}, aroundHandles(g, geom.Pt(0, 0), 5.1))
	assert.Empty(t, aroundHandles(g, geom.Pt(0, 0), 4.9))
}

func TestPointGridLazyMove(t *testing.T) {
	g, err := NewPointGrid[string](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.Pt(0, 0), "a")
	require.NoError(t, err)

	require.NoError(t, g.SetPosition(a, geom.Pt(30, 30)))
	g.Maintain()

	assert.Empty(t, aroundHandles(g, geom.Pt(0, 0), 5))
	assert.Equal(t, []Handle{a}, aroundHandles(g, geom.Pt(30, 30), 5))
}

func TestPointGridRemovalThenReinsertion(t *testing.T) {
	g, err := NewPointGrid[string](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.Pt(0, 0), "a")
	require.NoError(t, err)
	require.NoError(t, g.Remove(a))
	b, err := g.Insert(geom.Pt(0, 0), "b")
	require.NoError(t, err)
	g.Maintain()

	var handles []Handle
	for h := range g.Handles() {
		handles = append(handles, h)
	}
	assert.Equal(t, []Handle{b}, handles)

	_, _, ok := g.Get(a)
	assert.False(t, ok)

	assert.Equal(t, []Handle{b}, aroundHandles(g, geom.Pt(0, 0), 5))
}

func TestPointGridDenseGrowth(t *testing.T) {
	g, err := NewPointGridDense[string](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.Pt(-1000, 0), "a")
	require.NoError(t, err)
	b, err := g.Insert(geom.Pt(0, 1000), "b")
	require.NoError(t, err)

	assert.Equal(t, []Handle{a}, aroundHandles(g, geom.Pt(-1000, 0), 5))
	assert.Equal(t, []Handle{b}, aroundHandles(g, geom.Pt(0, 1000), 5))
}

func TestPointGridInvalidCellSize(t *testing.T) {
	_, err := NewPointGrid[string](0)
	assert.ErrorIs(t, err, ErrCellSizeInvalid)

	_, err = NewPointGridDense[string](-1)
	assert.ErrorIs(t, err, ErrCellSizeInvalid)
}

func TestPointGridInvalidPosition(t *testing.T) {
	g, err := NewPointGrid[string](10)
	require.NoError(t, err)

	nan := float32(0)
	nan = nan / nan

	_, err = g.Insert(geom.Pt(nan, 0), "a")
	assert.ErrorIs(t, err, ErrPositionInvalid)

	a, err := g.Insert(geom.Pt(0, 0), "a")
	require.NoError(t, err)
	assert.ErrorIs(t, g.SetPosition(a, geom.Pt(nan, 0)), ErrPositionInvalid)
}

func TestPointGridDeadHandle(t *testing.T) {
	g, err := NewPointGrid[string](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.Pt(0, 0), "a")
	require.NoError(t, err)
	require.NoError(t, g.Remove(a))
	g.Maintain()

	assert.ErrorIs(t, g.Remove(a), ErrHandleInvalid)
	assert.ErrorIs(t, g.SetPosition(a, geom.Pt(1, 1)), ErrHandleInvalid)
	assert.Nil(t, g.GetMut(a))
}

func TestPointGridSetPositionOnRemovedIsNoop(t *testing.T) {
	// spec.md §9 Open Questions: set_position on a Removed object is a
	// silent no-op, not an error.
	g, err := NewPointGrid[string](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.Pt(0, 0), "a")
	require.NoError(t, err)
	require.NoError(t, g.Remove(a))

	assert.NoError(t, g.SetPosition(a, geom.Pt(50, 50)))
	g.Maintain()

	assert.Equal(t, 0, g.Len())
}

func TestPointGridSparseShrink(t *testing.T) {
	g, err := NewPointGrid[string](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.Pt(0, 0), "a")
	require.NoError(t, err)
	require.NoError(t, g.Remove(a))
	g.Maintain()

	sparse, ok := g.storage.(*SparseStorage[pointCell])
	require.True(t, ok)
	assert.Equal(t, 0, sparse.Len())
}

func TestPointGridQueryRaw(t *testing.T) {
	g, err := NewPointGrid[string](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.Pt(5, 0), "a")
	require.NoError(t, err)
	b, err := g.Insert(geom.Pt(11, 0), "b")
	require.NoError(t, err)

	var hs []Handle
	for hit := range g.QueryRaw(geom.Pt(0, 0), geom.Pt(10, 10)) {
		hs = append(hs, hit.Handle)
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i].Index() < hs[j].Index() })

	// cell (0,0) covers world [0,10)x[0,10), cell (1,0) covers [10,20)x[0,10);
	// both are visited since the rectangle's cell range spans cell ids
	// CellID(0,0)..CellID(10,10), which includes cell (1,0).
	assert.Contains(t, hs, a)
	assert.Contains(t, hs, b)
}

func TestPointGridQueryAABB(t *testing.T) {
	// spec.md §8: every point inside [ll,ur] is yielded by query_aabb, and
	// no point outside it is yielded, even when both live in cells the
	// rectangle's cell range touches.
	g, err := NewPointGrid[string](10)
	require.NoError(t, err)

	inside, err := g.Insert(geom.Pt(5, 5), "inside")
	require.NoError(t, err)
	_, err = g.Insert(geom.Pt(15, 5), "outside")
	require.NoError(t, err)

	var hs []Handle
	for hit := range g.QueryAABB(geom.Pt(0, 0), geom.Pt(10, 10)) {
		hs = append(hs, hit.Handle)
	}
	assert.Equal(t, []Handle{inside}, hs)

	// Corners supplied in reverse order are normalized the same way.
	var reversed []Handle
	for hit := range g.QueryAABB(geom.Pt(10, 10), geom.Pt(0, 0)) {
		reversed = append(reversed, hit.Handle)
	}
	assert.Equal(t, []Handle{inside}, reversed)
}

func TestPointGridGetCell(t *testing.T) {
	g, err := NewPointGrid[string](10)
	require.NoError(t, err)

	a, err := g.Insert(geom.Pt(5, 5), "a")
	require.NoError(t, err)
	b, err := g.Insert(geom.Pt(6, 6), "b")
	require.NoError(t, err)
	_, err = g.Insert(geom.Pt(15, 15), "c")
	require.NoError(t, err)

	var hs []Handle
	for hit := range g.GetCell(geom.Pt(1, 1)) {
		hs = append(hs, hit.Handle)
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i].Index() < hs[j].Index() })
	assert.Equal(t, []Handle{a, b}, hs)

	var empty []Handle
	for hit := range g.GetCell(geom.Pt(500, 500)) {
		empty = append(empty, hit.Handle)
	}
	assert.Empty(t, empty)
}

func TestPointGridQueryAroundStrictBoundary(t *testing.T) {
	// spec.md §9 Open Questions: d² == r² is excluded (strict <).
	g, err := NewPointGrid[string](10)
	require.NoError(t, err)

	_, err = g.Insert(geom.Pt(5, 0), "a")
	require.NoError(t, err)

	assert.Empty(t, aroundHandles(g, geom.Pt(0, 0), 5))
}
