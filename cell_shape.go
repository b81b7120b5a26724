package spatialgrid

import (
	"bytes"
	"encoding/gob"

	"github.com/kelindar/spatialgrid/internal/arena"
)

// cellShapeEntry is a single (handle, single_cell) pair held by a
// shape-flavor cell. singleCell is true when the owning shape fits
// entirely inside this one cell, letting ShapeGrid's query skip the
// dedup set for it (spec.md §3 "Cell (AABB flavor)", single_cell_flag).
type cellShapeEntry struct {
	handle     arena.Handle
	singleCell bool
}

type cellShapeEntryWire struct {
	Handle     arena.Handle
	SingleCell bool
}

// GobEncode implements gob.GobEncoder.
func (e cellShapeEntry) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	w := cellShapeEntryWire{Handle: e.handle, SingleCell: e.singleCell}
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (e *cellShapeEntry) GobDecode(data []byte) error {
	var w cellShapeEntryWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	e.handle, e.singleCell = w.Handle, w.SingleCell
	return nil
}

// shapeCell is an AABB/shape-flavor cell: an unordered list of shape
// entries. Unlike pointCell, shapeCell has no dirty flag: ShapeGrid
// mutates cell membership eagerly on every insert/set_shape/remove, so
// there is nothing left to reconcile at maintenance time.
type shapeCell struct {
	objs []cellShapeEntry
}

type shapeCellWire struct {
	Objs []cellShapeEntry
}

// GobEncode implements gob.GobEncoder.
func (c shapeCell) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(shapeCellWire{Objs: c.objs}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (c *shapeCell) GobDecode(data []byte) error {
	var w shapeCellWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	c.objs = w.Objs
	return nil
}

func (c *shapeCell) push(h arena.Handle, singleCell bool) {
	c.objs = append(c.objs, cellShapeEntry{handle: h, singleCell: singleCell})
}

// remove drops h's entry from c, if present. Uses swap-remove since cell
// membership order carries no meaning (spec.md §4.3 "order is
// unspecified").
func (c *shapeCell) remove(h arena.Handle) {
	for i, e := range c.objs {
		if e.handle == h {
			last := len(c.objs) - 1
			c.objs[i] = c.objs[last]
			c.objs = c.objs[:last]
			return
		}
	}
}
