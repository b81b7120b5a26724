package spatialgrid

import (
	"bytes"
	"encoding/gob"

	"github.com/kelindar/spatialgrid/geom"
	"github.com/kelindar/spatialgrid/internal/arena"
)

// objectState is the four-state lifecycle tag of a point object between
// maintenance sweeps (spec.md §3 "Point object", §4.4 state machine).
type objectState uint8

const (
	stateUnchanged objectState = iota
	stateNewPos
	stateRelocate
	stateRemoved
)

// pointRecord is the authoritative, handle-keyed state of a point object:
// its payload, position, cached owning cell, and lifecycle state.
type pointRecord[O any, Idx comparable] struct {
	obj    O
	pos    geom.Vec2
	cellID Idx
	state  objectState
}

// pointRecordWire mirrors pointRecord with exported fields, since gob's
// default reflection path skips unexported ones.
type pointRecordWire[O any, Idx comparable] struct {
	Obj    O
	Pos    geom.Vec2
	CellID Idx
	State  objectState
}

// GobEncode implements gob.GobEncoder.
func (r pointRecord[O, Idx]) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	w := pointRecordWire[O, Idx]{Obj: r.obj, Pos: r.pos, CellID: r.cellID, State: r.state}
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (r *pointRecord[O, Idx]) GobDecode(data []byte) error {
	var w pointRecordWire[O, Idx]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	r.obj, r.pos, r.cellID, r.state = w.Obj, w.Pos, w.CellID, w.State
	return nil
}

// cellPointEntry is a single (handle, cached position) pair held by a
// point-flavor cell (spec.md §3 "Cell (point flavor)").
type cellPointEntry struct {
	handle arena.Handle
	pos    geom.Vec2
}

type cellPointEntryWire struct {
	Handle arena.Handle
	Pos    geom.Vec2
}

// GobEncode implements gob.GobEncoder.
func (e cellPointEntry) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	w := cellPointEntryWire{Handle: e.handle, Pos: e.pos}
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (e *cellPointEntry) GobDecode(data []byte) error {
	var w cellPointEntryWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	e.handle, e.pos = w.Handle, w.Pos
	return nil
}

// pointCell is a point-flavor cell: a list of cell-point entries plus a
// dirty flag marking that at least one entry may be stale.
type pointCell struct {
	objs  []cellPointEntry
	dirty bool
}

type pointCellWire struct {
	Objs  []cellPointEntry
	Dirty bool
}

// GobEncode implements gob.GobEncoder.
func (c pointCell) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	w := pointCellWire{Objs: c.objs, Dirty: c.dirty}
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (c *pointCell) GobDecode(data []byte) error {
	var w pointCellWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	c.objs, c.dirty = w.Objs, w.Dirty
	return nil
}

// maintainPointCell reconciles cell against the authoritative object
// records, in place: Unchanged entries are kept as-is, NewPos entries have
// their cached position refreshed, Relocate entries are dropped here and
// queued in toRelocate for re-insertion into their new cell, and Removed
// entries free their arena slot. Returns whether cell is now empty.
func maintainPointCell[O any, Idx comparable](
	cell *pointCell,
	objects *arena.Arena[pointRecord[O, Idx]],
	toRelocate *[]cellPointEntry,
) bool {
	cell.dirty = false

	kept := cell.objs[:0]
	for _, e := range cell.objs {
		rec := objects.GetMut(e.handle)
		if rec == nil {
			continue
		}
		switch rec.state {
		case stateUnchanged:
			kept = append(kept, e)
		case stateNewPos:
			rec.state = stateUnchanged
			e.pos = rec.pos
			kept = append(kept, e)
		case stateRelocate:
			rec.state = stateUnchanged
			*toRelocate = append(*toRelocate, cellPointEntry{handle: e.handle, pos: rec.pos})
		case stateRemoved:
			objects.Remove(e.handle)
		}
	}
	cell.objs = kept

	return len(cell.objs) == 0
}
