package spatialgrid

import (
	"encoding/gob"
	"io"

	"github.com/kelindar/spatialgrid/internal/arena"
	"github.com/pkg/errors"
)

// Persistence is explicitly out of scope as a requirement (spec.md §1
// Non-goals), but is specified as an optional, opt-in capability
// (spec.md §6 "Persistence format"): round-trip fidelity for handles,
// object records, and storage extents, via encoding/gob. Callers whose
// payload type contains interface values must gob.Register the concrete
// types themselves, same as any other gob use.
const (
	storageFlavorSparse = "sparse"
	storageFlavorDense  = "dense"
)

// Save writes a gob-encoded snapshot of g to w: the object arena
// (handles, positions, lifecycle state) followed by the cell storage
// (Sparse or Dense, whichever backs g).
func (g *PointGrid[O, Idx]) Save(w io.Writer) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(g.objects.Export()); err != nil {
		return errors.Wrap(err, "spatialgrid: encode point objects")
	}

	switch st := any(g.storage).(type) {
	case *SparseStorage[pointCell]:
		if err := enc.Encode(storageFlavorSparse); err != nil {
			return errors.WithStack(err)
		}
		if err := enc.Encode(st.Export()); err != nil {
			return errors.Wrap(err, "spatialgrid: encode sparse point storage")
		}
	case *DenseStorage[pointCell]:
		if err := enc.Encode(storageFlavorDense); err != nil {
			return errors.WithStack(err)
		}
		if err := enc.Encode(st.Export()); err != nil {
			return errors.Wrap(err, "spatialgrid: encode dense point storage")
		}
	default:
		return errors.New("spatialgrid: unrecognized point storage implementation")
	}
	return nil
}

// Load replaces g's state with the snapshot written by Save. The storage
// flavor recorded in the snapshot must match g's own Idx type parameter
// (a Sparse-backed PointGrid cannot Load a Dense snapshot).
func (g *PointGrid[O, Idx]) Load(r io.Reader) error {
	dec := gob.NewDecoder(r)

	var objSnap arena.Snapshot[pointRecord[O, Idx]]
	if err := dec.Decode(&objSnap); err != nil {
		return errors.Wrap(err, "spatialgrid: decode point objects")
	}

	var flavor string
	if err := dec.Decode(&flavor); err != nil {
		return errors.Wrap(err, "spatialgrid: decode point storage flavor")
	}

	factory := func() *pointCell { return &pointCell{} }
	var storage Storage[pointCell, Idx]

	switch flavor {
	case storageFlavorSparse:
		var snap SparseSnapshot[pointCell]
		if err := dec.Decode(&snap); err != nil {
			return errors.Wrap(err, "spatialgrid: decode sparse point storage")
		}
		s := ImportSparse(snap, factory)
		s.SetLogger(g.cfg.logger)
		v, ok := any(s).(Storage[pointCell, Idx])
		if !ok {
			return errors.New("spatialgrid: sparse snapshot does not match this grid's index type")
		}
		storage = v
	case storageFlavorDense:
		var snap DenseSnapshot[pointCell]
		if err := dec.Decode(&snap); err != nil {
			return errors.Wrap(err, "spatialgrid: decode dense point storage")
		}
		d := ImportDense(snap, factory)
		d.SetLogger(g.cfg.logger)
		v, ok := any(d).(Storage[pointCell, Idx])
		if !ok {
			return errors.New("spatialgrid: dense snapshot does not match this grid's index type")
		}
		storage = v
	default:
		return errors.Errorf("spatialgrid: unrecognized point storage flavor %q", flavor)
	}

	g.objects = arena.Import(objSnap)
	g.storage = storage
	g.toRelocate = g.toRelocate[:0]
	return nil
}

// Save writes a gob-encoded snapshot of g to w: the object arena
// (handles, shapes, payloads) followed by the cell storage (Sparse or
// Dense, whichever backs g).
func (g *ShapeGrid[O, S, Idx]) Save(w io.Writer) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(g.objects.Export()); err != nil {
		return errors.Wrap(err, "spatialgrid: encode shape objects")
	}

	switch st := any(g.storage).(type) {
	case *SparseStorage[shapeCell]:
		if err := enc.Encode(storageFlavorSparse); err != nil {
			return errors.WithStack(err)
		}
		if err := enc.Encode(st.Export()); err != nil {
			return errors.Wrap(err, "spatialgrid: encode sparse shape storage")
		}
	case *DenseStorage[shapeCell]:
		if err := enc.Encode(storageFlavorDense); err != nil {
			return errors.WithStack(err)
		}
		if err := enc.Encode(st.Export()); err != nil {
			return errors.Wrap(err, "spatialgrid: encode dense shape storage")
		}
	default:
		return errors.New("spatialgrid: unrecognized shape storage implementation")
	}
	return nil
}

// Load replaces g's state with the snapshot written by Save. The storage
// flavor recorded in the snapshot must match g's own Idx type parameter.
func (g *ShapeGrid[O, S, Idx]) Load(r io.Reader) error {
	dec := gob.NewDecoder(r)

	var objSnap arena.Snapshot[shapeRecord[O, S]]
	if err := dec.Decode(&objSnap); err != nil {
		return errors.Wrap(err, "spatialgrid: decode shape objects")
	}

	var flavor string
	if err := dec.Decode(&flavor); err != nil {
		return errors.Wrap(err, "spatialgrid: decode shape storage flavor")
	}

	factory := func() *shapeCell { return &shapeCell{} }
	var storage Storage[shapeCell, Idx]

	switch flavor {
	case storageFlavorSparse:
		var snap SparseSnapshot[shapeCell]
		if err := dec.Decode(&snap); err != nil {
			return errors.Wrap(err, "spatialgrid: decode sparse shape storage")
		}
		s := ImportSparse(snap, factory)
		s.SetLogger(g.cfg.logger)
		v, ok := any(s).(Storage[shapeCell, Idx])
		if !ok {
			return errors.New("spatialgrid: sparse snapshot does not match this grid's index type")
		}
		storage = v
	case storageFlavorDense:
		var snap DenseSnapshot[shapeCell]
		if err := dec.Decode(&snap); err != nil {
			return errors.Wrap(err, "spatialgrid: decode dense shape storage")
		}
		d := ImportDense(snap, factory)
		d.SetLogger(g.cfg.logger)
		v, ok := any(d).(Storage[shapeCell, Idx])
		if !ok {
			return errors.New("spatialgrid: dense snapshot does not match this grid's index type")
		}
		storage = v
	default:
		return errors.Errorf("spatialgrid: unrecognized shape storage flavor %q", flavor)
	}

	g.objects = arena.Import(objSnap)
	g.storage = storage
	return nil
}
