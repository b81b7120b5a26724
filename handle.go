package spatialgrid

import "github.com/kelindar/spatialgrid/internal/arena"

// Handle is an opaque, stable, generational identifier returned by an
// insert operation. It remains valid and unique for the object's lifetime,
// including across maintenance sweeps; reuse after removal never aliases
// a still-live handle (spec.md §3 "Handle").
type Handle = arena.Handle
