package spatialgrid

import "github.com/pkg/errors"

// Sentinel errors for the four caller-faultable failure kinds (spec.md §7).
// All four are programmer errors: surfaced immediately to the offending
// call, never recovered internally, and never silently dropped.
var (
	// ErrCellSizeInvalid is returned by a constructor when cell_size <= 0.
	ErrCellSizeInvalid = errors.New("spatialgrid: cell size must be positive")

	// ErrPositionInvalid is returned by insert/set_position when a
	// coordinate is non-finite (NaN or ±Inf).
	ErrPositionInvalid = errors.New("spatialgrid: position must be finite")

	// ErrHandleInvalid is returned by any operation addressing a handle
	// that was never issued, or has already been freed.
	ErrHandleInvalid = errors.New("spatialgrid: handle is not live")

	// ErrAABBInvalid is returned when an AABB's upper-right corner is not
	// component-wise >= its lower-left corner.
	ErrAABBInvalid = errors.New("spatialgrid: aabb upper-right must be >= lower-left")
)
