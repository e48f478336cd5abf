package flatsource

import "errors"

var (
	// ErrNoSource means the origin has no catalog at the expected
	// location (e.g. HTTP 404 for the layout index). Kept distinct from
	// other transport failures so callers can skip the source instead of
	// failing the whole operation.
	ErrNoSource = errors.New("flatsource: no source found")

	// ErrInvalidRef means a reference string did not canonicalize to a
	// 4-segment kind/id/arch/branch path.
	ErrInvalidRef = errors.New("flatsource: invalid ref")
)
