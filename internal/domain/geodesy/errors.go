package geodesy

import "errors"

var (
	// ErrInvalidGeometry covers malformed GeoJSON, non-polygon geometries
	// and empty or degenerate rings.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrInvalidCRS covers non-positive or unrecognized EPSG codes.
	ErrInvalidCRS = errors.New("invalid coordinate system")

	// ErrProjectionFailed indicates the coordinate transformation produced
	// an empty or invalid result.
	ErrProjectionFailed = errors.New("projection failed")

	// ErrInsufficientVertices indicates fewer than 3 boundary segments.
	ErrInsufficientVertices = errors.New("insufficient vertices")
)
