package geodesy

import (
	"fmt"
	"math"
)

// Segment describes one boundary segment of a projected parcel ring. JSON
// field names follow the memorial/SIGEF table layout.
type Segment struct {
	Order      int     `json:"ordem"`
	FromLabel  string  `json:"de_vertice"`
	ToLabel    string  `json:"ate_vertice"`
	DistanceM  float64 `json:"distancia_m"`
	AzimuthDeg float64 `json:"azimute_graus"`
	Bearing    string  `json:"rumo"`
}

// ComputeSegments derives distance, azimuth and quadrant bearing for every
// segment of a closed projected ring. The ring must repeat its first point at
// the end and contain at least 3 segments. Vertex labels are prefix+1..n,
// with the last segment closing back on prefix+1.
func ComputeSegments(ring []Point, vertexPrefix string) ([]Segment, error) {
	if len(ring) < 2 || ring[0] != ring[len(ring)-1] {
		return nil, fmt.Errorf("%w: ring must be closed", ErrInsufficientVertices)
	}

	segmentCount := len(ring) - 1
	if segmentCount < 3 {
		return nil, fmt.Errorf("%w: got %d segments, need at least 3", ErrInsufficientVertices, segmentCount)
	}

	segments := make([]Segment, 0, segmentCount)
	for i := 0; i < segmentCount; i++ {
		p1 := ring[i]
		p2 := ring[i+1]

		az := Azimuth(p1, p2)
		toLabel := fmt.Sprintf("%s%d", vertexPrefix, i+2)
		if i+1 == segmentCount {
			toLabel = fmt.Sprintf("%s1", vertexPrefix)
		}

		segments = append(segments, Segment{
			Order:      i + 1,
			FromLabel:  fmt.Sprintf("%s%d", vertexPrefix, i+1),
			ToLabel:    toLabel,
			DistanceM:  Distance(p1, p2),
			AzimuthDeg: az,
			Bearing:    BearingFromAzimuth(az),
		})
	}

	return segments, nil
}

// Distance is the planar Euclidean distance between two projected points.
func Distance(p1, p2 Point) float64 {
	return math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
}

// Azimuth returns the direction from p1 to p2 in degrees, measured clockwise
// from North, in [0, 360). The atan2 arguments are swapped on purpose so
// that 0° is North and 90° is East.
func Azimuth(p1, p2 Point) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	deg := math.Atan2(dx, dy) * 180.0 / math.Pi
	if deg < 0 {
		deg += 360.0
	}
	return deg
}

// BearingFromAzimuth converts an azimuth into quadrant ("rumo") notation:
// N/S angle E/W with the angle in degrees-minutes-seconds.
func BearingFromAzimuth(azimuth float64) string {
	az := math.Mod(azimuth, 360.0)
	if az < 0 {
		az += 360.0
	}

	switch {
	case az < 90.0:
		return fmt.Sprintf("N %s E", DegreesToDMS(az))
	case az < 180.0:
		return fmt.Sprintf("S %s E", DegreesToDMS(180.0-az))
	case az < 270.0:
		return fmt.Sprintf("S %s W", DegreesToDMS(az-180.0))
	default:
		return fmt.Sprintf("N %s W", DegreesToDMS(360.0-az))
	}
}

// DegreesToDMS renders a decimal angle as DD°MM'SS.SS".
func DegreesToDMS(deg float64) string {
	d := int(deg)
	minFloat := (deg - float64(d)) * 60.0
	m := int(minFloat)
	s := (minFloat - float64(m)) * 60.0
	return fmt.Sprintf("%02d°%02d'%05.2f\"", d, m, s)
}
