package geodesy

import (
	"fmt"
	"math"

	"github.com/peterstace/simplefeatures/geom"
)

// Point is a projected UTM coordinate in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// UTMEpsgFromLonLat selects the WGS84/UTM EPSG code covering the given
// geographic position: zone = floor((lon+180)/6)+1, northern codes 326xx,
// southern 327xx.
//
// This is a deliberate simplification: a parcel straddling a zone boundary
// is assigned the single zone of its centroid. Downstream SIGEF exports
// depend on single-zone output, so do not "fix" this without a product
// decision.
func UTMEpsgFromLonLat(lon, lat float64) int {
	zone := int(math.Floor((lon+180.0)/6.0)) + 1
	if lat >= 0 {
		return 32600 + zone
	}
	return 32700 + zone
}

// ParsePolygon parses a GeoJSON Polygon and returns its exterior ring,
// closed (first point repeated at the end). Interior rings are ignored.
func ParsePolygon(polygonGeoJSON string) (geom.Polygon, error) {
	g, err := geom.UnmarshalGeoJSON([]byte(polygonGeoJSON))
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	poly, ok := g.AsPolygon()
	if !ok {
		return geom.Polygon{}, fmt.Errorf("%w: geometry must be a Polygon", ErrInvalidGeometry)
	}
	if poly.IsEmpty() {
		return geom.Polygon{}, fmt.Errorf("%w: empty polygon", ErrInvalidGeometry)
	}
	return poly, nil
}

// Project reprojects the exterior ring of a GeoJSON polygon from sourceEpsg
// into the UTM zone of its centroid. It returns the derived UTM EPSG code
// and the closed projected ring.
func Project(polygonGeoJSON string, sourceEpsg int) (int, []Point, error) {
	if sourceEpsg <= 0 {
		return 0, nil, fmt.Errorf("%w: EPSG %d", ErrInvalidCRS, sourceEpsg)
	}

	poly, err := ParsePolygon(polygonGeoJSON)
	if err != nil {
		return 0, nil, err
	}

	seq := poly.ExteriorRing().Coordinates()
	n := seq.Length()
	if n < 4 {
		return 0, nil, fmt.Errorf("%w: exterior ring has %d points", ErrInvalidGeometry, n)
	}

	centroid, ok := poly.Centroid().XY()
	if !ok {
		return 0, nil, fmt.Errorf("%w: polygon has no centroid", ErrInvalidGeometry)
	}
	utmEpsg := UTMEpsgFromLonLat(centroid.X, centroid.Y)

	if err := validateSourceEpsg(sourceEpsg); err != nil {
		return 0, nil, err
	}

	ring := make([]Point, 0, n+1)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		p, err := LonLatToUTM(xy.X, xy.Y, utmEpsg)
		if err != nil {
			return 0, nil, err
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return 0, nil, fmt.Errorf("%w: EPSG %d -> %d produced non-finite coordinates", ErrProjectionFailed, sourceEpsg, utmEpsg)
		}
		ring = append(ring, p)
	}

	// Close the ring if the source was not closed
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}

	if err := validateProjectedRing(ring); err != nil {
		return 0, nil, fmt.Errorf("%w: EPSG %d -> %d: %v", ErrProjectionFailed, sourceEpsg, utmEpsg, err)
	}

	return utmEpsg, ring, nil
}

// validateSourceEpsg accepts the geographic systems uploaded GeoJSON may
// declare. WGS84 (4326) and SIRGAS2000 (4674) are treated as coincident;
// their realizations differ by far less than the output precision.
func validateSourceEpsg(epsg int) error {
	switch epsg {
	case 4326, 4674:
		return nil
	}
	return fmt.Errorf("%w: unsupported source EPSG %d (expected 4326 or 4674)", ErrInvalidCRS, epsg)
}

// validateProjectedRing rebuilds the projected ring as a polygon and checks
// it is still a valid non-empty shape after transformation.
func validateProjectedRing(ring []Point) error {
	poly, err := ringPolygon(ring)
	if err != nil {
		return err
	}
	if poly.IsEmpty() {
		return fmt.Errorf("projected polygon is empty")
	}
	return nil
}

// ringPolygon builds a simplefeatures polygon from a closed UTM ring.
func ringPolygon(ring []Point) (geom.Polygon, error) {
	coords := make([]float64, 0, len(ring)*2)
	for _, p := range ring {
		coords = append(coords, p.X, p.Y)
	}
	ls := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	poly := geom.NewPolygon([]geom.LineString{ls})
	if err := poly.Validate(); err != nil {
		return geom.Polygon{}, err
	}
	return poly, nil
}
