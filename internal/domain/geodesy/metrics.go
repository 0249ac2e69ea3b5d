package geodesy

// Metrics holds the derived geodetic attributes of a parcel polygon.
type Metrics struct {
	UTMEpsg      int     `json:"utm_epsg"`
	AreaHectares float64 `json:"area_hectares"`
	PerimeterM   float64 `json:"perimeter_m"`
}

// ComputeMetrics projects the polygon into its UTM zone and computes planar
// area (hectares) and perimeter (meters) in the projected space.
func ComputeMetrics(polygonGeoJSON string, sourceEpsg int) (Metrics, error) {
	utmEpsg, ring, err := Project(polygonGeoJSON, sourceEpsg)
	if err != nil {
		return Metrics{}, err
	}

	areaHa, perimeterM, err := RingMetrics(ring)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		UTMEpsg:      utmEpsg,
		AreaHectares: areaHa,
		PerimeterM:   perimeterM,
	}, nil
}

// RingMetrics computes planar area (hectares) and ring length (meters) of a
// closed UTM ring. Coordinates are assumed to be in meters.
func RingMetrics(ring []Point) (areaHa, perimeterM float64, err error) {
	poly, err := ringPolygon(ring)
	if err != nil {
		return 0, 0, err
	}

	areaM2 := poly.Area()
	perimeterM = poly.ExteriorRing().Length()

	return areaM2 / 10000.0, perimeterM, nil
}
