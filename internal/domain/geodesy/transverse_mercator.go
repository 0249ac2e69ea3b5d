package geodesy

import (
	"fmt"
	"math"
)

// WGS84 ellipsoid. SIRGAS2000 uses GRS80, whose flattening differs from
// WGS84 by ~1e-10; the projected difference is far below the millimeter.
const (
	semiMajorAxisM = 6378137.0
	flattening     = 1.0 / 298.257223563

	utmScaleFactor        = 0.9996
	utmFalseEastingM      = 500000.0
	utmFalseNorthingSouth = 10000000.0
)

// krueger holds the precomputed series coefficients of the exact transverse
// Mercator projection (Krüger n-series, truncated at n^4). The truncation
// error inside a UTM zone is below a micrometer, three orders of magnitude
// under the millimeter precision of SIGEF submissions.
type krueger struct {
	// rectifying radius
	a float64
	// forward (alpha), inverse (beta) and rectifying-to-geographic
	// latitude (delta) coefficients
	alpha [4]float64
	beta  [4]float64
	delta [4]float64
	// 2*sqrt(n)/(1+n), used for the conformal latitude
	e float64
}

var tmSeries = newKrueger()

func newKrueger() *krueger {
	n := flattening / (2 - flattening)
	n2 := n * n
	n3 := n2 * n
	n4 := n2 * n2

	return &krueger{
		a: semiMajorAxisM / (1 + n) * (1 + n2/4 + n4/64),
		alpha: [4]float64{
			n/2 - 2*n2/3 + 5*n3/16 + 41*n4/180,
			13*n2/48 - 3*n3/5 + 557*n4/1440,
			61*n3/240 - 103*n4/140,
			49561 * n4 / 161280,
		},
		beta: [4]float64{
			n/2 - 2*n2/3 + 37*n3/96 - n4/360,
			n2/48 + n3/15 - 437*n4/1440,
			17*n3/480 - 37*n4/840,
			4397 * n4 / 161280,
		},
		delta: [4]float64{
			2*n - 2*n2/3 - 2*n3 + 116*n4/45,
			7*n2/3 - 8*n3/5 - 227*n4/45,
			56*n3/15 - 136*n4/35,
			4279 * n4 / 630,
		},
		e: 2 * math.Sqrt(n) / (1 + n),
	}
}

// forward maps geographic coordinates to unscaled transverse Mercator
// easting/northing relative to the central meridian lon0. All angles in
// radians, output in meters.
func (k *krueger) forward(lon, lat, lon0 float64) (x, y float64) {
	dl := lon - lon0
	s := math.Sin(lat)

	// tangent of the conformal latitude
	tau := math.Sinh(math.Atanh(s) - k.e*math.Atanh(k.e*s))

	xiP := math.Atan2(tau, math.Cos(dl))
	etaP := math.Asinh(math.Sin(dl) / math.Hypot(tau, math.Cos(dl)))

	xi, eta := xiP, etaP
	for j, a := range k.alpha {
		m := 2 * float64(j+1)
		xi += a * math.Sin(m*xiP) * math.Cosh(m*etaP)
		eta += a * math.Cos(m*xiP) * math.Sinh(m*etaP)
	}
	return k.a * eta, k.a * xi
}

// inverse maps unscaled transverse Mercator easting/northing back to
// geographic coordinates relative to the central meridian lon0.
func (k *krueger) inverse(x, y, lon0 float64) (lon, lat float64) {
	xi := y / k.a
	eta := x / k.a

	xiP, etaP := xi, eta
	for j, b := range k.beta {
		m := 2 * float64(j+1)
		xiP -= b * math.Sin(m*xi) * math.Cosh(m*eta)
		etaP -= b * math.Cos(m*xi) * math.Sinh(m*eta)
	}

	// rectifying latitude, then geographic latitude
	chi := math.Asin(math.Sin(xiP) / math.Cosh(etaP))
	lat = chi
	for j, d := range k.delta {
		m := 2 * float64(j+1)
		lat += d * math.Sin(m*chi)
	}

	lon = lon0 + math.Atan2(math.Sinh(etaP), math.Cos(xiP))
	return lon, lat
}

// LonLatToUTM projects a geographic coordinate (degrees) into the zone of
// the given WGS84/UTM EPSG code.
func LonLatToUTM(lon, lat float64, utmEpsg int) (Point, error) {
	zone, south, err := utmZoneFromEpsg(utmEpsg)
	if err != nil {
		return Point{}, err
	}

	x, y := tmSeries.forward(lon*math.Pi/180, lat*math.Pi/180, utmCentralMeridian(zone))
	p := Point{
		X: utmFalseEastingM + utmScaleFactor*x,
		Y: utmScaleFactor * y,
	}
	if south {
		p.Y += utmFalseNorthingSouth
	}
	return p, nil
}

// UTMToLonLat is the inverse of LonLatToUTM, returning degrees.
func UTMToLonLat(p Point, utmEpsg int) (lon, lat float64, err error) {
	zone, south, err := utmZoneFromEpsg(utmEpsg)
	if err != nil {
		return 0, 0, err
	}

	y := p.Y
	if south {
		y -= utmFalseNorthingSouth
	}

	lonRad, latRad := tmSeries.inverse(
		(p.X-utmFalseEastingM)/utmScaleFactor,
		y/utmScaleFactor,
		utmCentralMeridian(zone),
	)
	return lonRad * 180 / math.Pi, latRad * 180 / math.Pi, nil
}

func utmZoneFromEpsg(epsg int) (zone int, south bool, err error) {
	switch {
	case epsg >= 32601 && epsg <= 32660:
		return epsg - 32600, false, nil
	case epsg >= 32701 && epsg <= 32760:
		return epsg - 32700, true, nil
	}
	return 0, false, fmt.Errorf("%w: EPSG %d is not a WGS84/UTM code", ErrInvalidCRS, epsg)
}

func utmCentralMeridian(zone int) float64 {
	return (float64(zone-1)*6 - 180 + 3) * math.Pi / 180
}
