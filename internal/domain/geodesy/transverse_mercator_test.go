package geodesy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTMRoundTripSubMillimeter(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		epsg     int
	}{
		{"rondonia mid zone", -63.9, -10.7, 32720},
		{"near western zone edge", -65.95, -10.7, 32720},
		{"near eastern zone edge", -60.05, -10.7, 32720},
		{"far from central meridian", -60.3, -10.7, 32720},
		{"high southern latitude", -63.2, -33.0, 32720},
		{"near equator", -63.5, -0.4, 32720},
		{"northern hemisphere", -62.4, 4.1, 32620},
		{"sao paulo zone 23", -46.6, -23.5, 32723},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projected, err := LonLatToUTM(tt.lon, tt.lat, tt.epsg)
			require.NoError(t, err)

			lon, lat, err := UTMToLonLat(projected, tt.epsg)
			require.NoError(t, err)

			reprojected, err := LonLatToUTM(lon, lat, tt.epsg)
			require.NoError(t, err)

			assert.InDelta(t, projected.X, reprojected.X, 0.001)
			assert.InDelta(t, projected.Y, reprojected.Y, 0.001)

			// Angular error bound equivalent to ~1mm on the ground
			assert.InDelta(t, tt.lon, lon, 1e-8)
			assert.InDelta(t, tt.lat, lat, 1e-8)
		})
	}
}

func TestUTMAnchorsOnCentralMeridian(t *testing.T) {
	// Equator on the central meridian of zone 20 maps onto the false origin
	north, err := LonLatToUTM(-63.0, 0.0, 32620)
	require.NoError(t, err)
	assert.InDelta(t, 500000.0, north.X, 1e-6)
	assert.InDelta(t, 0.0, north.Y, 1e-6)

	south, err := LonLatToUTM(-63.0, 0.0, 32720)
	require.NoError(t, err)
	assert.InDelta(t, 10000000.0, south.Y, 1e-6)

	// Everywhere on the central meridian the easting stays at 500km
	p, err := LonLatToUTM(-63.0, -27.3, 32720)
	require.NoError(t, err)
	assert.InDelta(t, 500000.0, p.X, 1e-6)
}

func TestUTMScaleAtCentralMeridian(t *testing.T) {
	// Over a short arc the projected length must equal 0.9996 times the
	// ellipsoidal distance. North-south uses the meridional curvature
	// radius, east-west on the equator the semi-major axis.
	const dDeg = 0.0001
	dRad := dDeg * math.Pi / 180

	lat := -10.7
	a, err := LonLatToUTM(-63.0, lat, 32720)
	require.NoError(t, err)
	b, err := LonLatToUTM(-63.0, lat+dDeg, 32720)
	require.NoError(t, err)

	e2 := flattening * (2 - flattening)
	s := math.Sin((lat + dDeg/2) * math.Pi / 180)
	meridionalRadius := semiMajorAxisM * (1 - e2) / math.Pow(1-e2*s*s, 1.5)

	assert.InDelta(t, utmScaleFactor*meridionalRadius*dRad, b.Y-a.Y, 1e-4)

	c, err := LonLatToUTM(-63.0, 0.0, 32620)
	require.NoError(t, err)
	d, err := LonLatToUTM(-63.0+dDeg, 0.0, 32620)
	require.NoError(t, err)

	assert.InDelta(t, utmScaleFactor*semiMajorAxisM*dRad, d.X-c.X, 1e-4)
}

func TestUTMSymmetricAroundCentralMeridian(t *testing.T) {
	east, err := LonLatToUTM(-63.0+1.5, -10.7, 32720)
	require.NoError(t, err)
	west, err := LonLatToUTM(-63.0-1.5, -10.7, 32720)
	require.NoError(t, err)

	assert.InDelta(t, east.X-500000.0, 500000.0-west.X, 1e-7)
	assert.InDelta(t, east.Y, west.Y, 1e-7)
}

func TestUTMRejectsNonUTMEpsg(t *testing.T) {
	for _, epsg := range []int{0, 4326, 32600, 32661, 32761, 999999} {
		_, err := LonLatToUTM(-63.9, -10.7, epsg)
		assert.ErrorIs(t, err, ErrInvalidCRS, "EPSG %d", epsg)
	}
}

func TestProjectRoundTripsToSource(t *testing.T) {
	utmEpsg, ring, err := Project(squareGeoJSON(-63.9, -10.7, 0.001), 4326)
	require.NoError(t, err)
	require.Equal(t, 32720, utmEpsg)
	require.Len(t, ring, 5)

	corners := [][2]float64{
		{-63.9, -10.7},
		{-63.899, -10.7},
		{-63.899, -10.699},
		{-63.9, -10.699},
		{-63.9, -10.7},
	}
	for i, want := range corners {
		lon, lat, err := UTMToLonLat(ring[i], utmEpsg)
		require.NoError(t, err)
		assert.InDelta(t, want[0], lon, 1e-8, "vertex %d lon", i)
		assert.InDelta(t, want[1], lat, 1e-8, "vertex %d lat", i)
	}
}
