package geodesy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAzimuthCardinalDirections(t *testing.T) {
	origin := Point{X: 0, Y: 0}

	tests := []struct {
		name string
		to   Point
		want float64
	}{
		{"north", Point{0, 100}, 0},
		{"east", Point{100, 0}, 90},
		{"south", Point{0, -100}, 180},
		{"west", Point{-100, 0}, 270},
		{"northeast", Point{100, 100}, 45},
		{"southwest", Point{-100, -100}, 225},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Azimuth(origin, tt.to), 1e-9)
		})
	}
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 500.0, Distance(Point{0, 0}, Point{300, 400}), 1e-9)
}

func TestDegreesToDMS(t *testing.T) {
	assert.Equal(t, `45°00'00.00"`, DegreesToDMS(45))
	assert.Equal(t, `10°45'18.00"`, DegreesToDMS(10.755))
	assert.Equal(t, `00°30'00.00"`, DegreesToDMS(0.5))
}

func TestBearingFromAzimuthQuadrants(t *testing.T) {
	tests := []struct {
		azimuth float64
		want    string
	}{
		{45, `N 45°00'00.00" E`},
		{135, `S 45°00'00.00" E`},
		{225, `S 45°00'00.00" W`},
		{315, `N 45°00'00.00" W`},
		{0, `N 00°00'00.00" E`},
		{90, `S 90°00'00.00" E`},
		{180, `S 00°00'00.00" W`},
		{270, `N 90°00'00.00" W`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BearingFromAzimuth(tt.azimuth))
	}
}

func TestComputeSegments(t *testing.T) {
	// 100m square, counterclockwise, closed
	ring := []Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}, {0, 0}}

	segments, err := ComputeSegments(ring, "V")
	require.NoError(t, err)
	require.Len(t, segments, 4)

	first := segments[0]
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, "V1", first.FromLabel)
	assert.Equal(t, "V2", first.ToLabel)
	assert.InDelta(t, 100.0, first.DistanceM, 1e-9)
	assert.InDelta(t, 90.0, first.AzimuthDeg, 1e-9)

	// The last segment closes back on the first vertex
	last := segments[3]
	assert.Equal(t, "V4", last.FromLabel)
	assert.Equal(t, "V1", last.ToLabel)
	assert.InDelta(t, 180.0, last.AzimuthDeg, 1e-9)
}

func TestComputeSegmentsRejectsBadRings(t *testing.T) {
	t.Run("unclosed", func(t *testing.T) {
		ring := []Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}}
		_, err := ComputeSegments(ring, "V")
		assert.ErrorIs(t, err, ErrInsufficientVertices)
	})

	t.Run("degenerate", func(t *testing.T) {
		ring := []Point{{0, 0}, {100, 0}, {0, 0}}
		_, err := ComputeSegments(ring, "V")
		assert.ErrorIs(t, err, ErrInsufficientVertices)
	})
}
