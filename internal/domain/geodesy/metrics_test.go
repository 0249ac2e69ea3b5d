package geodesy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingMetricsSquare(t *testing.T) {
	// Exact 100m x 100m square in projected coordinates
	ring := []Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}, {0, 0}}

	areaHa, perimeterM, err := RingMetrics(ring)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, areaHa, 1e-9)
	assert.InDelta(t, 400.0, perimeterM, 1e-9)
}

func TestComputeMetricsGeographicSquare(t *testing.T) {
	// ~0.001 degree square near Ji-Paraná (RO): roughly 110m x 109m
	metrics, err := ComputeMetrics(squareGeoJSON(-63.9, -10.7, 0.001), 4326)
	require.NoError(t, err)

	assert.Equal(t, 32720, metrics.UTMEpsg)
	assert.InDelta(t, 1.21, metrics.AreaHectares, 0.1)
	assert.InDelta(t, 440.0, metrics.PerimeterM, 15.0)
}

func TestComputeMetricsScalesWithSide(t *testing.T) {
	small, err := ComputeMetrics(squareGeoJSON(-63.9, -10.7, 0.001), 4326)
	require.NoError(t, err)
	large, err := ComputeMetrics(squareGeoJSON(-63.9, -10.7, 0.002), 4326)
	require.NoError(t, err)

	// Doubling the side quadruples the area and doubles the perimeter
	assert.InDelta(t, 4.0, large.AreaHectares/small.AreaHectares, 0.01)
	assert.InDelta(t, 2.0, large.PerimeterM/small.PerimeterM, 0.01)
}
