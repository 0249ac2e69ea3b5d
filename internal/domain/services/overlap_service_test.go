package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

func TestAnalyzeOverlapHalfCoverage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	base := env.createGeometry(t, property.ID, squarePolygon(-63.9, -10.7, 0.001))
	// Shifted east by half a side: covers the eastern half of the base
	affected := env.createGeometry(t, property.ID, squarePolygon(-63.8995, -10.7, 0.001))

	result, err := env.overlapService.Analyze(ctx, base.ID, affected.ID, models.OverlapKindSigef)
	require.NoError(t, err)

	assert.True(t, result.Intersects)
	assert.InDelta(t, 50.0, result.OverlapPercentage, 1.0)
	assert.InDelta(t, *base.AreaHectares/2.0, result.OverlapAreaHa, 0.05)
	require.NotNil(t, result.Record)
	assert.Equal(t, models.OverlapKindSigef, result.Record.Kind)

	history, err := env.overlapService.History(ctx, base.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, affected.ID, history[0].AffectedGeometryID)
}

func TestAnalyzeOverlapDisjointGeometries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	base := env.createGeometry(t, property.ID, squarePolygon(-63.9, -10.7, 0.001))
	affected := env.createGeometry(t, property.ID, squarePolygon(-63.89, -10.7, 0.001))

	result, err := env.overlapService.Analyze(ctx, base.ID, affected.ID, models.OverlapKindCar)
	require.NoError(t, err)

	assert.False(t, result.Intersects)
	assert.Zero(t, result.OverlapAreaHa)
	assert.Nil(t, result.Record)

	history, err := env.overlapService.History(ctx, base.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAnalyzeOverlapSharedEdgeOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	base := env.createGeometry(t, property.ID, squarePolygon(-63.9, -10.7, 0.001))
	// Adjacent square sharing the eastern edge of the base
	affected := env.createGeometry(t, property.ID, squarePolygon(-63.899, -10.7, 0.001))

	result, err := env.overlapService.Analyze(ctx, base.ID, affected.ID, models.OverlapKindInternal)
	require.NoError(t, err)

	assert.False(t, result.Intersects)
	assert.Nil(t, result.Record)
}

func TestAnalyzeOverlapAppendsHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	base := env.createGeometry(t, property.ID, squarePolygon(-63.9, -10.7, 0.001))
	affected := env.createGeometry(t, property.ID, squarePolygon(-63.8995, -10.7, 0.001))

	for i := 0; i < 2; i++ {
		_, err := env.overlapService.Analyze(ctx, base.ID, affected.ID, models.OverlapKindSigef)
		require.NoError(t, err)
	}

	history, err := env.overlapService.History(ctx, base.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestDeleteAffectedGeometryRemovesOverlapHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	base := env.createGeometry(t, property.ID, squarePolygon(-63.9, -10.7, 0.001))
	affected := env.createGeometry(t, property.ID, squarePolygon(-63.8995, -10.7, 0.001))

	_, err := env.overlapService.Analyze(ctx, base.ID, affected.ID, models.OverlapKindSigef)
	require.NoError(t, err)

	// Deleting the affected neighbor must not leave history rows pointing
	// at a geometry that no longer exists
	require.NoError(t, env.geometryService.Delete(ctx, affected.ID))

	history, err := env.overlapService.History(ctx, base.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	// And the base side keeps cascading as before
	require.NoError(t, env.geometryService.Delete(ctx, base.ID))
}

func TestAnalyzeOverlapUnknownGeometry(t *testing.T) {
	env := newTestEnv(t)
	property := env.createProperty(t)
	base := env.createGeometry(t, property.ID, squarePolygon(-63.9, -10.7, 0.001))

	_, err := env.overlapService.Analyze(context.Background(), base.ID, uuid.New(), models.OverlapKindSigef)
	assert.ErrorIs(t, err, ErrGeometryNotFound)
}
