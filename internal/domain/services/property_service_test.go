package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralgeo/ruralgeo/internal/domain/repositories"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

func TestPropertyLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	property := env.createProperty(t)
	require.NotEqual(t, uuid.Nil, property.ID)

	fetched, err := env.propertyService.Get(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fazenda Boa Vista", fetched.Name)
	assert.Equal(t, "Ji-Paraná", fetched.Municipality)

	fetched.Name = "Fazenda Boa Vista II"
	fetched.OfficialAreaHa = 2.5
	require.NoError(t, env.propertyService.Update(ctx, fetched))

	updated, err := env.propertyService.Get(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fazenda Boa Vista II", updated.Name)
	assert.Equal(t, 2.5, updated.OfficialAreaHa)

	require.NoError(t, env.propertyService.Delete(ctx, property.ID))

	_, err = env.propertyService.Get(ctx, property.ID)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestPropertyGetNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.propertyService.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestPropertyListSearchAndPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	names := []string{"Sítio Água Limpa", "Fazenda Três Irmãos", "Fazenda Santa Rita"}
	for _, name := range names {
		property := &models.Property{Name: name, Municipality: "Cacoal", State: "RO"}
		require.NoError(t, env.propertyService.Create(ctx, property))
	}

	all, total, err := env.propertyService.List(ctx, repositories.ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	fazendas, total, err := env.propertyService.List(ctx, repositories.ListParams{
		Page:     1,
		PageSize: 10,
		Search:   "fazenda",
		SortBy:   "name",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, fazendas, 2)
	assert.Equal(t, "Fazenda Santa Rita", fazendas[0].Name)

	paged, total, err := env.propertyService.List(ctx, repositories.ListParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, paged, 1)
}

func TestPropertyDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	property := env.createProperty(t)
	geometry := env.createGeometry(t, property.ID, squarePolygon(-63.9, -10.7, 0.001))
	document := env.createDocumentDirect(t, property.ID, models.GroupMemorial, models.TechnicalStatusDraft)

	item := checklistItem("AREA_CONFERE", models.ChecklistStatusOK, false)
	item.TechnicalDocumentID = document.ID
	require.NoError(t, env.repos.ChecklistRepo.Create(ctx, &item))

	require.NoError(t, env.propertyService.Delete(ctx, property.ID))

	_, err := env.repos.GeometryRepo.GetByID(ctx, geometry.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = env.repos.DocumentRepo.GetByID(ctx, document.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = env.repos.ChecklistRepo.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
