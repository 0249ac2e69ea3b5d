package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

func newDraftDocument(propertyID uuid.UUID, groupKey string) *models.TechnicalDocument {
	return &models.TechnicalDocument{
		PropertyID: propertyID,
		GroupKey:   groupKey,
		Type:       "Memorial Descritivo",
	}
}

func TestCreateDocumentAssignsIncrementalVersions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	for want := 1; want <= 3; want++ {
		document := newDraftDocument(property.ID, models.GroupMemorial)
		require.NoError(t, env.documentService.CreateDocument(ctx, document))
		assert.Equal(t, want, document.Version)
		assert.True(t, document.IsCurrentVersion)
		assert.Equal(t, models.TechnicalStatusDraft, document.TechnicalStatus)
	}

	versions, err := env.documentService.ListVersions(ctx, mustCurrentID(t, env, property.ID, models.GroupMemorial))
	require.NoError(t, err)
	require.Len(t, versions, 3)

	// Newest first, exactly one current
	assert.Equal(t, 3, versions[0].Version)
	currentCount := 0
	for _, v := range versions {
		if v.IsCurrentVersion {
			currentCount++
			assert.Equal(t, 3, v.Version)
		}
	}
	assert.Equal(t, 1, currentCount)
}

func TestCreateDocumentRequiresGroupKey(t *testing.T) {
	env := newTestEnv(t)
	property := env.createProperty(t)

	document := newDraftDocument(property.ID, "")
	err := env.documentService.CreateDocument(context.Background(), document)
	assert.ErrorIs(t, err, ErrMissingGroupKey)
}

func TestCreateDocumentUnknownProperty(t *testing.T) {
	env := newTestEnv(t)

	document := newDraftDocument(uuid.New(), models.GroupMemorial)
	err := env.documentService.CreateDocument(context.Background(), document)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestCreateNewVersionInheritsType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	first := newDraftDocument(property.ID, models.GroupMemorial)
	require.NoError(t, env.documentService.CreateDocument(ctx, first))

	second, err := env.documentService.CreateNewVersion(ctx, first.ID, NewVersionInput{
		ContentText: "conteúdo revisado",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)
	assert.Equal(t, "Memorial Descritivo", second.Type)
	assert.Equal(t, models.TechnicalStatusDraft, second.TechnicalStatus)

	third, err := env.documentService.CreateNewVersion(ctx, second.ID, NewVersionInput{
		Type: "Memorial Descritivo Retificado",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, third.Version)
	assert.Equal(t, "Memorial Descritivo Retificado", third.Type)

	// The older versions lost the current flag
	previous, err := env.documentService.GetDocument(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, previous.IsCurrentVersion)
}

func TestUpdateDocumentLockedWhenApprovedCurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	document := newDraftDocument(property.ID, models.GroupMemorial)
	require.NoError(t, env.documentService.CreateDocument(ctx, document))

	// Approve through the repository, the way the validation authority does
	document.TechnicalStatus = models.TechnicalStatusApproved
	require.NoError(t, env.repos.DocumentRepo.Update(ctx, document))

	notes := "tentativa de edição"
	_, err := env.documentService.UpdateDocument(ctx, document.ID, UpdateDocumentInput{
		TechnicalNotes: &notes,
	})
	assert.ErrorIs(t, err, ErrDocumentLocked)

	// A new version unlocks the lineage
	next, err := env.documentService.CreateNewVersion(ctx, document.ID, NewVersionInput{})
	require.NoError(t, err)

	updated, err := env.documentService.UpdateDocument(ctx, next.ID, UpdateDocumentInput{
		TechnicalNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.TechnicalNotes)
}

func TestUpdateDocumentAppliesOnlyProvidedFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	document := newDraftDocument(property.ID, models.GroupSketch)
	document.TechnicalNotes = "notas originais"
	require.NoError(t, env.documentService.CreateDocument(ctx, document))

	status := models.TechnicalStatusInReview
	updated, err := env.documentService.UpdateDocument(ctx, document.ID, UpdateDocumentInput{
		TechnicalStatus: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TechnicalStatusInReview, updated.TechnicalStatus)
	assert.Equal(t, "notas originais", updated.TechnicalNotes)
}

func TestDeleteCurrentVersionPromotesHighestRemaining(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	var documents []*models.TechnicalDocument
	for i := 0; i < 3; i++ {
		document := newDraftDocument(property.ID, models.GroupMemorial)
		require.NoError(t, env.documentService.CreateDocument(ctx, document))
		documents = append(documents, document)
	}

	require.NoError(t, env.documentService.DeleteDocument(ctx, documents[2].ID))

	current, err := env.documentService.GetCurrent(ctx, property.ID, models.GroupMemorial)
	require.NoError(t, err)
	assert.Equal(t, 2, current.Version)
	assert.True(t, current.IsCurrentVersion)
}

func TestDeleteNonCurrentVersionKeepsCurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	first := newDraftDocument(property.ID, models.GroupMemorial)
	require.NoError(t, env.documentService.CreateDocument(ctx, first))
	second := newDraftDocument(property.ID, models.GroupMemorial)
	require.NoError(t, env.documentService.CreateDocument(ctx, second))

	require.NoError(t, env.documentService.DeleteDocument(ctx, first.ID))

	current, err := env.documentService.GetCurrent(ctx, property.ID, models.GroupMemorial)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)

	_, err = env.documentService.GetDocument(ctx, first.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDeleteLastVersionEmptiesLineage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	document := newDraftDocument(property.ID, models.GroupMemorial)
	require.NoError(t, env.documentService.CreateDocument(ctx, document))
	require.NoError(t, env.documentService.DeleteDocument(ctx, document.ID))

	_, err := env.documentService.GetCurrent(ctx, property.ID, models.GroupMemorial)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestListCurrentDocumentsOnePerGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	for i := 0; i < 2; i++ {
		require.NoError(t, env.documentService.CreateDocument(ctx, newDraftDocument(property.ID, models.GroupMemorial)))
	}
	require.NoError(t, env.documentService.CreateDocument(ctx, newDraftDocument(property.ID, models.GroupSketch)))

	current, err := env.documentService.ListCurrentDocuments(ctx, property.ID)
	require.NoError(t, err)
	require.Len(t, current, 2)
	for _, document := range current {
		assert.True(t, document.IsCurrentVersion)
	}
}

func TestStatusSummaryCountsCurrentVersions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	env.createDocumentDirect(t, property.ID, models.GroupMemorial, models.TechnicalStatusApproved)
	env.createDocumentDirect(t, property.ID, models.GroupSketch, models.TechnicalStatusDraft)
	env.createDocumentDirect(t, property.ID, models.GroupSigefSheet, models.TechnicalStatusDraft)

	// A superseded version must not be counted
	env.createDocumentDirect(t, property.ID, models.GroupSketch, models.TechnicalStatusInReview)

	summary, err := env.documentService.StatusSummary(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary[models.TechnicalStatusApproved])
	assert.Equal(t, int64(1), summary[models.TechnicalStatusDraft])
	assert.Equal(t, int64(1), summary[models.TechnicalStatusInReview])
	assert.Equal(t, int64(0), summary[models.TechnicalStatusRejected])
}

// recordingObserver captures the notifications a test run produced.
type recordingObserver struct {
	events []models.AuditAction
}

func (o *recordingObserver) DocumentChanged(ctx context.Context, document *models.TechnicalDocument, action models.AuditAction) {
	o.events = append(o.events, action)
}

func TestObserversNotifiedOnMutations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)

	observer := &recordingObserver{}
	env.documentService.RegisterObserver(observer)

	document := newDraftDocument(property.ID, models.GroupMemorial)
	require.NoError(t, env.documentService.CreateDocument(ctx, document))

	status := models.TechnicalStatusInReview
	_, err := env.documentService.UpdateDocument(ctx, document.ID, UpdateDocumentInput{TechnicalStatus: &status})
	require.NoError(t, err)

	require.NoError(t, env.documentService.DeleteDocument(ctx, document.ID))

	assert.Equal(t, []models.AuditAction{
		models.AuditCreate,
		models.AuditStatusChange,
		models.AuditDelete,
	}, observer.events)
}

func mustCurrentID(t *testing.T, env *testEnv, propertyID uuid.UUID, groupKey string) uuid.UUID {
	t.Helper()
	current, err := env.documentService.GetCurrent(context.Background(), propertyID, groupKey)
	require.NoError(t, err)
	return current.ID
}
