package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
)

func checklistItem(key string, status models.ChecklistStatus, critical bool) models.ChecklistItem {
	return models.ChecklistItem{
		Key:         key,
		Description: "Descrição de " + key,
		Status:      status,
		Critical:    critical,
	}
}

func TestDeriveStatus(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		items      []models.ChecklistItem
		wantStatus models.TechnicalStatus
		wantNotes  string
	}{
		{
			name:       "no checklist",
			items:      nil,
			wantStatus: models.TechnicalStatusNeedsFixes,
			wantNotes:  notesNoChecklist,
		},
		{
			name: "critical item open",
			items: []models.ChecklistItem{
				checklistItem("AREA_CONFERE", models.ChecklistStatusOK, false),
				checklistItem("VERTICES_FECHADOS", models.ChecklistStatusError, true),
			},
			wantStatus: models.TechnicalStatusRejected,
			wantNotes:  notesCriticalPending + ":\n- Descrição de VERTICES_FECHADOS",
		},
		{
			name: "non critical item open",
			items: []models.ChecklistItem{
				checklistItem("AREA_CONFERE", models.ChecklistStatusOK, false),
				checklistItem("ASSINATURA_ART", models.ChecklistStatusWarning, false),
			},
			wantStatus: models.TechnicalStatusNeedsFixes,
			wantNotes:  notesFixesPending + ":\n- Descrição de ASSINATURA_ART",
		},
		{
			name: "critical wins over non critical",
			items: []models.ChecklistItem{
				checklistItem("ASSINATURA_ART", models.ChecklistStatusWarning, false),
				checklistItem("VERTICES_FECHADOS", models.ChecklistStatusError, true),
			},
			wantStatus: models.TechnicalStatusRejected,
			wantNotes:  notesCriticalPending + ":\n- Descrição de VERTICES_FECHADOS",
		},
		{
			name: "all satisfied",
			items: []models.ChecklistItem{
				checklistItem("AREA_CONFERE", models.ChecklistStatusOK, false),
				checklistItem("CAMPO_OPCIONAL", models.ChecklistStatusNotApplicable, true),
			},
			wantStatus: models.TechnicalStatusApproved,
			wantNotes:  notesApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, notes := env.validationService.DeriveStatus(tt.items)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantNotes, notes)
		})
	}
}

func TestValidateDocumentPersistsDerivedStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)
	document := env.createDocumentDirect(t, property.ID, models.GroupMemorial, models.TechnicalStatusDraft)

	item := checklistItem("VERTICES_FECHADOS", models.ChecklistStatusError, true)
	item.TechnicalDocumentID = document.ID
	require.NoError(t, env.repos.ChecklistRepo.Create(ctx, &item))

	validated, err := env.validationService.ValidateDocument(ctx, document.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TechnicalStatusRejected, validated.TechnicalStatus)

	stored, err := env.repos.DocumentRepo.GetByID(ctx, document.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TechnicalStatusRejected, stored.TechnicalStatus)
	assert.Contains(t, stored.TechnicalNotes, notesCriticalPending)

	// Idempotent on an unchanged checklist
	again, err := env.validationService.ValidateDocument(ctx, document.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.TechnicalStatus, again.TechnicalStatus)
	assert.Equal(t, stored.TechnicalNotes, again.TechnicalNotes)
}

func TestValidateDocumentOverridesApprovedLock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)
	document := env.createDocumentDirect(t, property.ID, models.GroupMemorial, models.TechnicalStatusApproved)

	item := checklistItem("AREA_CONFERE", models.ChecklistStatusError, true)
	item.TechnicalDocumentID = document.ID
	require.NoError(t, env.repos.ChecklistRepo.Create(ctx, &item))

	// Approval is revoked even though the current version is approved
	validated, err := env.validationService.ValidateDocument(ctx, document.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TechnicalStatusRejected, validated.TechnicalStatus)
}

func TestChecklistLifecycleRevalidatesDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t)
	document := env.createDocumentDirect(t, property.ID, models.GroupMemorial, models.TechnicalStatusDraft)

	// A fresh item defaults to NA, which satisfies the checklist
	item := &models.ChecklistItem{
		Key:         "AREA_CONFERE",
		Description: "Área do polígono confere com a matrícula",
		Critical:    true,
	}
	require.NoError(t, env.validationService.AddChecklistItem(ctx, document.ID, item))
	assert.Equal(t, models.ChecklistStatusNotApplicable, item.Status)
	assertDocumentStatus(t, env, document.ID, models.TechnicalStatusApproved)

	// Marking it as failed rejects the document
	status := models.ChecklistStatusError
	updated, err := env.validationService.UpdateChecklistItem(ctx, item.ID, UpdateChecklistInput{
		Status: &status,
	})
	require.NoError(t, err)
	assert.True(t, updated.ValidatedAutomatically)
	assert.NotNil(t, updated.ValidatedAt)
	assertDocumentStatus(t, env, document.ID, models.TechnicalStatusRejected)

	// A reviewer clearing it restores approval and records authorship
	reviewer := uuid.New()
	status = models.ChecklistStatusOK
	updated, err = env.validationService.UpdateChecklistItem(ctx, item.ID, UpdateChecklistInput{
		Status:      &status,
		ValidatedBy: &reviewer,
	})
	require.NoError(t, err)
	assert.False(t, updated.ValidatedAutomatically)
	require.NotNil(t, updated.ValidatedBy)
	assert.Equal(t, reviewer, *updated.ValidatedBy)
	assertDocumentStatus(t, env, document.ID, models.TechnicalStatusApproved)

	// Removing the only item leaves the document without a checklist
	require.NoError(t, env.validationService.DeleteChecklistItem(ctx, item.ID))
	assertDocumentStatus(t, env, document.ID, models.TechnicalStatusNeedsFixes)
}

func TestAddChecklistItemUnknownDocument(t *testing.T) {
	env := newTestEnv(t)

	item := checklistItem("AREA_CONFERE", models.ChecklistStatusOK, false)
	err := env.validationService.AddChecklistItem(context.Background(), uuid.New(), &item)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestUpdateChecklistItemNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.validationService.UpdateChecklistItem(context.Background(), uuid.New(), UpdateChecklistInput{})
	assert.ErrorIs(t, err, ErrChecklistItemNotFound)
}

func assertDocumentStatus(t *testing.T, env *testEnv, documentID uuid.UUID, want models.TechnicalStatus) {
	t.Helper()
	document, err := env.repos.DocumentRepo.GetByID(context.Background(), documentID)
	require.NoError(t, err)
	assert.Equal(t, want, document.TechnicalStatus)
}
