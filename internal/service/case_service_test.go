package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/forkliftia/case-service/internal/errs"
	"github.com/forkliftia/case-service/internal/model"
	"github.com/forkliftia/case-service/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaseFixture(t *testing.T, adminUIDs []string) *CaseService {
	t.Helper()
	store, err := storage.NewJSONCaseStore(filepath.Join(t.TempDir(), "cases.json"))
	require.NoError(t, err)
	return NewCaseService(store, adminUIDs)
}

func TestCreateDefaults(t *testing.T) {
	svc := newCaseFixture(t, nil)

	c, err := svc.Create(context.Background(), model.CaseCreate{
		Brand:     "Toyota",
		Model:     "8FGU25",
		ErrorCode: "E45",
		Symptom:   "won't lift",
		CreatedBy: "tech-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Toyota 8FGU25 E45", c.Title)
	assert.Equal(t, "won't lift", c.Description)
	assert.Equal(t, model.CaseStatusOpen, c.Status)

	// Provided title and description are kept.
	c, err = svc.Create(context.Background(), model.CaseCreate{
		Brand:       "Linde",
		Model:       "H25",
		Title:       "Mast drift under load",
		Description: "Mast drifts down about 5cm/min.",
		CreatedBy:   "tech-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mast drift under load", c.Title)
	assert.Equal(t, "Mast drifts down about 5cm/min.", c.Description)
}

func TestCaseTitle(t *testing.T) {
	tests := []struct {
		brand, mdl, code, want string
	}{
		{"Toyota", "8FGU25", "E45", "Toyota 8FGU25 E45"},
		{"Toyota", "8FGU25", "", "Toyota 8FGU25"},
		{"", " ", "", "Diagnostic case"},
		{" Linde ", "", "L210", "Linde L210"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, caseTitle(tt.brand, tt.mdl, tt.code))
	}
}

func TestUpdateStatusAuthorization(t *testing.T) {
	svc := newCaseFixture(t, []string{"admin-1"})
	ctx := context.Background()

	c, err := svc.Create(ctx, model.CaseCreate{Brand: "Toyota", Model: "8FGU25", Symptom: "won't lift", CreatedBy: "owner-1"})
	require.NoError(t, err)

	// A stranger cannot mutate.
	_, err = svc.UpdateStatus(ctx, c.ID, "resolved", "stranger")
	require.ErrorIs(t, err, errs.ErrForbidden)

	// The owner can.
	updated, err := svc.UpdateStatus(ctx, c.ID, "resolved", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusResolved, updated.Status)

	// An admin can too.
	updated, err = svc.UpdateStatus(ctx, c.ID, "open", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusOpen, updated.Status)
}

func TestUpdateStatusValidatesBeforeAuthorization(t *testing.T) {
	svc := newCaseFixture(t, nil)
	ctx := context.Background()

	c, err := svc.Create(ctx, model.CaseCreate{Brand: "Toyota", Model: "8FGU25", Symptom: "won't lift", CreatedBy: "owner-1"})
	require.NoError(t, err)

	// An invalid status is rejected even for a caller who would be forbidden,
	// and for a case that does not exist.
	_, err = svc.UpdateStatus(ctx, c.ID, "in_progress", "stranger")
	require.ErrorIs(t, err, errs.ErrInvalidStatus)
	_, err = svc.UpdateStatus(ctx, 999, "in_progress", "owner-1")
	require.ErrorIs(t, err, errs.ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, 999, "open", "owner-1")
	require.ErrorIs(t, err, errs.ErrCaseNotFound)
}

func TestResolveAuthorizationAndValidation(t *testing.T) {
	svc := newCaseFixture(t, []string{"admin-1"})
	ctx := context.Background()

	c, err := svc.Create(ctx, model.CaseCreate{Brand: "Toyota", Model: "8FGU25", Symptom: "won't lift", CreatedBy: "owner-1"})
	require.NoError(t, err)

	// Blank note is rejected before ownership is even considered.
	_, err = svc.Resolve(ctx, c.ID, "   ", "stranger")
	require.ErrorIs(t, err, errs.ErrEmptyNote)

	_, err = svc.Resolve(ctx, c.ID, "replaced sensor", "stranger")
	require.ErrorIs(t, err, errs.ErrForbidden)

	resolved, err := svc.Resolve(ctx, c.ID, "replaced sensor", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusResolved, resolved.Status)
	assert.Equal(t, "replaced sensor", resolved.ResolutionNote)
}
