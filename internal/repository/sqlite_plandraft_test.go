package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestPlanDraftRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePlanDraftRepo(testutil.NewTestDB(t))
	d := testutil.NewTestDraft("42", "Backend Go", testNow)

	require.NoError(t, repo.Create(ctx, d))

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, "42", got.UserID)
	assert.Equal(t, "Backend Go", got.Target)
	assert.True(t, d.Deadline.Equal(got.Deadline))
	assert.True(t, testNow.Equal(got.CreatedAt))
	assert.JSONEq(t, string(d.CVAnalysis), string(got.CVAnalysis))
	assert.Equal(t, 1, got.Attempts)
	require.Len(t, got.Plan, 2)
	assert.Equal(t, "Backend Go", got.Plan[0].Goal)
	assert.Equal(t, float64(30), got.Plan[0].Routes[0].EffectiveWeight())
}

func TestPlanDraftRepo_GetByID_NotFound(t *testing.T) {
	repo := NewSQLitePlanDraftRepo(testutil.NewTestDB(t))
	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanDraftRepo_ListByUser_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePlanDraftRepo(testutil.NewTestDB(t))

	older := testutil.NewTestDraft("42", "older", testNow)
	newer := testutil.NewTestDraft("42", "newer", testNow.Add(time.Hour))
	other := testutil.NewTestDraft("7", "someone else", testNow)
	for _, d := range []*domain.PlanDraft{older, newer, other} {
		require.NoError(t, repo.Create(ctx, d))
	}

	drafts, err := repo.ListByUser(ctx, "42")
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "newer", drafts[0].Target)
	assert.Equal(t, "older", drafts[1].Target)
}

func TestPlanDraftRepo_UpdatePlan(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePlanDraftRepo(testutil.NewTestDB(t))
	d := testutil.NewTestDraft("42", "Backend Go", testNow)
	require.NoError(t, repo.Create(ctx, d))

	editor := d.Editor()
	editor.AddPhase("Extra")
	require.NoError(t, repo.UpdatePlan(ctx, d.ID, editor.ToPlan()))

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, got.Plan, 3)
	assert.Equal(t, "Extra", got.Plan[2].BigTitle)
	assert.True(t, got.UpdatedAt.After(testNow))

	assert.ErrorIs(t, repo.UpdatePlan(ctx, "missing", nil), ErrNotFound)
}

func TestPlanDraftRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePlanDraftRepo(testutil.NewTestDB(t))
	d := testutil.NewTestDraft("42", "Backend Go", testNow)
	require.NoError(t, repo.Create(ctx, d))

	require.NoError(t, repo.Delete(ctx, d.ID))
	_, err := repo.GetByID(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, d.ID), ErrNotFound)
}
