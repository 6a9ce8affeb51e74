package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mathew1327/Construction-tracker/internal/models"
	apperrors "github.com/Mathew1327/Construction-tracker/pkg/errors"
)

func newPhaseService(t *testing.T, f *serviceFixture) *PhaseService {
	t.Helper()
	svc, err := NewPhaseService(f.db, f.audit)
	require.NoError(t, err)
	return svc
}

func TestPhaseServiceCreateDefaultsAndOrdering(t *testing.T) {
	f := newServiceFixture(t)
	svc := newPhaseService(t, f)
	ctx := context.Background()
	project := mustCreateProject(t, f.db, "Bridge")

	later, err := svc.Create(ctx, PhaseInput{ProjectID: project.ID, Name: "Deck", StartDate: "2025-05-01"})
	require.NoError(t, err)
	require.Equal(t, models.PhaseStatusNotStarted, later.Status)

	earlier, err := svc.Create(ctx, PhaseInput{ProjectID: project.ID, Name: "Foundations", StartDate: "2025-02-01", Status: models.PhaseStatusInProgress})
	require.NoError(t, err)

	phases, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, phases, 2)
	require.Equal(t, earlier.ID, phases[0].ID)
	require.Equal(t, "Bridge", phases[0].ProjectName)
	require.Equal(t, later.ID, phases[1].ID)

	other := mustCreateProject(t, f.db, "Tunnel")
	scoped, err := svc.List(ctx, other.ID)
	require.NoError(t, err)
	require.Empty(t, scoped)
}

func TestPhaseServiceValidation(t *testing.T) {
	f := newServiceFixture(t)
	svc := newPhaseService(t, f)
	ctx := context.Background()
	project := mustCreateProject(t, f.db, "Dam")

	_, err := svc.Create(ctx, PhaseInput{Name: "No Project"})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, PhaseInput{ProjectID: project.ID})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, PhaseInput{ProjectID: project.ID, Name: "Odd", Status: "Paused"})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, PhaseInput{ProjectID: "missing", Name: "Orphan"})
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestPhaseServiceUpdateAndDelete(t *testing.T) {
	f := newServiceFixture(t)
	svc := newPhaseService(t, f)
	ctx := context.Background()
	project := mustCreateProject(t, f.db, "School")

	phase, err := svc.Create(ctx, PhaseInput{ProjectID: project.ID, Name: "Roofing"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, phase.ID, PhaseInput{ProjectID: project.ID, Name: "Roofing", Status: models.PhaseStatusCompleted, EndDate: "2025-09-30"})
	require.NoError(t, err)
	require.Equal(t, models.PhaseStatusCompleted, updated.Status)

	require.NoError(t, svc.Delete(ctx, phase.ID))
	_, err = svc.Get(ctx, phase.ID)
	require.ErrorIs(t, err, ErrPhaseNotFound)

	require.ErrorIs(t, svc.Delete(ctx, phase.ID), ErrPhaseNotFound)
}

func TestPhaseServiceDeleteBlockedByExpenses(t *testing.T) {
	f := newServiceFixture(t)
	svc := newPhaseService(t, f)
	ctx := context.Background()
	project := mustCreateProject(t, f.db, "Clinic")
	phase := mustCreatePhase(t, f.db, project.ID, "Plumbing", nil)

	expenses, err := NewExpenseService(f.db, f.audit)
	require.NoError(t, err)
	_, err = expenses.Create(ctx, ExpenseInput{PhaseID: phase.ID, Amount: 100})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, phase.ID), apperrors.ErrValidation)
}
