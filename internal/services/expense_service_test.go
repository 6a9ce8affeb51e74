package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Mathew1327/Construction-tracker/internal/models"
	apperrors "github.com/Mathew1327/Construction-tracker/pkg/errors"
)

func TestExpenseServiceCreateDefaults(t *testing.T) {
	f := newServiceFixture(t)
	svc, err := NewExpenseService(f.db, f.audit)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2025, 7, 4, 15, 30, 0, 0, time.UTC) }

	project := mustCreateProject(t, f.db, "Warehouse")
	phase := mustCreatePhase(t, f.db, project.ID, "Slab", nil)

	expense, err := svc.Create(context.Background(), ExpenseInput{PhaseID: phase.ID, Amount: 2500})
	require.NoError(t, err)
	require.Equal(t, models.ExpenseCategoryLabour, expense.Category)
	require.Equal(t, time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), expense.Date)
	require.Nil(t, expense.ProofURL)
}

func TestExpenseServiceValidation(t *testing.T) {
	f := newServiceFixture(t)
	svc, err := NewExpenseService(f.db, f.audit)
	require.NoError(t, err)
	ctx := context.Background()
	project := mustCreateProject(t, f.db, "Depot")
	phase := mustCreatePhase(t, f.db, project.ID, "Fence", nil)

	cases := []ExpenseInput{
		{Amount: 10},
		{PhaseID: phase.ID},
		{PhaseID: phase.ID, Amount: -5},
		{PhaseID: phase.ID, Amount: 5, Category: "Snacks"},
		{PhaseID: phase.ID, Amount: 5, Date: "yesterday"},
	}
	for _, input := range cases {
		_, err := svc.Create(ctx, input)
		require.ErrorIs(t, err, apperrors.ErrValidation)
	}

	_, err = svc.Create(ctx, ExpenseInput{PhaseID: "missing", Amount: 5})
	require.ErrorIs(t, err, ErrPhaseNotFound)
}

func TestExpenseServiceListSearchAndTotal(t *testing.T) {
	f := newServiceFixture(t)
	svc, err := NewExpenseService(f.db, f.audit)
	require.NoError(t, err)
	ctx := context.Background()

	project := mustCreateProject(t, f.db, "Hotel")
	phase := mustCreatePhase(t, f.db, project.ID, "Excavation", nil)

	_, err = svc.Create(ctx, ExpenseInput{PhaseID: phase.ID, Amount: 100, Category: "Transport", Date: "2025-01-01"})
	require.NoError(t, err)
	newest, err := svc.Create(ctx, ExpenseInput{PhaseID: phase.ID, Amount: 50.5, Category: "Equipment", Date: "2025-03-01"})
	require.NoError(t, err)

	rows, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, newest.ID, rows[0].ID)
	require.Equal(t, "Excavation", rows[0].PhaseName)
	require.Equal(t, "Hotel", rows[0].ProjectName)

	found, err := svc.List(ctx, "transport")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = svc.List(ctx, "hotel")
	require.NoError(t, err)
	require.Len(t, found, 2)

	total, err := svc.Total(ctx)
	require.NoError(t, err)
	require.InDelta(t, 150.5, total, 0.001)
}
