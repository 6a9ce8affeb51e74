package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Mathew1327/Construction-tracker/internal/database/testutil"
	"github.com/Mathew1327/Construction-tracker/internal/models"
)

func TestAuditServiceLogAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	user := mustCreateUser(t, db, "auditor@example.com", nil)

	ctx := context.Background()
	require.NoError(t, svc.Log(ctx, AuditEntry{
		UserID:   &user.ID,
		Action:   "user.create",
		Resource: "users",
		Result:   "success",
		Metadata: map[string]any{"email": user.Email},
	}))
	require.NoError(t, svc.Log(ctx, AuditEntry{
		Action: "role.create",
		Result: "failure",
	}))

	logs, total, err := svc.List(ctx, AuditListOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, logs, 2)

	filtered, total, err := svc.List(ctx, AuditListOptions{Filters: AuditFilters{UserID: user.ID}})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "user.create", filtered[0].Action)

	var metadata map[string]any
	require.NoError(t, json.Unmarshal([]byte(filtered[0].Metadata), &metadata))
	require.Equal(t, user.Email, metadata["email"])
}

func TestAuditServiceRequiresActionAndResult(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.Error(t, svc.Log(context.Background(), AuditEntry{Result: "success"}))
	require.Error(t, svc.Log(context.Background(), AuditEntry{Action: "x"}))
}

func TestAuditServiceCleanupOlderThan(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	old := models.AuditLog{
		Action:    "old.action",
		Result:    "success",
		CreatedAt: time.Now().AddDate(0, 0, -10),
	}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, svc.Log(context.Background(), AuditEntry{Action: "new.action", Result: "success"}))

	rows, err := svc.CleanupOlderThan(context.Background(), 5)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	_, err = svc.CleanupOlderThan(context.Background(), 0)
	require.Error(t, err)
}
