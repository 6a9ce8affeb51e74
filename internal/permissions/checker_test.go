package permissions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/cache"
	"github.com/Mathew1327/Construction-tracker/internal/models"
)

type checkerFixture struct {
	db   *gorm.DB
	role models.Role
	user models.User
}

func newCheckerFixture(t *testing.T, grants ...string) checkerFixture {
	t.Helper()

	db := setupPermissionTestDB(t)
	require.NoError(t, Sync(context.Background(), db))

	role := models.Role{Name: "Site Engineer", IsActive: true}
	require.NoError(t, db.Create(&role).Error)
	for _, name := range grants {
		grant(t, db, role.ID, name)
	}

	user := models.User{FullName: "Ada Mensah", Email: "ada@site.test", Password: "hashed", RoleID: &role.ID, IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	return checkerFixture{db: db, role: role, user: user}
}

func grant(t *testing.T, db *gorm.DB, roleID, name string) {
	t.Helper()
	var perm models.Permission
	require.NoError(t, db.Take(&perm, "name = ?", name).Error)
	require.NoError(t, db.Create(&models.RolePermission{RoleID: roleID, PermissionID: perm.ID}).Error)
}

func TestCheckerGrantsThroughRole(t *testing.T) {
	fx := newCheckerFixture(t, ManageMaterials, ViewReports)

	checker, err := NewChecker(fx.db)
	require.NoError(t, err)

	ok, err := checker.Check(context.Background(), fx.user.ID, ManageMaterials)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = checker.Check(context.Background(), fx.user.ID, ManageRoles)
	require.NoError(t, err)
	require.False(t, ok)

	perms, err := checker.GetUserPermissions(context.Background(), fx.user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{ManageMaterials, ViewReports}, perms)
}

func TestCheckerInactiveRoleGrantsNothing(t *testing.T) {
	fx := newCheckerFixture(t, ManageMaterials)
	require.NoError(t, fx.db.Model(&models.Role{}).Where("id = ?", fx.role.ID).Update("is_active", false).Error)

	checker, err := NewChecker(fx.db)
	require.NoError(t, err)

	ok, err := checker.Check(context.Background(), fx.user.ID, ManageMaterials)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckerUserWithoutRoleOrInactive(t *testing.T) {
	fx := newCheckerFixture(t, ManageMaterials)

	loner := models.User{FullName: "No Role", Email: "norole@site.test", Password: "x", IsActive: true}
	require.NoError(t, fx.db.Create(&loner).Error)
	require.NoError(t, fx.db.Model(&models.User{}).Where("id = ?", fx.user.ID).Update("is_active", false).Error)

	checker, err := NewChecker(fx.db)
	require.NoError(t, err)

	for _, id := range []string{loner.ID, fx.user.ID, "missing"} {
		perms, err := checker.GetUserPermissions(context.Background(), id)
		require.NoError(t, err)
		require.Empty(t, perms)
	}
}

func TestCheckerRequiresInputs(t *testing.T) {
	_, err := NewChecker(nil)
	require.Error(t, err)

	fx := newCheckerFixture(t)
	checker, err := NewChecker(fx.db)
	require.NoError(t, err)

	_, err = checker.Check(context.Background(), fx.user.ID, " ")
	require.Error(t, err)
	_, err = checker.Check(context.Background(), "", ManageMaterials)
	require.Error(t, err)
}

func TestCheckerCacheServesUntilInvalidated(t *testing.T) {
	fx := newCheckerFixture(t, ManageMaterials)
	store := cache.NewDatabaseStore(fx.db)

	checker, err := NewChecker(fx.db, WithCache(store, time.Minute))
	require.NoError(t, err)
	ctx := context.Background()

	perms, err := checker.RolePermissions(ctx, fx.role.ID)
	require.NoError(t, err)
	require.Equal(t, []string{ManageMaterials}, perms)

	grant(t, fx.db, fx.role.ID, ViewReports)

	perms, err = checker.RolePermissions(ctx, fx.role.ID)
	require.NoError(t, err)
	require.Equal(t, []string{ManageMaterials}, perms, "cached value expected before invalidation")

	require.NoError(t, checker.Invalidate(ctx, fx.role.ID))

	perms, err = checker.RolePermissions(ctx, fx.role.ID)
	require.NoError(t, err)
	require.Equal(t, []string{ManageMaterials, ViewReports}, perms)
}

func TestCheckerIgnoresResultsReadBeforeInvalidation(t *testing.T) {
	fx := newCheckerFixture(t, ManageMaterials)
	store := cache.NewDatabaseStore(fx.db)

	checker, err := NewChecker(fx.db, WithCache(store, time.Minute))
	require.NoError(t, err)
	ctx := context.Background()

	// A lookup that read the generation and the old grants before the change.
	before, err := checker.generation(ctx, fx.role.ID)
	require.NoError(t, err)

	grant(t, fx.db, fx.role.ID, ViewReports)
	require.NoError(t, checker.Invalidate(ctx, fx.role.ID))

	// Its late cache write lands after the invalidation.
	checker.store(ctx, fx.role.ID, before, []string{ManageMaterials})

	perms, err := checker.RolePermissions(ctx, fx.role.ID)
	require.NoError(t, err)
	require.Equal(t, []string{ManageMaterials, ViewReports}, perms)

	after, err := checker.generation(ctx, fx.role.ID)
	require.NoError(t, err)
	require.Greater(t, after, before)

	perms, err = checker.RolePermissions(ctx, fx.role.ID)
	require.NoError(t, err)
	require.Equal(t, []string{ManageMaterials, ViewReports}, perms)
}
