package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Mathew1327/Construction-tracker/internal/models"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
	apperrors "github.com/Mathew1327/Construction-tracker/pkg/errors"
)

func TestRoleServiceCreateRoleWithPermissions(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	role, err := f.roles.CreateRole(ctx, CreateRoleInput{
		Name:        "  Project Manager ",
		Description: "Runs projects",
		Permissions: []string{permissions.EditProject, permissions.AddProject, permissions.AddProject},
	})
	require.NoError(t, err)
	require.Equal(t, "Project Manager", role.Name)
	require.True(t, role.IsActive)
	require.False(t, role.CreatedAt.IsZero())
	require.Equal(t, []string{permissions.AddProject, permissions.EditProject}, []string(role.PermissionNames))
	require.EqualValues(t, 2, countRows(t, f.db, &models.RolePermission{}, "role_id = ?", role.ID))
}

func TestRoleServiceCreateRoleRejectsBlankName(t *testing.T) {
	f := newServiceFixture(t)
	before := countRows(t, f.db, &models.Role{}, "")

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := f.roles.CreateRole(context.Background(), CreateRoleInput{Name: name})
		require.ErrorIs(t, err, apperrors.ErrValidation)
	}

	require.Equal(t, before, countRows(t, f.db, &models.Role{}, ""))
}

func TestRoleServiceCreateRoleRejectsDuplicateName(t *testing.T) {
	f := newServiceFixture(t)
	f.createRole(t, "Electrician")

	_, err := f.roles.CreateRole(context.Background(), CreateRoleInput{Name: "Electrician"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.EqualValues(t, 1, countRows(t, f.db, &models.Role{}, "name = ?", "Electrician"))
}

func TestRoleServiceCreateRoleUnknownPermissionWritesNothing(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.roles.CreateRole(context.Background(), CreateRoleInput{
		Name:        "Plumber",
		Permissions: []string{permissions.ViewReports, "Bend Pipes"},
	})
	require.ErrorIs(t, err, ErrPermissionNotFound)
	require.Zero(t, countRows(t, f.db, &models.Role{}, "name = ?", "Plumber"))
}

func TestRoleServiceListOrdering(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	clock := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	roles, err := NewRoleService(f.db, f.audit, f.checker, WithRoleClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	require.NoError(t, err)

	for _, name := range []string{"Bricklayer", "Carpenter", "Architect"} {
		_, err := roles.CreateRole(ctx, CreateRoleInput{Name: name})
		require.NoError(t, err)
	}

	byCreated, err := roles.ListActiveRoles(ctx)
	require.NoError(t, err)
	require.Equal(t, "Architect", byCreated[0].Name)
	require.Equal(t, "Carpenter", byCreated[1].Name)
	require.Equal(t, "Bricklayer", byCreated[2].Name)

	byName, err := roles.ListRoles(ctx, ListRolesOptions{OrderBy: RoleOrderName})
	require.NoError(t, err)
	require.Equal(t, permissions.AdministratorRole, byName[0].Name)
	require.Equal(t, "Architect", byName[1].Name)

	_, err = roles.ListRoles(ctx, ListRolesOptions{OrderBy: "size"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRoleServiceGetRoleNotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.roles.GetRole(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestRoleServiceUpdateRole(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	role := f.createRole(t, "Welder", permissions.UpdateProgress)

	updated, err := f.roles.UpdateRole(ctx, role.ID, UpdateRoleInput{Name: "Senior Welder", Description: "Leads welding"})
	require.NoError(t, err)
	require.Equal(t, "Senior Welder", updated.Name)
	require.Equal(t, "Leads welding", updated.Description)
	require.Equal(t, []string{permissions.UpdateProgress}, []string(updated.PermissionNames))

	_, err = f.roles.UpdateRole(ctx, role.ID, UpdateRoleInput{Name: " "})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.roles.UpdateRole(ctx, "missing", UpdateRoleInput{Name: "Ghost"})
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestRoleServiceSystemRoleIsImmutable(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	var admin models.Role
	require.NoError(t, f.db.Take(&admin, "name = ?", permissions.AdministratorRole).Error)

	_, err := f.roles.UpdateRole(ctx, admin.ID, UpdateRoleInput{Name: "Root"})
	require.ErrorIs(t, err, ErrSystemRoleImmutable)

	updated, err := f.roles.UpdateRole(ctx, admin.ID, UpdateRoleInput{Name: admin.Name, Description: "Everything"})
	require.NoError(t, err)
	require.Equal(t, "Everything", updated.Description)

	err = f.roles.DeactivateRole(ctx, admin.ID, DeactivateRoleInput{})
	require.ErrorIs(t, err, ErrSystemRoleImmutable)
}

func TestRoleServiceDeactivateTwiceIsStable(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	role := f.createRole(t, "Painter")

	require.NoError(t, f.roles.DeactivateRole(ctx, role.ID, DeactivateRoleInput{}))
	first, err := f.roles.GetRole(ctx, role.ID)
	require.NoError(t, err)
	require.False(t, first.IsActive)

	require.NoError(t, f.roles.DeactivateRole(ctx, role.ID, DeactivateRoleInput{}))
	second, err := f.roles.GetRole(ctx, role.ID)
	require.NoError(t, err)
	require.False(t, second.IsActive)
	require.Equal(t, first.UpdatedAt, second.UpdatedAt)

	active, err := f.roles.ListActiveRoles(ctx)
	require.NoError(t, err)
	for _, r := range active {
		require.NotEqual(t, role.ID, r.ID)
	}

	all, err := f.roles.ListRoles(ctx, ListRolesOptions{IncludeInactive: true})
	require.NoError(t, err)
	var found bool
	for _, r := range all {
		found = found || r.ID == role.ID
	}
	require.True(t, found)
}

func TestRoleServiceDeactivateRequiresFallbackForAssignedUsers(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	role := f.createRole(t, "Driver")
	user := f.createUser(t, "driver@example.com", &role.ID)

	err := f.roles.DeactivateRole(ctx, role.ID, DeactivateRoleInput{})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	stored, err := f.roles.GetRole(ctx, role.ID)
	require.NoError(t, err)
	require.True(t, stored.IsActive)

	require.NoError(t, f.roles.DeactivateRole(ctx, role.ID, DeactivateRoleInput{Fallback: RoleFallbackUnassign}))

	reloaded, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Nil(t, reloaded.RoleID)
}

func TestRoleServiceDeactivateReassignsUsers(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	oldRole := f.createRole(t, "Labourer")
	newRole := f.createRole(t, "General Worker", permissions.UpdateProgress)
	inactive := f.createRole(t, "Retired")
	require.NoError(t, f.roles.DeactivateRole(ctx, inactive.ID, DeactivateRoleInput{}))
	user := f.createUser(t, "labourer@example.com", &oldRole.ID)

	err := f.roles.DeactivateRole(ctx, oldRole.ID, DeactivateRoleInput{Fallback: RoleFallbackReassign})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	err = f.roles.DeactivateRole(ctx, oldRole.ID, DeactivateRoleInput{Fallback: RoleFallbackReassign, ReassignToRoleID: inactive.ID})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, f.roles.DeactivateRole(ctx, oldRole.ID, DeactivateRoleInput{
		Fallback:         RoleFallbackReassign,
		ReassignToRoleID: newRole.ID,
	}))

	reloaded, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.RoleID)
	require.Equal(t, newRole.ID, *reloaded.RoleID)

	granted, err := f.checker.GetUserPermissions(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{permissions.UpdateProgress}, granted)
}

func TestRoleServiceDeactivateMissingRole(t *testing.T) {
	f := newServiceFixture(t)

	err := f.roles.DeactivateRole(context.Background(), "missing", DeactivateRoleInput{})
	require.ErrorIs(t, err, ErrRoleNotFound)
}
