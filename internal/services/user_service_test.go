package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mathew1327/Construction-tracker/internal/models"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
	"github.com/Mathew1327/Construction-tracker/pkg/crypto"
	apperrors "github.com/Mathew1327/Construction-tracker/pkg/errors"
)

func TestUserServiceResolveRoleName(t *testing.T) {
	f := newServiceFixture(t)
	role := f.createRole(t, "Site Engineer")

	name, err := f.users.ResolveRoleName(context.Background(), role.ID)
	require.NoError(t, err)
	require.Equal(t, "Site Engineer", name)

	_, err = f.users.ResolveRoleName(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestUserServiceResolveEffectivePermissions(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	role := f.createRole(t, "Accountant", permissions.ViewExpenses, permissions.ManageExpenses)

	withRole := f.createUser(t, "accountant@example.com", &role.ID)
	withoutRole := f.createUser(t, "norole@example.com", nil)

	names, err := f.users.ResolveEffectivePermissions(ctx, withRole.ID)
	require.NoError(t, err)
	require.Equal(t, []string{permissions.ManageExpenses, permissions.ViewExpenses}, names)

	names, err = f.users.ResolveEffectivePermissions(ctx, withoutRole.ID)
	require.NoError(t, err)
	require.Empty(t, names)

	_, err = f.users.ResolveEffectivePermissions(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, f.roles.DeactivateRole(ctx, role.ID, DeactivateRoleInput{Fallback: RoleFallbackUnassign}))
	names, err = f.users.ResolveEffectivePermissions(ctx, withRole.ID)
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestUserServiceListUsersLabelsMissingReferences(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	role := f.createRole(t, "Mason")
	project := mustCreateProject(t, f.db, "Riverside Towers")

	f.createUser(t, "norole@example.com", nil)
	mason := f.createUser(t, "mason@example.com", &role.ID)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", mason.ID).Update("project_id", project.ID).Error)

	users, err := f.users.ListUsers(ctx, ListUsersOptions{})
	require.NoError(t, err)
	require.Len(t, users, 2)

	byEmail := map[string]UserView{}
	for _, u := range users {
		byEmail[u.Email] = u
	}
	require.Equal(t, "N/A", byEmail["norole@example.com"].RoleName)
	require.Equal(t, "None", byEmail["norole@example.com"].ProjectName)
	require.Equal(t, "Mason", byEmail["mason@example.com"].RoleName)
	require.Equal(t, "Riverside Towers", byEmail["mason@example.com"].ProjectName)

	filtered, err := f.users.ListUsers(ctx, ListUsersOptions{RoleName: "Mason"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, mason.ID, filtered[0].ID)
}

func TestUserServiceCreateUserSendsWelcome(t *testing.T) {
	mailer := &recordingMailer{}
	f := newServiceFixture(t, WithWelcomeMailer(mailer, "https://tracker.example.com/login"))
	role := f.createRole(t, "Surveyor")

	created, err := f.users.CreateUser(context.Background(), CreateUserInput{
		FullName: "Jane Doe",
		Email:    " Jane@Example.com ",
		RoleID:   role.ID,
	})
	require.NoError(t, err)
	require.True(t, created.EmailSent)
	require.Empty(t, created.TemporaryPassword)
	require.Equal(t, "jane@example.com", created.User.Email)
	require.Equal(t, role.ID, *created.User.RoleID)

	sent := mailer.messages()
	require.Len(t, sent, 1)
	require.Equal(t, []string{"jane@example.com"}, sent[0].To)
	require.Contains(t, sent[0].Body, "Surveyor")
}

func TestUserServiceCreateUserMailFailureIsNotFatal(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	f := newServiceFixture(t, WithWelcomeMailer(mailer, ""))
	role := f.createRole(t, "Roofer")

	created, err := f.users.CreateUser(context.Background(), CreateUserInput{
		FullName: "Sam Roof",
		Email:    "sam@example.com",
		RoleID:   role.ID,
	})
	require.NoError(t, err)
	require.False(t, created.EmailSent)
	require.NotEmpty(t, created.TemporaryPassword)

	var stored models.User
	require.NoError(t, f.db.Take(&stored, "id = ?", created.User.ID).Error)
	require.True(t, crypto.VerifyPassword(stored.Password, created.TemporaryPassword))
}

func TestUserServiceCreateUserValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	role := f.createRole(t, "Glazier")
	inactive := f.createRole(t, "Former")
	require.NoError(t, f.roles.DeactivateRole(ctx, inactive.ID, DeactivateRoleInput{}))

	cases := []CreateUserInput{
		{Email: "a@example.com", RoleID: role.ID},
		{FullName: "A", RoleID: role.ID},
		{FullName: "A", Email: "a@example.com"},
		{FullName: "A", Email: "a@example.com", RoleID: inactive.ID},
	}
	for _, input := range cases {
		_, err := f.users.CreateUser(ctx, input)
		require.ErrorIs(t, err, apperrors.ErrValidation)
	}

	_, err := f.users.CreateUser(ctx, CreateUserInput{FullName: "A", Email: "a@example.com", RoleID: "missing"})
	require.ErrorIs(t, err, ErrRoleNotFound)

	missingProject := "missing"
	_, err = f.users.CreateUser(ctx, CreateUserInput{FullName: "A", Email: "a@example.com", RoleID: role.ID, ProjectID: &missingProject})
	require.ErrorIs(t, err, ErrProjectNotFound)

	f.createUser(t, "taken@example.com", nil)
	_, err = f.users.CreateUser(ctx, CreateUserInput{FullName: "B", Email: "taken@example.com", RoleID: role.ID})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUserServiceRegisterCreatesUserWithoutRole(t *testing.T) {
	f := newServiceFixture(t)

	user, err := f.users.Register(context.Background(), RegisterInput{
		FullName: "Self Service",
		Email:    "self@example.com",
		Password: "longenough",
	})
	require.NoError(t, err)
	require.Nil(t, user.RoleID)
	require.True(t, user.IsActive)

	_, err = f.users.Register(context.Background(), RegisterInput{FullName: "Short", Email: "short@example.com", Password: "123"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUserServiceUpdateUser(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	role := f.createRole(t, "Tiler")
	user := f.createUser(t, "tiler@example.com", nil)
	project := mustCreateProject(t, f.db, "Harbour View")

	name := "Tina Tiler"
	updated, err := f.users.UpdateUser(ctx, user.ID, UpdateUserInput{
		FullName:  &name,
		RoleID:    &role.ID,
		ProjectID: &project.ID,
	})
	require.NoError(t, err)
	require.Equal(t, name, updated.FullName)
	require.Equal(t, role.ID, *updated.RoleID)
	require.Equal(t, project.ID, *updated.ProjectID)

	empty := ""
	updated, err = f.users.UpdateUser(ctx, user.ID, UpdateUserInput{RoleID: &empty, ProjectID: &empty})
	require.NoError(t, err)
	require.Nil(t, updated.RoleID)
	require.Nil(t, updated.ProjectID)

	blank := "  "
	_, err = f.users.UpdateUser(ctx, user.ID, UpdateUserInput{FullName: &blank})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.users.UpdateUser(ctx, "missing", UpdateUserInput{FullName: &name})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceDeactivateUserRevokesSessions(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "leaver@example.com", nil)

	session := models.Session{UserID: user.ID, TokenHash: crypto.HashToken("refresh")}
	require.NoError(t, f.db.Create(&session).Error)

	require.NoError(t, f.users.DeactivateUser(ctx, user.ID))
	require.NoError(t, f.users.DeactivateUser(ctx, user.ID))

	reloaded, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsActive)

	var stored models.Session
	require.NoError(t, f.db.Take(&stored, "id = ?", session.ID).Error)
	require.NotNil(t, stored.RevokedAt)

	active, err := f.users.ListUsers(ctx, ListUsersOptions{})
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestUserServiceChangePassword(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "pw@example.com", nil)

	err := f.users.ChangePassword(ctx, user.ID, "wrong", "NewPassword1")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	err = f.users.ChangePassword(ctx, user.ID, "Password123!", "short")
	require.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, f.users.ChangePassword(ctx, user.ID, "Password123!", "NewPassword1"))

	var stored models.User
	require.NoError(t, f.db.Take(&stored, "id = ?", user.ID).Error)
	require.True(t, crypto.VerifyPassword(stored.Password, "NewPassword1"))
}
