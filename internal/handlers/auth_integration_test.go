package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mathew1327/Construction-tracker/internal/handlers/testutil"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
)

func TestSetupHandler_InitializeOnce(t *testing.T) {
	env := testutil.NewEnv(t)

	status := env.Request(http.MethodGet, "/api/setup/status", nil, "")
	require.Equal(t, http.StatusOK, status.Code)
	var before map[string]bool
	testutil.DecodeInto(t, testutil.DecodeResponse(t, status).Data, &before)
	require.False(t, before["initialized"])

	admin := env.CreateAdmin("admin@example.com", "AdminPassw0rd!")
	require.Equal(t, permissions.AdministratorRole, admin.User.RoleName)
	require.ElementsMatch(t, permissions.Names(), admin.User.Permissions)

	again := env.Request(http.MethodPost, "/api/setup/initialize", map[string]string{
		"full_name": "Second Admin",
		"email":     "second@example.com",
		"password":  "AdminPassw0rd!",
	}, "")
	require.Equal(t, http.StatusConflict, again.Code)
	require.Equal(t, "ALREADY_INITIALIZED", testutil.DecodeResponse(t, again).Error.Code)
}

func TestAuthHandler_SignupGrantsNoPermissions(t *testing.T) {
	env := testutil.NewEnv(t)

	signup := env.Request(http.MethodPost, "/api/auth/signup", map[string]string{
		"full_name": "Walk In",
		"email":     "Walk.In@Example.com",
		"password":  "WalkInPassw0rd",
	}, "")
	require.Equal(t, http.StatusCreated, signup.Code, signup.Body.String())

	login := env.Login("walk.in@example.com", "WalkInPassw0rd")
	require.Nil(t, login.User.RoleID)
	require.Empty(t, login.User.Permissions)

	projects := env.Request(http.MethodGet, "/api/projects", nil, login.Tokens.AccessToken)
	require.Equal(t, http.StatusForbidden, projects.Code)

	mine := env.Request(http.MethodGet, "/api/permissions/my", nil, login.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, mine.Code)

	duplicate := env.Request(http.MethodPost, "/api/auth/signup", map[string]string{
		"full_name": "Walk In Again",
		"email":     "walk.in@example.com",
		"password":  "WalkInPassw0rd",
	}, "")
	require.Equal(t, http.StatusBadRequest, duplicate.Code, duplicate.Body.String())
	require.Equal(t, "VALIDATION_FAILED", testutil.DecodeResponse(t, duplicate).Error.Code)
}

func TestAuthHandler_LoginRefreshLogout(t *testing.T) {
	env := testutil.NewEnv(t)
	login := env.CreateAdmin("admin@example.com", "AuthPassw0rd!")
	token := login.Tokens.AccessToken

	me := env.Request(http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, me.Code)
	var meData testutil.UserPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, me).Data, &meData)
	require.Equal(t, login.User.ID, meData.ID)
	require.Equal(t, "admin@example.com", meData.Email)

	refresh := env.Request(http.MethodPost, "/api/auth/refresh", map[string]string{"refresh_token": login.Tokens.RefreshToken}, "")
	require.Equal(t, http.StatusOK, refresh.Code, refresh.Body.String())
	var refreshed testutil.TokenPair
	testutil.DecodeInto(t, testutil.DecodeResponse(t, refresh).Data, &refreshed)
	require.NotEmpty(t, refreshed.AccessToken)
	require.NotEqual(t, login.Tokens.RefreshToken, refreshed.RefreshToken)

	logout := env.Request(http.MethodPost, "/api/auth/logout", nil, refreshed.AccessToken)
	require.Equal(t, http.StatusOK, logout.Code)

	revoked := env.Request(http.MethodGet, "/api/auth/me", nil, refreshed.AccessToken)
	require.Equal(t, http.StatusUnauthorized, revoked.Code)

	unauth := env.Request(http.MethodGet, "/api/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, unauth.Code)
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	env := testutil.NewEnv(t)
	env.CreateAdmin("admin@example.com", "AuthPassw0rd!")

	invalid := env.Request(http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "not-an-email",
		"password": "",
	}, "")
	require.Equal(t, http.StatusBadRequest, invalid.Code)
	decoded := testutil.DecodeResponse(t, invalid)
	require.False(t, decoded.Success)
	require.Equal(t, "VALIDATION_FAILED", decoded.Error.Code)

	wrong := env.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	require.Equal(t, "INVALID_CREDENTIALS", testutil.DecodeResponse(t, wrong).Error.Code)

	badRefresh := env.Request(http.MethodPost, "/api/auth/refresh", map[string]string{"refresh_token": "nope"}, "")
	require.Equal(t, http.StatusUnauthorized, badRefresh.Code)
}
