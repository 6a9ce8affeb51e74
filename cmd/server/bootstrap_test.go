package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mathew1327/Construction-tracker/internal/app"
	"github.com/Mathew1327/Construction-tracker/internal/models"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
)

func TestConvertDatabaseConfig(t *testing.T) {
	cfg := &app.Config{Database: app.DatabaseConfig{Driver: " SQLite ", Path: " ./data/db.sqlite "}}
	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "sqlite", dbCfg.Driver)
	require.Equal(t, "./data/db.sqlite", dbCfg.Path)

	cfg = &app.Config{Database: app.DatabaseConfig{
		Driver: "postgresql",
		Postgres: app.DBAuthConfig{
			Host:     "db.internal",
			Port:     5433,
			Database: "tracker",
			Username: "tracker",
			Password: " secret ",
		},
	}}
	dbCfg = convertDatabaseConfig(cfg)
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, 5433, dbCfg.Port)
	require.Equal(t, "tracker", dbCfg.Name)
	require.Equal(t, "secret", dbCfg.Password)

	cfg = &app.Config{Database: app.DatabaseConfig{
		Driver: "mysql",
		MySQL:  app.DBAuthConfig{Host: "mysql.internal", Port: 3306, Database: "tracker"},
	}}
	dbCfg = convertDatabaseConfig(cfg)
	require.Equal(t, "mysql", dbCfg.Driver)
	require.Equal(t, "mysql.internal", dbCfg.Host)

	dbCfg = convertDatabaseConfig(&app.Config{Database: app.DatabaseConfig{Driver: "oracle"}})
	require.Equal(t, "oracle", dbCfg.Driver)
}

func TestEnsureSecretsPresent(t *testing.T) {
	require.Error(t, ensureSecretsPresent(nil))

	cfg := &app.Config{}
	cfg.Auth.JWT.Secret = "   "
	require.Error(t, ensureSecretsPresent(cfg))

	cfg.Auth.JWT.Secret = " secret "
	require.NoError(t, ensureSecretsPresent(cfg))
	require.Equal(t, "secret", cfg.Auth.JWT.Secret)

	cfg.Email.SMTP.Enabled = true
	require.Error(t, ensureSecretsPresent(cfg))
	cfg.Email.SMTP.Host = "smtp.example.com"
	require.NoError(t, ensureSecretsPresent(cfg))
}

func TestLoadApplicationConfigMissingPath(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestBootstrapRuntimeServesRequests(t *testing.T) {
	dir := t.TempDir()
	cfg := &app.Config{
		Database: app.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "ctracker.sqlite")},
		Storage:  app.StorageConfig{Path: filepath.Join(dir, "documents"), MaxUploadSize: 1 << 20},
		Monitoring: app.MonitoringConfig{
			Health: app.HealthConfig{Enabled: true},
		},
		Auth: app.AuthConfig{
			JWT:                app.JWTSettings{Secret: "bootstrap-secret", Issuer: "test", TTL: time.Minute},
			EnforcePermissions: true,
		},
		Maintenance: app.MaintenanceConfig{Schedule: "@every 1h", AuditRetentionDays: 30},
	}

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	var count int64
	require.NoError(t, stack.DB.Model(&models.Permission{}).Count(&count).Error)
	require.Equal(t, int64(len(permissions.Names())), count)

	var admin models.Role
	require.NoError(t, stack.DB.Take(&admin, "name = ?", permissions.AdministratorRole).Error)
	require.True(t, admin.IsSystem)

	rec := httptest.NewRecorder()
	stack.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, stack.Shutdown(context.Background(), zap.NewNop()))
}

func TestBootstrapRuntimeRejectsUnknownDriver(t *testing.T) {
	cfg := &app.Config{Database: app.DatabaseConfig{Driver: "oracle"}}
	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "open database")
}

func TestShutdownNilStack(t *testing.T) {
	var stack *runtimeStack
	require.NoError(t, stack.Shutdown(context.Background(), zap.NewNop()))
}
