package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/cache"
	"github.com/Mathew1327/Construction-tracker/internal/database/testutil"
	"github.com/Mathew1327/Construction-tracker/internal/models"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
	"github.com/Mathew1327/Construction-tracker/pkg/crypto"
	"github.com/Mathew1327/Construction-tracker/pkg/mail"
)

type serviceFixture struct {
	db      *gorm.DB
	audit   *AuditService
	checker *permissions.Checker
	roles   *RoleService
	perms   *PermissionService
	users   *UserService
}

func newServiceFixture(t *testing.T, userOpts ...UserServiceOption) *serviceFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	audit, err := NewAuditService(db)
	require.NoError(t, err)

	checker, err := permissions.NewChecker(db, permissions.WithCache(cache.NewDatabaseStore(db), time.Minute))
	require.NoError(t, err)

	roles, err := NewRoleService(db, audit, checker)
	require.NoError(t, err)
	perms, err := NewPermissionService(db, audit, checker)
	require.NoError(t, err)
	users, err := NewUserService(db, audit, checker, userOpts...)
	require.NoError(t, err)

	return &serviceFixture{
		db:      db,
		audit:   audit,
		checker: checker,
		roles:   roles,
		perms:   perms,
		users:   users,
	}
}

func (f *serviceFixture) createRole(t *testing.T, name string, perms ...string) *models.Role {
	t.Helper()

	role, err := f.roles.CreateRole(context.Background(), CreateRoleInput{Name: name, Permissions: perms})
	require.NoError(t, err)
	return role
}

func (f *serviceFixture) createUser(t *testing.T, email string, roleID *string) *models.User {
	t.Helper()
	return mustCreateUser(t, f.db, email, roleID)
}

func mustCreateUser(t *testing.T, db *gorm.DB, email string, roleID *string) *models.User {
	t.Helper()

	hashed, err := crypto.HashPassword("Password123!")
	require.NoError(t, err)

	user := &models.User{
		FullName: "Test " + email,
		Email:    email,
		Password: hashed,
		RoleID:   roleID,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func mustCreateProject(t *testing.T, db *gorm.DB, name string) *models.Project {
	t.Helper()

	project := &models.Project{Name: name, Type: models.ProjectTypeResidential, Location: "Nairobi"}
	require.NoError(t, db.Create(project).Error)
	return project
}

func mustCreatePhase(t *testing.T, db *gorm.DB, projectID, name string, end *time.Time) *models.Phase {
	t.Helper()

	phase := &models.Phase{ProjectID: projectID, Name: name, Status: models.PhaseStatusNotStarted, EndDate: end}
	require.NoError(t, db.Create(phase).Error)
	return phase
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()

	var count int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&count).Error)
	return count
}

func datePtr(t time.Time) *time.Time {
	return &t
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}
