package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/app"
	iauth "github.com/Mathew1327/Construction-tracker/internal/auth"
	"github.com/Mathew1327/Construction-tracker/internal/cache"
	"github.com/Mathew1327/Construction-tracker/internal/handlers"
	"github.com/Mathew1327/Construction-tracker/internal/middleware"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
	"github.com/Mathew1327/Construction-tracker/internal/services"
	"github.com/Mathew1327/Construction-tracker/internal/storage"
	"github.com/Mathew1327/Construction-tracker/pkg/mail"
)

// Dependencies carries the infrastructure the router wires into services.
// Cache and Mailer are optional.
type Dependencies struct {
	Config   *app.Config
	JWT      *iauth.JWTService
	Sessions *iauth.SessionService
	Cache    cache.Store
	Blobs    storage.BlobStore
	Mailer   mail.Mailer
}

// NewRouter builds the Gin engine, wires middleware and registers the dashboard routes.
func NewRouter(db *gorm.DB, deps Dependencies) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.Blobs == nil {
		return nil, fmt.Errorf("blob store must be provided")
	}
	cfg := deps.Config

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(cfg.Server.HSTS))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowedOrigins...))
	r.Use(middleware.RateLimit(deps.Cache, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))

	svc, err := newServiceSet(db, deps)
	if err != nil {
		return nil, err
	}

	// Routes only require authentication when enforcement is switched off.
	var guard middleware.PermissionChecker
	if cfg.Auth.EnforcePermissions {
		guard = svc.checker
	}

	registerHealthRoutes(r, db, deps)
	registerSetupRoutes(r, handlers.NewSetupHandler(svc.setup))

	api := r.Group("/api")
	authHandler := handlers.NewAuthHandler(svc.auth, svc.users, deps.Sessions)
	registerPublicAuthRoutes(api, authHandler)

	api.Use(middleware.Auth(deps.JWT, deps.Sessions))

	registerAuthRoutes(api, authHandler)
	registerProfileRoutes(api, handlers.NewProfileHandler(svc.users))
	registerUserRoutes(api, handlers.NewUserHandler(svc.users), guard)
	registerRoleRoutes(api, handlers.NewRoleHandler(svc.roles, svc.perms), guard)
	registerPermissionRoutes(api, handlers.NewPermissionHandler(svc.perms, svc.users), guard)
	registerAuditRoutes(api, handlers.NewAuditHandler(svc.audit), guard)
	registerProjectRoutes(api, projectRouteDeps{
		Projects:  handlers.NewProjectHandler(svc.projects),
		Phases:    handlers.NewPhaseHandler(svc.phases),
		Documents: handlers.NewDocumentHandler(svc.documents, cfg.Storage.MaxUploadSize),
		Dashboard: handlers.NewDashboardHandler(svc.dashboard),
	}, guard)
	registerFinanceRoutes(api, financeRouteDeps{
		Expenses:  handlers.NewExpenseHandler(svc.expenses),
		Materials: handlers.NewMaterialHandler(svc.materials),
		Reports:   handlers.NewReportHandler(svc.reports),
	}, guard)

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

type serviceSet struct {
	checker   *permissions.Checker
	audit     *services.AuditService
	auth      *services.AuthService
	setup     *services.SetupService
	users     *services.UserService
	roles     *services.RoleService
	perms     *services.PermissionService
	projects  *services.ProjectService
	phases    *services.PhaseService
	expenses  *services.ExpenseService
	materials *services.MaterialService
	documents *services.DocumentService
	reports   *services.ReportService
	dashboard *services.DashboardService
}

func newServiceSet(db *gorm.DB, deps Dependencies) (*serviceSet, error) {
	cfg := deps.Config
	set := &serviceSet{}
	var err error

	var checkerOpts []permissions.CheckerOption
	if deps.Cache != nil {
		checkerOpts = append(checkerOpts, permissions.WithCache(deps.Cache, cfg.Auth.PermissionCache.TTL))
	}
	if set.checker, err = permissions.NewChecker(db, checkerOpts...); err != nil {
		return nil, err
	}
	if set.audit, err = services.NewAuditService(db); err != nil {
		return nil, err
	}
	if set.auth, err = services.NewAuthService(db, cfg.Auth.LoginThrottle(deps.Cache)); err != nil {
		return nil, err
	}
	if set.setup, err = services.NewSetupService(db, set.audit); err != nil {
		return nil, err
	}

	var userOpts []services.UserServiceOption
	if deps.Mailer != nil {
		userOpts = append(userOpts, services.WithWelcomeMailer(deps.Mailer, cfg.Server.BaseURL))
	}
	if set.users, err = services.NewUserService(db, set.audit, set.checker, userOpts...); err != nil {
		return nil, err
	}
	if set.roles, err = services.NewRoleService(db, set.audit, set.checker); err != nil {
		return nil, err
	}
	if set.perms, err = services.NewPermissionService(db, set.audit, set.checker); err != nil {
		return nil, err
	}
	if set.projects, err = services.NewProjectService(db, set.audit); err != nil {
		return nil, err
	}
	if set.phases, err = services.NewPhaseService(db, set.audit); err != nil {
		return nil, err
	}
	if set.expenses, err = services.NewExpenseService(db, set.audit); err != nil {
		return nil, err
	}
	if set.materials, err = services.NewMaterialService(db, set.audit); err != nil {
		return nil, err
	}
	if set.documents, err = services.NewDocumentService(db, deps.Blobs, set.audit); err != nil {
		return nil, err
	}
	if set.reports, err = services.NewReportService(set.expenses); err != nil {
		return nil, err
	}
	if set.dashboard, err = services.NewDashboardService(db, set.projects, set.expenses, set.materials, set.users); err != nil {
		return nil, err
	}
	return set, nil
}
