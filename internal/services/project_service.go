package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/models"
	apperrors "github.com/Mathew1327/Construction-tracker/pkg/errors"
)

// ProjectView is a project joined with its manager's name.
type ProjectView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Location    string     `json:"location"`
	ManagerID   *string    `json:"manager_id"`
	ManagerName string     `json:"manager_name"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ProjectInput carries create and update attributes. Blank dates are stored as NULL.
type ProjectInput struct {
	Name      string
	Type      string
	Location  string
	ManagerID *string
	StartDate string
	EndDate   string
}

// ProjectService manages construction projects.
type ProjectService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *gorm.DB, audit *AuditService) (*ProjectService, error) {
	if db == nil {
		return nil, errors.New("project service: db is required")
	}
	return &ProjectService{db: db, auditService: audit}, nil
}

// List returns projects newest first, optionally filtered by name or location.
func (s *ProjectService) List(ctx context.Context, search string) ([]ProjectView, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Table("projects").
		Select("projects.id, projects.name, projects.type, projects.location, projects.manager_id, " +
			"users.full_name AS manager_name, projects.start_date, projects.end_date, projects.created_at").
		Joins("LEFT JOIN users ON users.id = projects.manager_id")
	if strings.TrimSpace(search) != "" {
		pattern := likePattern(search)
		query = query.Where("LOWER(projects.name) LIKE ? OR LOWER(projects.location) LIKE ?", pattern, pattern)
	}

	var rows []ProjectView
	if err := query.Order("projects.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, gatewayError("project service: list projects", err)
	}
	if rows == nil {
		rows = []ProjectView{}
	}
	return rows, nil
}

// Get loads a project by id.
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	ctx = ensureContext(ctx)

	var project models.Project
	if err := s.db.WithContext(ctx).Preload("Manager").Take(&project, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(ErrProjectNotFound, "project service: get project", err)
	}
	return &project, nil
}

// Count returns the number of projects.
func (s *ProjectService) Count(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Count(&count).Error; err != nil {
		return 0, gatewayError("project service: count projects", err)
	}
	return count, nil
}

// Create inserts a project.
func (s *ProjectService) Create(ctx context.Context, input ProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	project := &models.Project{}
	if err := s.apply(ctx, project, input); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, gatewayError("project service: create project", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "project.create",
		Resource: project.ID,
		Result:   "success",
		Metadata: map[string]any{"name": project.Name},
	})
	return project, nil
}

// Update overwrites every project attribute.
func (s *ProjectService) Update(ctx context.Context, id string, input ProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, project, input); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":       project.Name,
		"type":       project.Type,
		"location":   project.Location,
		"manager_id": project.ManagerID,
		"start_date": project.StartDate,
		"end_date":   project.EndDate,
	}
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, gatewayError("project service: update project", err)
	}
	project.Manager = nil

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "project.update",
		Resource: project.ID,
		Result:   "success",
	})
	return project, nil
}

func (s *ProjectService) apply(ctx context.Context, project *models.Project, input ProjectInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apperrors.NewValidation("project name is required")
	}
	projectType := strings.TrimSpace(input.Type)
	switch projectType {
	case models.ProjectTypeResidential, models.ProjectTypeCommercial:
	case "":
		return apperrors.NewValidation("project type is required")
	default:
		return apperrors.NewValidation("project type must be Residential or Commercial")
	}

	start, err := parseOptionalDate("start date", input.StartDate)
	if err != nil {
		return err
	}
	end, err := parseOptionalDate("end date", input.EndDate)
	if err != nil {
		return err
	}
	if start != nil && end != nil && end.Before(*start) {
		return apperrors.NewValidation("end date must not be before start date")
	}

	managerID := optionalID(input.ManagerID)
	if managerID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", *managerID).Count(&count).Error; err != nil {
			return gatewayError("project service: load manager", err)
		}
		if count == 0 {
			return ErrUserNotFound
		}
	}

	project.Name = name
	project.Type = projectType
	project.Location = strings.TrimSpace(input.Location)
	project.ManagerID = managerID
	project.StartDate = start
	project.EndDate = end
	return nil
}
