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

// PhaseView is a phase joined with its project name.
type PhaseView struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	ProjectName string     `json:"project_name"`
	Name        string     `json:"name"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PhaseInput carries create and update attributes. A blank status means Not Started.
type PhaseInput struct {
	ProjectID string
	Name      string
	StartDate string
	EndDate   string
	Status    string
}

// PhaseService manages project phases.
type PhaseService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewPhaseService constructs a PhaseService.
func NewPhaseService(db *gorm.DB, audit *AuditService) (*PhaseService, error) {
	if db == nil {
		return nil, errors.New("phase service: db is required")
	}
	return &PhaseService{db: db, auditService: audit}, nil
}

// List returns phases ordered by start date, optionally scoped to one project.
func (s *PhaseService) List(ctx context.Context, projectID string) ([]PhaseView, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Table("phases").
		Select("phases.id, phases.project_id, projects.name AS project_name, phases.name, " +
			"phases.start_date, phases.end_date, phases.status, phases.created_at").
		Joins("LEFT JOIN projects ON projects.id = phases.project_id")
	if projectID = strings.TrimSpace(projectID); projectID != "" {
		query = query.Where("phases.project_id = ?", projectID)
	}

	var rows []PhaseView
	if err := query.Order("phases.start_date ASC").Order("phases.created_at ASC").Scan(&rows).Error; err != nil {
		return nil, gatewayError("phase service: list phases", err)
	}
	if rows == nil {
		rows = []PhaseView{}
	}
	return rows, nil
}

// Get loads a phase by id.
func (s *PhaseService) Get(ctx context.Context, id string) (*models.Phase, error) {
	ctx = ensureContext(ctx)

	var phase models.Phase
	if err := s.db.WithContext(ctx).Take(&phase, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(ErrPhaseNotFound, "phase service: get phase", err)
	}
	return &phase, nil
}

// Create inserts a phase.
func (s *PhaseService) Create(ctx context.Context, input PhaseInput) (*models.Phase, error) {
	ctx = ensureContext(ctx)

	phase := &models.Phase{}
	if err := s.apply(ctx, phase, input); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(phase).Error; err != nil {
		return nil, gatewayError("phase service: create phase", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "phase.create",
		Resource: phase.ID,
		Result:   "success",
		Metadata: map[string]any{"project_id": phase.ProjectID, "name": phase.Name},
	})
	return phase, nil
}

// Update overwrites every phase attribute.
func (s *PhaseService) Update(ctx context.Context, id string, input PhaseInput) (*models.Phase, error) {
	ctx = ensureContext(ctx)

	phase, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, phase, input); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"project_id": phase.ProjectID,
		"name":       phase.Name,
		"start_date": phase.StartDate,
		"end_date":   phase.EndDate,
		"status":     phase.Status,
	}
	if err := s.db.WithContext(ctx).Model(&models.Phase{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, gatewayError("phase service: update phase", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "phase.update",
		Resource: phase.ID,
		Result:   "success",
		Metadata: map[string]any{"status": phase.Status},
	})
	return phase, nil
}

// Delete removes a phase permanently. Expenses recorded against it block the delete.
func (s *PhaseService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var phase models.Phase
		if err := tx.Take(&phase, "id = ?", id).Error; err != nil {
			return notFoundOr(ErrPhaseNotFound, "phase service: load phase", err)
		}

		var expenses int64
		if err := tx.Model(&models.Expense{}).Where("phase_id = ?", id).Count(&expenses).Error; err != nil {
			return gatewayError("phase service: count expenses", err)
		}
		if expenses > 0 {
			return apperrors.NewValidation("phase has recorded expenses and cannot be deleted")
		}

		if err := tx.Delete(&models.Phase{}, "id = ?", id).Error; err != nil {
			return gatewayError("phase service: delete phase", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "phase.delete",
		Resource: id,
		Result:   "success",
	})
	return nil
}

func (s *PhaseService) apply(ctx context.Context, phase *models.Phase, input PhaseInput) error {
	projectID := strings.TrimSpace(input.ProjectID)
	name := strings.TrimSpace(input.Name)
	switch {
	case projectID == "":
		return apperrors.NewValidation("project is required")
	case name == "":
		return apperrors.NewValidation("phase name is required")
	}

	status := strings.TrimSpace(input.Status)
	switch status {
	case "":
		status = models.PhaseStatusNotStarted
	case models.PhaseStatusNotStarted, models.PhaseStatusInProgress, models.PhaseStatusCompleted:
	default:
		return apperrors.NewValidation("status must be Not Started, In Progress or Completed")
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

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return gatewayError("phase service: load project", err)
	}
	if count == 0 {
		return ErrProjectNotFound
	}

	phase.ProjectID = projectID
	phase.Name = name
	phase.StartDate = start
	phase.EndDate = end
	phase.Status = status
	return nil
}
