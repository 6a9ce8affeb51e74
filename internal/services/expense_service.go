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

// ExpenseCategories lists the accepted expense categories in display order.
var ExpenseCategories = []string{
	models.ExpenseCategoryLabour,
	models.ExpenseCategoryMaterials,
	models.ExpenseCategoryEquipment,
	models.ExpenseCategoryTransport,
	models.ExpenseCategoryMisc,
}

// ExpenseView is an expense joined with its phase and project names.
type ExpenseView struct {
	ID          string    `json:"id"`
	PhaseID     string    `json:"phase_id"`
	PhaseName   string    `json:"phase_name"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	ProofURL    *string   `json:"proof_url"`
}

// ExpenseInput describes a new expense. Category defaults to Labour and date to today.
type ExpenseInput struct {
	PhaseID  string
	Category string
	Amount   float64
	Date     string
	ProofURL *string
}

// ExpenseService records money spent against phases.
type ExpenseService struct {
	db           *gorm.DB
	auditService *AuditService
	now          func() time.Time
}

// NewExpenseService constructs an ExpenseService.
func NewExpenseService(db *gorm.DB, audit *AuditService) (*ExpenseService, error) {
	if db == nil {
		return nil, errors.New("expense service: db is required")
	}
	return &ExpenseService{db: db, auditService: audit, now: time.Now}, nil
}

// List returns expenses newest first. Search matches category, phase or project name.
func (s *ExpenseService) List(ctx context.Context, search string) ([]ExpenseView, error) {
	ctx = ensureContext(ctx)

	query := s.viewQuery(ctx)
	if strings.TrimSpace(search) != "" {
		pattern := likePattern(search)
		query = query.Where("LOWER(expenses.category) LIKE ? OR LOWER(phases.name) LIKE ? OR LOWER(projects.name) LIKE ?",
			pattern, pattern, pattern)
	}
	return s.scan(query.Order("expenses.date DESC").Order("expenses.created_at DESC"))
}

// Recent returns the latest limit expenses by date.
func (s *ExpenseService) Recent(ctx context.Context, limit int) ([]ExpenseView, error) {
	ctx = ensureContext(ctx)
	return s.scan(s.viewQuery(ctx).Order("expenses.date DESC").Order("expenses.created_at DESC").Limit(limit))
}

// Total sums every expense amount.
func (s *ExpenseService) Total(ctx context.Context) (float64, error) {
	ctx = ensureContext(ctx)

	var total float64
	if err := s.db.WithContext(ctx).Model(&models.Expense{}).Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, gatewayError("expense service: total expenses", err)
	}
	return total, nil
}

// Create validates and inserts an expense.
func (s *ExpenseService) Create(ctx context.Context, input ExpenseInput) (*models.Expense, error) {
	ctx = ensureContext(ctx)

	phaseID := strings.TrimSpace(input.PhaseID)
	if phaseID == "" {
		return nil, apperrors.NewValidation("phase is required")
	}
	if input.Amount <= 0 {
		return nil, apperrors.NewValidation("amount must be greater than zero")
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = models.ExpenseCategoryLabour
	} else if !validExpenseCategory(category) {
		return nil, apperrors.NewValidation("category must be one of " + strings.Join(ExpenseCategories, ", "))
	}

	date := truncateDay(s.now())
	if parsed, err := parseOptionalDate("date", input.Date); err != nil {
		return nil, err
	} else if parsed != nil {
		date = *parsed
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Phase{}).Where("id = ?", phaseID).Count(&count).Error; err != nil {
		return nil, gatewayError("expense service: load phase", err)
	}
	if count == 0 {
		return nil, ErrPhaseNotFound
	}

	expense := &models.Expense{
		PhaseID:  phaseID,
		Category: category,
		Amount:   input.Amount,
		Date:     date,
		ProofURL: optionalID(input.ProofURL),
	}
	if err := s.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, gatewayError("expense service: create expense", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "expense.create",
		Resource: expense.ID,
		Result:   "success",
		Metadata: map[string]any{"phase_id": phaseID, "amount": expense.Amount},
	})
	return expense, nil
}

func (s *ExpenseService) viewQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("expenses").
		Select("expenses.id, expenses.phase_id, phases.name AS phase_name, phases.project_id, " +
			"projects.name AS project_name, expenses.category, expenses.amount, expenses.date, expenses.proof_url").
		Joins("LEFT JOIN phases ON phases.id = expenses.phase_id").
		Joins("LEFT JOIN projects ON projects.id = phases.project_id")
}

func (s *ExpenseService) scan(query *gorm.DB) ([]ExpenseView, error) {
	rows := []ExpenseView{}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, gatewayError("expense service: list expenses", err)
	}
	return rows, nil
}

func validExpenseCategory(category string) bool {
	for _, c := range ExpenseCategories {
		if c == category {
			return true
		}
	}
	return false
}
