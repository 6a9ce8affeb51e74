package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Mathew1327/Construction-tracker/internal/models"
)

const (
	recentPhaseLimit    = 3
	recentExpenseLimit  = 2
	recentActivityLimit = 5
)

// DashboardStats are the headline figures on the landing page.
type DashboardStats struct {
	Projects         int64   `json:"projects"`
	TotalExpenses    float64 `json:"total_expenses"`
	MaterialQuantity float64 `json:"material_quantity"`
	TeamMembers      int64   `json:"team_members"`
}

// Activity is one entry in the recent activity feed.
type Activity struct {
	ID      string     `json:"id"`
	Type    string     `json:"type"`
	Message string     `json:"message"`
	At      *time.Time `json:"at"`
}

// DashboardService aggregates figures across the other ledgers.
type DashboardService struct {
	db        *gorm.DB
	projects  *ProjectService
	expenses  *ExpenseService
	materials *MaterialService
	users     *UserService
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(db *gorm.DB, projects *ProjectService, expenses *ExpenseService, materials *MaterialService, users *UserService) (*DashboardService, error) {
	if db == nil {
		return nil, errors.New("dashboard service: db is required")
	}
	if projects == nil || expenses == nil || materials == nil || users == nil {
		return nil, errors.New("dashboard service: dependent services are required")
	}
	return &DashboardService{db: db, projects: projects, expenses: expenses, materials: materials, users: users}, nil
}

// Stats computes the dashboard headline figures.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	ctx = ensureContext(ctx)

	var (
		stats DashboardStats
		err   error
	)
	if stats.Projects, err = s.projects.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalExpenses, err = s.expenses.Total(ctx); err != nil {
		return nil, err
	}
	if stats.MaterialQuantity, err = s.materials.TotalQuantity(ctx); err != nil {
		return nil, err
	}
	if stats.TeamMembers, err = s.users.CountUsers(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecentActivities lists the latest phases by end date followed by the latest expenses.
func (s *DashboardService) RecentActivities(ctx context.Context) ([]Activity, error) {
	ctx = ensureContext(ctx)

	var phases []models.Phase
	if err := s.db.WithContext(ctx).
		Order("end_date DESC").
		Limit(recentPhaseLimit).
		Find(&phases).Error; err != nil {
		return nil, gatewayError("dashboard service: recent phases", err)
	}

	expenses, err := s.expenses.Recent(ctx, recentExpenseLimit)
	if err != nil {
		return nil, err
	}

	activities := make([]Activity, 0, len(phases)+len(expenses))
	for _, p := range phases {
		activities = append(activities, Activity{
			ID:      "phase-" + p.ID,
			Type:    "project",
			Message: fmt.Sprintf("Phase %q status: %s", p.Name, p.Status),
			At:      p.EndDate,
		})
	}
	for _, e := range expenses {
		at := e.Date
		activities = append(activities, Activity{
			ID:      "expense-" + e.ID,
			Type:    "expense",
			Message: "Expense of $" + strconv.FormatFloat(e.Amount, 'f', -1, 64) + " recorded",
			At:      &at,
		})
	}
	if len(activities) > recentActivityLimit {
		activities = activities[:recentActivityLimit]
	}
	return activities, nil
}
