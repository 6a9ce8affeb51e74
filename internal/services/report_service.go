package services

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"sort"
	"strconv"
)

// ExpenseReportRow is one line of the expense report.
type ExpenseReportRow struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
}

// CategoryTotal is the summed amount for one expense category.
type CategoryTotal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ExpenseReport combines report rows with their category breakdown.
type ExpenseReport struct {
	Rows      []ExpenseReportRow `json:"rows"`
	Breakdown []CategoryTotal    `json:"breakdown"`
	Total     float64            `json:"total"`
}

// ReportService builds expense reports.
type ReportService struct {
	expenses *ExpenseService
}

// NewReportService constructs a ReportService on top of the expense ledger.
func NewReportService(expenses *ExpenseService) (*ReportService, error) {
	if expenses == nil {
		return nil, errors.New("report service: expense service is required")
	}
	return &ReportService{expenses: expenses}, nil
}

// ExpenseReport returns every expense newest first with per-category totals.
func (s *ReportService) ExpenseReport(ctx context.Context) (*ExpenseReport, error) {
	views, err := s.expenses.List(ctx, "")
	if err != nil {
		return nil, err
	}

	report := &ExpenseReport{
		Rows:      make([]ExpenseReportRow, 0, len(views)),
		Breakdown: []CategoryTotal{},
	}
	totals := make(map[string]float64)
	for _, v := range views {
		report.Rows = append(report.Rows, ExpenseReportRow{
			ID:       v.ID,
			Category: v.Category,
			Amount:   v.Amount,
			Date:     v.Date.Format(dateLayout),
		})
		totals[v.Category] += v.Amount
		report.Total += v.Amount
	}
	for name, value := range totals {
		report.Breakdown = append(report.Breakdown, CategoryTotal{Name: name, Value: value})
	}
	sort.Slice(report.Breakdown, func(i, j int) bool {
		return report.Breakdown[i].Name < report.Breakdown[j].Name
	})
	return report, nil
}

// WriteExpenseCSV streams the report rows as CSV with a header line.
func (s *ReportService) WriteExpenseCSV(ctx context.Context, w io.Writer) error {
	report, err := s.ExpenseReport(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Category", "Amount", "Date"}); err != nil {
		return err
	}
	for _, row := range report.Rows {
		record := []string{row.Category, strconv.FormatFloat(row.Amount, 'f', 2, 64), row.Date}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

