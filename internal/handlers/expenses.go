package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/services"
	"github.com/Mathew1327/Construction-tracker/pkg/response"
)

type ExpenseHandler struct {
	expenses *services.ExpenseService
}

func NewExpenseHandler(expenses *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

type expenseRequest struct {
	PhaseID  string  `json:"phase_id" validate:"required"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount" validate:"gt=0"`
	Date     string  `json:"date"`
	ProofURL *string `json:"proof_url" validate:"omitempty,url"`
}

// GET /api/expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	expenses, err := h.expenses.List(requestContext(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, expenses)
}

// GET /api/expenses/categories
func (h *ExpenseHandler) Categories(c *gin.Context) {
	response.Success(c, http.StatusOK, services.ExpenseCategories)
}

// POST /api/expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req expenseRequest
	if !bindAndValidate(c, &req) {
		return
	}

	expense, err := h.expenses.Create(actorContext(c), services.ExpenseInput{
		PhaseID:  req.PhaseID,
		Category: req.Category,
		Amount:   req.Amount,
		Date:     req.Date,
		ProofURL: req.ProofURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, expense)
}
