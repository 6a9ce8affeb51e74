package models

import "time"

// Expense categories.
const (
	ExpenseCategoryLabour    = "Labour"
	ExpenseCategoryMaterials = "Materials"
	ExpenseCategoryEquipment = "Equipment"
	ExpenseCategoryTransport = "Transport"
	ExpenseCategoryMisc      = "Misc"
)

// Expense is money spent against a project phase.
type Expense struct {
	BaseModel

	PhaseID  string    `gorm:"size:36;not null;index" json:"phase_id"`
	Phase    *Phase    `gorm:"foreignKey:PhaseID" json:"phase,omitempty"`
	Category string    `gorm:"size:32;not null;index" json:"category"`
	Amount   float64   `gorm:"not null" json:"amount"`
	Date     time.Time `gorm:"index" json:"date"`
	ProofURL *string   `json:"proof_url"`
}
