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

const unknownVendorLabel = "Unknown"

// MaterialView is a material joined with its vendor name.
type MaterialView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	QtyRequired float64   `json:"qty_required"`
	UnitCost    float64   `json:"unit_cost"`
	TotalCost   float64   `json:"total_cost"`
	VendorID    string    `json:"vendor_id"`
	VendorName  string    `json:"vendor_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type materialRow struct {
	ID          string
	Name        string
	QtyRequired float64
	UnitCost    float64
	VendorID    string
	VendorName  *string
	CreatedAt   time.Time
}

// MaterialInput describes a new material. Every field is required.
type MaterialInput struct {
	Name        string
	QtyRequired float64
	UnitCost    float64
	VendorID    string
}

// VendorInput describes a new vendor.
type VendorInput struct {
	Name         string
	ContactEmail string
	Phone        string
}

// MaterialService manages materials and the vendors supplying them.
type MaterialService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewMaterialService constructs a MaterialService.
func NewMaterialService(db *gorm.DB, audit *AuditService) (*MaterialService, error) {
	if db == nil {
		return nil, errors.New("material service: db is required")
	}
	return &MaterialService{db: db, auditService: audit}, nil
}

// List returns materials newest first. Search matches material or vendor name.
func (s *MaterialService) List(ctx context.Context, search string) ([]MaterialView, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Table("materials").
		Select("materials.id, materials.name, materials.qty_required, materials.unit_cost, " +
			"materials.vendor_id, vendors.name AS vendor_name, materials.created_at").
		Joins("LEFT JOIN vendors ON vendors.id = materials.vendor_id")
	if strings.TrimSpace(search) != "" {
		pattern := likePattern(search)
		query = query.Where("LOWER(materials.name) LIKE ? OR LOWER(vendors.name) LIKE ?", pattern, pattern)
	}

	var rows []materialRow
	if err := query.Order("materials.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, gatewayError("material service: list materials", err)
	}

	views := make([]MaterialView, 0, len(rows))
	for _, row := range rows {
		view := MaterialView{
			ID:          row.ID,
			Name:        row.Name,
			QtyRequired: row.QtyRequired,
			UnitCost:    row.UnitCost,
			TotalCost:   row.QtyRequired * row.UnitCost,
			VendorID:    row.VendorID,
			VendorName:  unknownVendorLabel,
			CreatedAt:   row.CreatedAt,
		}
		if row.VendorName != nil && *row.VendorName != "" {
			view.VendorName = *row.VendorName
		}
		views = append(views, view)
	}
	return views, nil
}

// TotalQuantity sums the required quantity over every material.
func (s *MaterialService) TotalQuantity(ctx context.Context) (float64, error) {
	ctx = ensureContext(ctx)

	var total float64
	if err := s.db.WithContext(ctx).Model(&models.Material{}).Select("COALESCE(SUM(qty_required), 0)").Scan(&total).Error; err != nil {
		return 0, gatewayError("material service: total quantity", err)
	}
	return total, nil
}

// Create validates and inserts a material.
func (s *MaterialService) Create(ctx context.Context, input MaterialInput) (*models.Material, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	vendorID := strings.TrimSpace(input.VendorID)
	switch {
	case name == "":
		return nil, apperrors.NewValidation("material name is required")
	case input.QtyRequired <= 0:
		return nil, apperrors.NewValidation("quantity must be greater than zero")
	case input.UnitCost <= 0:
		return nil, apperrors.NewValidation("unit cost must be greater than zero")
	case vendorID == "":
		return nil, apperrors.NewValidation("vendor is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Vendor{}).Where("id = ?", vendorID).Count(&count).Error; err != nil {
		return nil, gatewayError("material service: load vendor", err)
	}
	if count == 0 {
		return nil, ErrVendorNotFound
	}

	material := &models.Material{
		Name:        name,
		QtyRequired: input.QtyRequired,
		UnitCost:    input.UnitCost,
		VendorID:    vendorID,
	}
	if err := s.db.WithContext(ctx).Create(material).Error; err != nil {
		return nil, gatewayError("material service: create material", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "material.create",
		Resource: material.ID,
		Result:   "success",
		Metadata: map[string]any{"name": material.Name, "vendor_id": vendorID},
	})
	return material, nil
}

// ListVendors returns every vendor ordered by name.
func (s *MaterialService) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	ctx = ensureContext(ctx)

	vendors := []models.Vendor{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&vendors).Error; err != nil {
		return nil, gatewayError("material service: list vendors", err)
	}
	return vendors, nil
}

// CreateVendor inserts a vendor. Names are unique.
func (s *MaterialService) CreateVendor(ctx context.Context, input VendorInput) (*models.Vendor, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("vendor name is required")
	}

	vendor := &models.Vendor{
		Name:         name,
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		Phone:        strings.TrimSpace(input.Phone),
	}
	if err := s.db.WithContext(ctx).Create(vendor).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewValidation("vendor name already exists")
		}
		return nil, gatewayError("material service: create vendor", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "vendor.create",
		Resource: vendor.ID,
		Result:   "success",
		Metadata: map[string]any{"name": vendor.Name},
	})
	return vendor, nil
}
