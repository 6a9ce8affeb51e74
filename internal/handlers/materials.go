package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/services"
	"github.com/Mathew1327/Construction-tracker/pkg/response"
)

// MaterialHandler serves materials and the vendors supplying them.
type MaterialHandler struct {
	materials *services.MaterialService
}

func NewMaterialHandler(materials *services.MaterialService) *MaterialHandler {
	return &MaterialHandler{materials: materials}
}

type materialRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	QtyRequired float64 `json:"qty_required" validate:"gt=0"`
	UnitCost    float64 `json:"unit_cost" validate:"gt=0"`
	VendorID    string  `json:"vendor_id" validate:"required"`
}

type vendorRequest struct {
	Name         string `json:"name" validate:"required,notblank,max=255"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=32"`
}

// GET /api/materials
func (h *MaterialHandler) List(c *gin.Context) {
	materials, err := h.materials.List(requestContext(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, materials)
}

// POST /api/materials
func (h *MaterialHandler) Create(c *gin.Context) {
	var req materialRequest
	if !bindAndValidate(c, &req) {
		return
	}

	material, err := h.materials.Create(actorContext(c), services.MaterialInput{
		Name:        req.Name,
		QtyRequired: req.QtyRequired,
		UnitCost:    req.UnitCost,
		VendorID:    req.VendorID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, material)
}

// GET /api/vendors
func (h *MaterialHandler) ListVendors(c *gin.Context) {
	vendors, err := h.materials.ListVendors(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, vendors)
}

// POST /api/vendors
func (h *MaterialHandler) CreateVendor(c *gin.Context) {
	var req vendorRequest
	if !bindAndValidate(c, &req) {
		return
	}

	vendor, err := h.materials.CreateVendor(actorContext(c), services.VendorInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, vendor)
}
