package models

// Material is a required quantity of a supply sourced from a vendor.
type Material struct {
	BaseModel

	Name        string  `gorm:"size:255;not null;index" json:"name"`
	QtyRequired float64 `gorm:"not null" json:"qty_required"`
	UnitCost    float64 `gorm:"not null" json:"unit_cost"`
	VendorID    string  `gorm:"size:36;not null;index" json:"vendor_id"`
	Vendor      *Vendor `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
}
