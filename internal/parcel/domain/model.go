package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// Parcel is a registered plot of land. Biomass harvests and biochar
// applications reference it.
type Parcel struct {
	ID                     int64             `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	OwnerID                string            `json:"owner_id" gorm:"size:128;not null;index:ix_land_parcels_owner_status,priority:1"`
	Name                   string            `json:"name" gorm:"size:255;not null"`
	Location               *string           `json:"location,omitempty" gorm:"size:255"`
	AreaHectares           float64           `json:"area_hectares" gorm:"type:numeric(12,4);not null"`
	CultivatedAreaHectares *float64          `json:"cultivated_area_hectares,omitempty" gorm:"type:numeric(12,4)"`
	ExpectedYieldTonnes    *float64          `json:"expected_yield_tonnes,omitempty" gorm:"type:numeric(14,3)"`
	ActualYieldTonnes      *float64          `json:"actual_yield_tonnes,omitempty" gorm:"type:numeric(14,3)"`
	SoilType               *string           `json:"soil_type,omitempty" gorm:"size:64"`
	DocumentURLs           datatypes.JSON    `json:"document_urls" gorm:"column:document_urls"`
	Metadata               datatypes.JSONMap `json:"metadata,omitempty"`
	Status                 string            `json:"status" gorm:"size:16;not null;index:ix_land_parcels_owner_status,priority:2"`
	VerificationStatus     string            `json:"verification_status" gorm:"size:16;not null"`
	VerificationNote       *string           `json:"verification_note,omitempty" gorm:"type:text"`
	VerifiedBy             *string           `json:"verified_by,omitempty" gorm:"size:128"`
	VerifiedAt             *time.Time        `json:"verified_at,omitempty"`
	CreatedAt              time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt              time.Time         `json:"updated_at" gorm:"not null"`
}

func (Parcel) TableName() string { return "land_parcels" }

// IsActive reports whether new harvests and applications may reference the parcel.
func (p *Parcel) IsActive() bool {
	return p != nil && p.Status == StatusActive
}
