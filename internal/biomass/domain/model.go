package domain

import (
	"time"

	"github.com/smallbiznis/agrichar/internal/conservation"
)

// Record is one harvest. Remaining starts at Quantity and is drawn down by
// biochar batches.
type Record struct {
	ID              int64                      `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	OwnerID         string                     `json:"owner_id" gorm:"size:128;not null;index:ix_biomass_records_owner_status,priority:1"`
	ParcelID        int64                      `json:"parcel_id,string" gorm:"not null;index"`
	CropType        string                     `json:"crop_type" gorm:"size:128;not null"`
	CropKey         string                     `json:"crop_key" gorm:"size:160;not null;index"`
	HarvestDate     time.Time                  `json:"harvest_date" gorm:"not null"`
	Quantity        float64                    `json:"quantity" gorm:"type:numeric(14,3);not null"`
	Remaining       float64                    `json:"remaining" gorm:"type:numeric(14,3);not null"`
	MoistureContent *float64                   `json:"moisture_content,omitempty" gorm:"type:numeric(5,2)"`
	Status          conservation.BiomassStatus `json:"status" gorm:"size:16;not null;index:ix_biomass_records_owner_status,priority:2"`
	Notes           *string                    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt       time.Time                  `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time                  `json:"updated_at" gorm:"not null"`
}

func (Record) TableName() string { return "biomass_records" }
