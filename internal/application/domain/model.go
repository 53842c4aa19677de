package domain

import "time"

// Record is biochar spread on a parcel, optionally blended with fertilizer.
type Record struct {
	ID                 int64    `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	OwnerID            string   `json:"owner_id" gorm:"size:128;not null;index"`
	StorageID          int64    `json:"storage_id,string" gorm:"not null;index"`
	ParcelID           int64    `json:"parcel_id,string" gorm:"not null;index"`
	QuantityUsed       float64  `json:"quantity_used" gorm:"type:numeric(14,3);not null"`
	FertilizerID       *int64   `json:"fertilizer_id,string,omitempty" gorm:"index"`
	FertilizerQuantity *float64 `json:"fertilizer_quantity,omitempty" gorm:"type:numeric(14,3)"`
	// MixtureRatio is "biochar:fertilizer" for display only.
	MixtureRatio string    `json:"mixture_ratio" gorm:"size:64;not null"`
	Method       *string   `json:"method,omitempty" gorm:"size:64"`
	AppliedAt    time.Time `json:"applied_at" gorm:"not null"`
	Notes        *string   `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
}

func (Record) TableName() string { return "application_records" }
