package domain

import (
	"time"

	"github.com/smallbiznis/agrichar/internal/conservation"
)

// Record holds the full output of one completed batch. Remaining is drawn
// down by applications.
type Record struct {
	ID             int64                      `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	OwnerID        string                     `json:"owner_id" gorm:"size:128;not null;index:ix_storage_records_owner_status,priority:1"`
	BatchID        int64                      `json:"batch_id,string" gorm:"not null;uniqueIndex"`
	Location       string                     `json:"location" gorm:"size:255;not null"`
	QuantityStored float64                    `json:"quantity_stored" gorm:"type:numeric(14,3);not null"`
	Remaining      float64                    `json:"remaining" gorm:"type:numeric(14,3);not null"`
	Status         conservation.StorageStatus `json:"status" gorm:"size:16;not null;index:ix_storage_records_owner_status,priority:2"`
	StoredAt       time.Time                  `json:"stored_at" gorm:"not null"`
	CreatedAt      time.Time                  `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time                  `json:"updated_at" gorm:"not null"`
}

func (Record) TableName() string { return "storage_records" }
