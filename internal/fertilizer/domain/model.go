package domain

import (
	"time"

	"github.com/smallbiznis/agrichar/internal/conservation"
)

const DefaultUnit = "kg"

// Inventory is a purchased lot of fertilizer. Quantity is the live stock,
// InitialQuantity the purchase amount the low-stock threshold may refer to.
type Inventory struct {
	ID              int64                         `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	OwnerID         string                        `json:"owner_id" gorm:"size:128;not null;index:ix_fertilizer_inventories_owner_status,priority:1"`
	Name            string                        `json:"name" gorm:"size:255;not null"`
	FertilizerType  string                        `json:"fertilizer_type" gorm:"size:64;not null"`
	InitialQuantity float64                       `json:"initial_quantity" gorm:"type:numeric(14,3);not null"`
	Quantity        float64                       `json:"quantity" gorm:"type:numeric(14,3);not null"`
	Unit            string                        `json:"unit" gorm:"size:16;not null"`
	Status          conservation.FertilizerStatus `json:"status" gorm:"size:16;not null;index:ix_fertilizer_inventories_owner_status,priority:2"`
	PurchasedAt     *time.Time                    `json:"purchased_at,omitempty"`
	Supplier        *string                       `json:"supplier,omitempty" gorm:"size:255"`
	CreatedAt       time.Time                     `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time                     `json:"updated_at" gorm:"not null"`
}

func (Inventory) TableName() string { return "fertilizer_inventories" }

// Usage draws QuantityUsed from an inventory onto a parcel.
type Usage struct {
	ID           int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	OwnerID      string    `json:"owner_id" gorm:"size:128;not null;index"`
	InventoryID  int64     `json:"inventory_id,string" gorm:"not null;index"`
	ParcelID     int64     `json:"parcel_id,string" gorm:"not null;index"`
	QuantityUsed float64   `json:"quantity_used" gorm:"type:numeric(14,3);not null"`
	UsedAt       time.Time `json:"used_at" gorm:"not null"`
	Notes        *string   `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
}

func (Usage) TableName() string { return "fertilizer_usages" }
