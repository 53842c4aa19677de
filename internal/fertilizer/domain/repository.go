package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, inventory *Inventory) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID string, id int64) (*Inventory, error)
	List(ctx context.Context, db *gorm.DB, ownerID string, filter ListFilter) ([]Inventory, error)
	Update(ctx context.Context, db *gorm.DB, inventory *Inventory) error
	Delete(ctx context.Context, db *gorm.DB, ownerID string, id int64) (int64, error)

	// ListStocked returns inventories of every owner that still hold stock.
	ListStocked(ctx context.Context, db *gorm.DB) ([]Inventory, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status string) error

	InsertUsage(ctx context.Context, db *gorm.DB, usage *Usage) error
	ListUsages(ctx context.Context, db *gorm.DB, ownerID string, filter UsageFilter) ([]Usage, error)
}

type ListFilter struct {
	Status         string
	FertilizerType string
}

type UsageFilter struct {
	InventoryID int64
	ParcelID    int64
}
