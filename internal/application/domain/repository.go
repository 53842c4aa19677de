package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *Record) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID string, id int64) (*Record, error)
	List(ctx context.Context, db *gorm.DB, ownerID string, filter ListFilter) ([]Record, error)
	Delete(ctx context.Context, db *gorm.DB, ownerID string, id int64) (int64, error)
}

type ListFilter struct {
	StorageID int64
	ParcelID  int64
}
