package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, batch *Batch) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID string, id int64) (*Batch, error)
	List(ctx context.Context, db *gorm.DB, ownerID string, filter ListFilter) ([]Batch, error)
	Update(ctx context.Context, db *gorm.DB, batch *Batch) error
	Delete(ctx context.Context, db *gorm.DB, ownerID string, id int64) (int64, error)
}

type ListFilter struct {
	BiomassID int64
	Status    Status
}
