package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, parcel *Parcel) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID string, id int64) (*Parcel, error)
	FindAnyByID(ctx context.Context, db *gorm.DB, id int64) (*Parcel, error)
	List(ctx context.Context, db *gorm.DB, ownerID string, filter ListRequest) ([]Parcel, error)
	Update(ctx context.Context, db *gorm.DB, parcel *Parcel) error
	Delete(ctx context.Context, db *gorm.DB, ownerID string, id int64) (int64, error)
}
