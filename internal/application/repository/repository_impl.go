package repository

import (
	"context"

	"github.com/smallbiznis/agrichar/internal/application/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO application_records (id, owner_id, storage_id, parcel_id, quantity_used, fertilizer_id, fertilizer_quantity, mixture_ratio, method, applied_at, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.OwnerID,
		record.StorageID,
		record.ParcelID,
		record.QuantityUsed,
		record.FertilizerID,
		record.FertilizerQuantity,
		record.MixtureRatio,
		record.Method,
		record.AppliedAt,
		record.Notes,
		record.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID string, id int64) (*domain.Record, error) {
	var record domain.Record
	err := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Limit(1).
		Find(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID string, filter domain.ListFilter) ([]domain.Record, error) {
	var items []domain.Record
	stmt := db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("owner_id = ?", ownerID)
	if filter.StorageID != 0 {
		stmt = stmt.Where("storage_id = ?", filter.StorageID)
	}
	if filter.ParcelID != 0 {
		stmt = stmt.Where("parcel_id = ?", filter.ParcelID)
	}
	if err := stmt.Order("applied_at desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, ownerID string, id int64) (int64, error) {
	result := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&domain.Record{})
	return result.RowsAffected, result.Error
}
