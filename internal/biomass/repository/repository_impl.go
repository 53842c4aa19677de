package repository

import (
	"context"

	"github.com/smallbiznis/agrichar/internal/biomass/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO biomass_records (id, owner_id, parcel_id, crop_type, crop_key, harvest_date, quantity, remaining, moisture_content, status, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.OwnerID,
		record.ParcelID,
		record.CropType,
		record.CropKey,
		record.HarvestDate,
		record.Quantity,
		record.Remaining,
		record.MoistureContent,
		record.Status,
		record.Notes,
		record.CreatedAt,
		record.UpdatedAt,
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

	if filter.ParcelID != 0 {
		stmt = stmt.Where("parcel_id = ?", filter.ParcelID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CropKey != "" {
		stmt = stmt.Where("crop_key = ?", filter.CropKey)
	}

	if err := stmt.Order("harvest_date desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	if record == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE biomass_records
		 SET crop_type = ?, crop_key = ?, harvest_date = ?, quantity = ?, remaining = ?, moisture_content = ?, status = ?, notes = ?, updated_at = ?
		 WHERE owner_id = ? AND id = ?`,
		record.CropType,
		record.CropKey,
		record.HarvestDate,
		record.Quantity,
		record.Remaining,
		record.MoistureContent,
		record.Status,
		record.Notes,
		record.UpdatedAt,
		record.OwnerID,
		record.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, ownerID string, id int64) (int64, error) {
	result := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&domain.Record{})
	return result.RowsAffected, result.Error
}
