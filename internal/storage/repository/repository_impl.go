package repository

import (
	"context"

	"github.com/smallbiznis/agrichar/internal/storage/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID string, id int64) (*domain.Record, error) {
	var record domain.Record
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_id, batch_id, location, quantity_stored, remaining, status, stored_at, created_at, updated_at
		 FROM storage_records WHERE owner_id = ? AND id = ?`,
		ownerID,
		id,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID string, status string) ([]domain.Record, error) {
	var items []domain.Record
	stmt := db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("owner_id = ?", ownerID)
	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if err := stmt.Order("stored_at desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	if record == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE storage_records
		 SET location = ?, quantity_stored = ?, remaining = ?, status = ?, stored_at = ?, updated_at = ?
		 WHERE owner_id = ? AND id = ?`,
		record.Location,
		record.QuantityStored,
		record.Remaining,
		record.Status,
		record.StoredAt,
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
