package repository

import (
	"context"

	"github.com/smallbiznis/agrichar/internal/biochar/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, batch *domain.Batch) error {
	return db.WithContext(ctx).Create(batch).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID string, id int64) (*domain.Batch, error) {
	var batch domain.Batch
	err := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Limit(1).
		Find(&batch).Error
	if err != nil {
		return nil, err
	}
	if batch.ID == 0 {
		return nil, nil
	}
	return &batch, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID string, filter domain.ListFilter) ([]domain.Batch, error) {
	var items []domain.Batch
	stmt := db.WithContext(ctx).
		Model(&domain.Batch{}).
		Where("owner_id = ?", ownerID)

	if filter.BiomassID != 0 {
		stmt = stmt.Where("biomass_id = ?", filter.BiomassID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	if err := stmt.Order("production_date desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, batch *domain.Batch) error {
	if batch == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE biochar_batches
		 SET biomass_weight = ?, biochar_weight = ?, yield_percentage = ?, kiln_type = ?, temperature_c = ?,
		     production_date = ?, status = ?, failure_reason = ?, completed_at = ?, updated_at = ?
		 WHERE owner_id = ? AND id = ?`,
		batch.BiomassWeight,
		batch.BiocharWeight,
		batch.YieldPercentage,
		batch.KilnType,
		batch.TemperatureC,
		batch.ProductionDate,
		batch.Status,
		batch.FailureReason,
		batch.CompletedAt,
		batch.UpdatedAt,
		batch.OwnerID,
		batch.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, ownerID string, id int64) (int64, error) {
	result := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&domain.Batch{})
	return result.RowsAffected, result.Error
}
