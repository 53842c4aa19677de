package repository

import (
	"context"

	"github.com/smallbiznis/agrichar/internal/parcel/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, parcel *domain.Parcel) error {
	return db.WithContext(ctx).Create(parcel).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID string, id int64) (*domain.Parcel, error) {
	var p domain.Parcel
	err := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindAnyByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Parcel, error) {
	var p domain.Parcel
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID string, filter domain.ListRequest) ([]domain.Parcel, error) {
	var items []domain.Parcel
	stmt := db.WithContext(ctx).
		Model(&domain.Parcel{}).
		Where("owner_id = ?", ownerID)

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.VerificationStatus != "" {
		stmt = stmt.Where("verification_status = ?", filter.VerificationStatus)
	}
	if filter.Name != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+filter.Name+"%")
	}

	if err := stmt.Order("created_at desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, parcel *domain.Parcel) error {
	if parcel == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Parcel{}).
		Where("owner_id = ? AND id = ?", parcel.OwnerID, parcel.ID).
		Updates(map[string]any{
			"name":                     parcel.Name,
			"location":                 parcel.Location,
			"area_hectares":            parcel.AreaHectares,
			"cultivated_area_hectares": parcel.CultivatedAreaHectares,
			"expected_yield_tonnes":    parcel.ExpectedYieldTonnes,
			"actual_yield_tonnes":      parcel.ActualYieldTonnes,
			"soil_type":                parcel.SoilType,
			"document_urls":            parcel.DocumentURLs,
			"metadata":                 parcel.Metadata,
			"status":                   parcel.Status,
			"verification_status":      parcel.VerificationStatus,
			"verification_note":        parcel.VerificationNote,
			"verified_by":              parcel.VerifiedBy,
			"verified_at":              parcel.VerifiedAt,
			"updated_at":               parcel.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, ownerID string, id int64) (int64, error) {
	result := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&domain.Parcel{})
	return result.RowsAffected, result.Error
}
