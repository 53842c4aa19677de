package repository

import (
	"context"

	"github.com/smallbiznis/agrichar/internal/conservation"
	"github.com/smallbiznis/agrichar/internal/fertilizer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inventory *domain.Inventory) error {
	return db.WithContext(ctx).Create(inventory).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID string, id int64) (*domain.Inventory, error) {
	var inventory domain.Inventory
	err := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Limit(1).
		Find(&inventory).Error
	if err != nil {
		return nil, err
	}
	if inventory.ID == 0 {
		return nil, nil
	}
	return &inventory, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID string, filter domain.ListFilter) ([]domain.Inventory, error) {
	var items []domain.Inventory
	stmt := db.WithContext(ctx).
		Model(&domain.Inventory{}).
		Where("owner_id = ?", ownerID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.FertilizerType != "" {
		stmt = stmt.Where("fertilizer_type = ?", filter.FertilizerType)
	}
	if err := stmt.Order("created_at desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, inventory *domain.Inventory) error {
	if inventory == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE fertilizer_inventories
		 SET name = ?, fertilizer_type = ?, initial_quantity = ?, quantity = ?, unit = ?, status = ?, purchased_at = ?, supplier = ?, updated_at = ?
		 WHERE owner_id = ? AND id = ?`,
		inventory.Name,
		inventory.FertilizerType,
		inventory.InitialQuantity,
		inventory.Quantity,
		inventory.Unit,
		inventory.Status,
		inventory.PurchasedAt,
		inventory.Supplier,
		inventory.UpdatedAt,
		inventory.OwnerID,
		inventory.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, ownerID string, id int64) (int64, error) {
	result := db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&domain.Inventory{})
	return result.RowsAffected, result.Error
}

func (r *repo) ListStocked(ctx context.Context, db *gorm.DB) ([]domain.Inventory, error) {
	var items []domain.Inventory
	err := db.WithContext(ctx).
		Where("status <> ?", conservation.FertilizerOutOfStock).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id int64, status string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE fertilizer_inventories SET status = ? WHERE id = ?`,
		status,
		id,
	).Error
}

func (r *repo) InsertUsage(ctx context.Context, db *gorm.DB, usage *domain.Usage) error {
	return db.WithContext(ctx).Create(usage).Error
}

func (r *repo) ListUsages(ctx context.Context, db *gorm.DB, ownerID string, filter domain.UsageFilter) ([]domain.Usage, error) {
	var items []domain.Usage
	stmt := db.WithContext(ctx).
		Model(&domain.Usage{}).
		Where("owner_id = ?", ownerID)
	if filter.InventoryID != 0 {
		stmt = stmt.Where("inventory_id = ?", filter.InventoryID)
	}
	if filter.ParcelID != 0 {
		stmt = stmt.Where("parcel_id = ?", filter.ParcelID)
	}
	if err := stmt.Order("used_at desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
