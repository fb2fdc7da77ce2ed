package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/inventory-lending/internal/borrowing"
	"github.com/frahmantamala/inventory-lending/internal/item"
	"gorm.io/gorm"
)

// ItemRepository implements the item.Repository interface using GORM.
type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*item.Item, error) {
	var it item.Item
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&it).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, item.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepository) GetByAssetCode(ctx context.Context, assetCode string) (*item.Item, error) {
	var it item.Item
	err := r.db.WithContext(ctx).Where("asset_code = ?", assetCode).First(&it).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepository) List(ctx context.Context) ([]*item.Item, error) {
	var items []*item.Item
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error
	return items, err
}

// Search filters the catalog. The text query matches name and asset code
// case-insensitively; LOWER/LIKE is used instead of ILIKE so the same
// statement runs on the in-memory test database.
func (r *ItemRepository) Search(ctx context.Context, filter item.SearchItemsDTO) ([]*item.Item, error) {
	q := r.db.WithContext(ctx).Model(&item.Item{})

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(asset_code) LIKE LOWER(?)", pattern, pattern)
	}
	if filter.Condition != "" {
		q = q.Where("condition = ?", filter.Condition)
	}
	if filter.StorageLocation != "" {
		q = q.Where("storage_location = ?", filter.StorageLocation)
	}
	if filter.AvailableOnly {
		q = q.Where("current_user_id IS NULL")
	}

	var items []*item.Item
	err := q.Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *ItemRepository) Update(ctx context.Context, it *item.Item) error {
	it.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(it).Error
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&item.Item{}, "id = ?", id).Error
}

func (r *ItemRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&item.Item{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *ItemRepository) HasBorrowHistory(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&borrowing.BorrowRecord{}).Where("item_id = ?", id).Count(&count).Error
	return count > 0, err
}
