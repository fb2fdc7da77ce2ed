package item

import (
	"time"

	"github.com/frahmantamala/inventory-lending/internal"
)

// Item is a trackable physical asset. CurrentUserID is the single marker
// for "this item is on loan"; it is written only by the borrowing
// lifecycle, never by catalog updates.
type Item struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	Name            string     `json:"name" gorm:"not null"`
	AssetCode       string     `json:"asset_code" gorm:"column:asset_code;uniqueIndex;not null"`
	Description     *string    `json:"description" gorm:"column:description"`
	PurchaseDate    *time.Time `json:"purchase_date" gorm:"column:purchase_date"`
	Condition       string     `json:"condition" gorm:"column:condition;default:good"`
	StorageLocation string     `json:"storage_location" gorm:"column:storage_location;not null"`
	Quantity        int        `json:"quantity" gorm:"column:quantity;default:1"`
	CurrentUserID   *int64     `json:"current_user_id" gorm:"column:current_user_id"`
	CreatedAt       time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Item) TableName() string {
	return "items"
}

const (
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionFair      = "fair"
	ConditionPoor      = "poor"
	ConditionDamaged   = "damaged"
)

func ValidCondition(condition string) bool {
	switch condition {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged:
		return true
	}
	return false
}

// IsAvailable reports whether the item can currently be borrowed.
func (i *Item) IsAvailable() bool {
	return i.CurrentUserID == nil
}

var (
	ErrNotFound         = internal.NewNotFoundError("item not found", internal.ErrCodeItemNotFound)
	ErrAssetCodeTaken   = internal.NewConflictError("asset code already in use", internal.ErrCodeDuplicateAssetCode)
	ErrHasBorrowHistory = internal.NewConflictError("item has borrowing history and cannot be deleted", internal.ErrCodeItemHasHistory)
)
