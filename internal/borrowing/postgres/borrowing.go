package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/inventory-lending/internal/borrowing"
	"github.com/frahmantamala/inventory-lending/internal/item"
	"gorm.io/gorm"
)

// BorrowingRepository implements the borrowing.Repository interface using
// GORM. Borrow and return run inside a transaction with a conditional
// update on the item's borrower link, so two concurrent borrows of the
// same item resolve to exactly one winner.
type BorrowingRepository struct {
	db *gorm.DB
}

func NewBorrowingRepository(db *gorm.DB) *BorrowingRepository {
	return &BorrowingRepository{db: db}
}

// BorrowItem inserts the record and claims the item in one transaction.
// The claim is a compare-and-set: UPDATE ... WHERE current_user_id IS NULL.
// Zero rows affected means somebody else holds the item and the whole
// transaction rolls back, record included.
func (r *BorrowingRepository) BorrowItem(ctx context.Context, record *borrowing.BorrowRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it item.Item
		if err := tx.First(&it, "id = ?", record.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return borrowing.ErrItemNotFound
			}
			return err
		}
		if it.CurrentUserID != nil {
			return borrowing.ErrItemAlreadyBorrowed
		}

		if err := tx.Create(record).Error; err != nil {
			return err
		}

		res := tx.Model(&item.Item{}).
			Where("id = ? AND current_user_id IS NULL", record.ItemID).
			Updates(map[string]interface{}{
				"current_user_id": record.BorrowerID,
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return borrowing.ErrItemAlreadyBorrowed
		}
		return nil
	})
}

// ReturnItem closes the record and releases the item in one transaction.
// The close is guarded on status so a concurrent double return affects
// zero rows and fails instead of stamping the record twice.
func (r *BorrowingRepository) ReturnItem(ctx context.Context, borrowingID int64, returnedAt time.Time, notes *string) (*borrowing.BorrowRecord, error) {
	var record borrowing.BorrowRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, "id = ?", borrowingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return borrowing.ErrBorrowingNotFound
			}
			return err
		}
		if record.Status == borrowing.StatusReturned {
			return borrowing.ErrAlreadyReturned
		}

		updates := map[string]interface{}{
			"actual_return_date": returnedAt,
			"status":             borrowing.StatusReturned,
		}
		if notes != nil {
			updates["notes"] = *notes
		}

		res := tx.Model(&borrowing.BorrowRecord{}).
			Where("id = ? AND status = ?", borrowingID, borrowing.StatusBorrowed).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return borrowing.ErrAlreadyReturned
		}

		record.ActualReturnDate = &returnedAt
		record.Status = borrowing.StatusReturned
		if notes != nil {
			record.Notes = notes
		}

		return tx.Model(&item.Item{}).
			Where("id = ?", record.ItemID).
			Updates(map[string]interface{}{
				"current_user_id": nil,
				"updated_at":      time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *BorrowingRepository) ListOverdue(ctx context.Context, now time.Time) ([]*borrowing.BorrowRecord, error) {
	var records []*borrowing.BorrowRecord
	err := r.db.WithContext(ctx).
		Where("actual_return_date IS NULL AND expected_return_date < ?", now).
		Order("expected_return_date ASC").
		Find(&records).Error
	return records, err
}

func (r *BorrowingRepository) ListHistory(ctx context.Context, itemID *int64) ([]*borrowing.BorrowRecord, error) {
	q := r.db.WithContext(ctx).Model(&borrowing.BorrowRecord{})
	if itemID != nil {
		q = q.Where("item_id = ?", *itemID)
	}

	var records []*borrowing.BorrowRecord
	err := q.Order("created_at DESC, id DESC").Find(&records).Error
	return records, err
}
