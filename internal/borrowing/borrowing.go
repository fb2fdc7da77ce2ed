package borrowing

import (
	"time"

	"github.com/frahmantamala/inventory-lending/internal"
)

// BorrowRecord is one lending episode. Records are append-only: a row is
// inserted when an item goes out and mutated exactly once when it comes
// back. They are never deleted, they are the audit trail.
type BorrowRecord struct {
	ID                 int64      `json:"id" gorm:"primaryKey"`
	ItemID             int64      `json:"item_id" gorm:"column:item_id;not null"`
	BorrowerID         int64      `json:"borrower_id" gorm:"column:borrower_id;not null"`
	BorrowedDate       time.Time  `json:"borrowed_date" gorm:"column:borrowed_date;not null"`
	ExpectedReturnDate time.Time  `json:"expected_return_date" gorm:"column:expected_return_date;not null"`
	ActualReturnDate   *time.Time `json:"actual_return_date" gorm:"column:actual_return_date"`
	Status             string     `json:"status" gorm:"column:status;default:borrowed"`
	Notes              *string    `json:"notes" gorm:"column:notes"`
	CreatedAt          time.Time  `json:"created_at" gorm:"column:created_at"`
}

func (BorrowRecord) TableName() string {
	return "borrowing_history"
}

// Stored statuses. StatusOverdue is never written to the database; it is a
// display label derived from the expected return date at read time.
const (
	StatusBorrowed = "borrowed"
	StatusReturned = "returned"
	StatusOverdue  = "overdue"
)

func (r *BorrowRecord) IsReturned() bool {
	return r.Status == StatusReturned
}

// IsOverdue reports whether the record is an open borrow whose expected
// return date is strictly in the past.
func (r *BorrowRecord) IsOverdue(now time.Time) bool {
	return r.ActualReturnDate == nil && r.ExpectedReturnDate.Before(now)
}

// DisplayStatus maps the stored two-state status to the three-state
// presentation value.
func (r *BorrowRecord) DisplayStatus(now time.Time) string {
	if r.IsOverdue(now) {
		return StatusOverdue
	}
	return r.Status
}

var (
	ErrBorrowerNotFound    = internal.NewNotFoundError("borrower not found", internal.ErrCodeUserNotFound)
	ErrItemNotFound        = internal.NewNotFoundError("item not found", internal.ErrCodeItemNotFound)
	ErrBorrowingNotFound   = internal.NewNotFoundError("borrowing record not found", internal.ErrCodeBorrowingNotFound)
	ErrItemAlreadyBorrowed = internal.NewConflictError("item is already borrowed", internal.ErrCodeItemAlreadyBorrowed)
	ErrAlreadyReturned     = internal.NewConflictError("item has already been returned", internal.ErrCodeAlreadyReturned)
)
