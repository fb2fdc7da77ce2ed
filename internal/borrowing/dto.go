package borrowing

import (
	"errors"
	"time"
)

// BorrowItemDTO is the request payload for borrowing an item.
type BorrowItemDTO struct {
	ItemID             int64     `json:"item_id" validate:"required"`
	BorrowerID         int64     `json:"borrower_id" validate:"required"`
	ExpectedReturnDate time.Time `json:"expected_return_date" validate:"required"`
	Notes              *string   `json:"notes,omitempty"`
}

func (dto BorrowItemDTO) Validate() error {
	if dto.ItemID <= 0 {
		return errors.New("item_id is required")
	}
	if dto.BorrowerID <= 0 {
		return errors.New("borrower_id is required")
	}
	if dto.ExpectedReturnDate.IsZero() {
		return errors.New("expected_return_date is required")
	}
	return nil
}

// ReturnItemDTO is the request payload for returning a borrowed item.
// Notes is a pointer so that "not supplied" stays distinct from an
// explicit value: absent notes preserve whatever is on the record.
type ReturnItemDTO struct {
	Notes *string `json:"notes,omitempty"`
}

// BorrowRecordView is a BorrowRecord with the derived display status
// applied, as surfaced to API clients.
type BorrowRecordView struct {
	BorrowRecord
	Status string `json:"status"`
}

func NewView(record *BorrowRecord, now time.Time) *BorrowRecordView {
	return &BorrowRecordView{
		BorrowRecord: *record,
		Status:       record.DisplayStatus(now),
	}
}

func NewViews(records []*BorrowRecord, now time.Time) []*BorrowRecordView {
	views := make([]*BorrowRecordView, len(records))
	for i, r := range records {
		views[i] = NewView(r, now)
	}
	return views
}
