package events

import (
	"fmt"
	"time"
)

const (
	EventTypeItemBorrowed = "item.borrowed"
	EventTypeItemReturned = "item.returned"
)

func NewItemBorrowedEvent(borrowingID, itemID, borrowerID int64) Event {
	now := time.Now()
	return BaseEvent{
		ID:        fmt.Sprintf("borrow-%d-%d", borrowingID, now.UnixNano()),
		Type:      EventTypeItemBorrowed,
		Timestamp: now,
		Data: map[string]interface{}{
			"borrowing_id": borrowingID,
			"item_id":      itemID,
			"borrower_id":  borrowerID,
		},
	}
}

func NewItemReturnedEvent(borrowingID, itemID, borrowerID int64) Event {
	now := time.Now()
	return BaseEvent{
		ID:        fmt.Sprintf("return-%d-%d", borrowingID, now.UnixNano()),
		Type:      EventTypeItemReturned,
		Timestamp: now,
		Data: map[string]interface{}{
			"borrowing_id": borrowingID,
			"item_id":      itemID,
			"borrower_id":  borrowerID,
		},
	}
}
