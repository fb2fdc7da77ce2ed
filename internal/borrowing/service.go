package borrowing

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/inventory-lending/internal"
	"github.com/frahmantamala/inventory-lending/internal/core/events"
)

// Repository is the entity-store boundary for borrow records. BorrowItem
// and ReturnItem are single atomic operations: each spans the availability
// check, the record write and the item-link update so that concurrent
// calls on the same item serialize instead of racing.
type Repository interface {
	BorrowItem(ctx context.Context, record *BorrowRecord) error
	ReturnItem(ctx context.Context, borrowingID int64, returnedAt time.Time, notes *string) (*BorrowRecord, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*BorrowRecord, error)
	ListHistory(ctx context.Context, itemID *int64) ([]*BorrowRecord, error)
}

// UserReader is the slice of the account store the engine needs: it only
// ever asks whether a borrower exists.
type UserReader interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

// ItemReader is the slice of the catalog the engine needs for the
// fail-fast existence check; availability is re-checked inside the
// repository transaction.
type ItemReader interface {
	Exists(ctx context.Context, itemID int64) (bool, error)
}

// Service implements the borrowing lifecycle: it validates requests,
// executes the borrow/return transitions through the repository and
// derives overdue status at read time.
type Service struct {
	repo   Repository
	users  UserReader
	items  ItemReader
	events *events.EventBus
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, users UserReader, items ItemReader, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		items:  items,
		events: bus,
		logger: logger,
		now:    time.Now,
	}
}

// BorrowItem lends an item to a user. Preconditions are checked in order:
// the borrower must exist, the item must exist, and the item must not be
// on loan. On success a new open BorrowRecord is created and the item is
// linked to the borrower in one transaction.
func (s *Service) BorrowItem(ctx context.Context, dto BorrowItemDTO) (*BorrowRecord, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("borrow validation failed", "error", err, "item_id", dto.ItemID, "borrower_id", dto.BorrowerID)
		return nil, err
	}

	exists, err := s.users.Exists(ctx, dto.BorrowerID)
	if err != nil {
		s.logger.Error("failed to look up borrower", "error", err, "borrower_id", dto.BorrowerID)
		return nil, err
	}
	if !exists {
		return nil, ErrBorrowerNotFound
	}

	exists, err = s.items.Exists(ctx, dto.ItemID)
	if err != nil {
		s.logger.Error("failed to look up item", "error", err, "item_id", dto.ItemID)
		return nil, err
	}
	if !exists {
		return nil, ErrItemNotFound
	}

	now := s.now()
	record := &BorrowRecord{
		ItemID:             dto.ItemID,
		BorrowerID:         dto.BorrowerID,
		BorrowedDate:       now,
		ExpectedReturnDate: dto.ExpectedReturnDate,
		Status:             StatusBorrowed,
		Notes:              dto.Notes,
		CreatedAt:          now,
	}

	if err := s.repo.BorrowItem(ctx, record); err != nil {
		s.logger.Warn("borrow rejected",
			"error", err,
			"item_id", dto.ItemID,
			"borrower_id", dto.BorrowerID)
		return nil, err
	}

	s.logger.Info("item borrowed",
		"borrowing_id", record.ID,
		"item_id", record.ItemID,
		"borrower_id", record.BorrowerID,
		"expected_return_date", record.ExpectedReturnDate)

	s.publish(ctx, events.NewItemBorrowedEvent(record.ID, record.ItemID, record.BorrowerID))

	return record, nil
}

// ReturnItem closes an open borrow record: it stamps the actual return
// date, marks the record returned and clears the item's borrower link.
// Notes replace the record's notes only when supplied.
func (s *Service) ReturnItem(ctx context.Context, borrowingID int64, dto ReturnItemDTO) (*BorrowRecord, error) {
	record, err := s.repo.ReturnItem(ctx, borrowingID, s.now(), dto.Notes)
	if err != nil {
		s.logger.Warn("return rejected", "error", err, "borrowing_id", borrowingID)
		return nil, err
	}

	s.logger.Info("item returned",
		"borrowing_id", record.ID,
		"item_id", record.ItemID,
		"borrower_id", record.BorrowerID)

	s.publish(ctx, events.NewItemReturnedEvent(record.ID, record.ItemID, record.BorrowerID))

	return record, nil
}

// ListOverdue returns open borrow records whose expected return date is
// strictly before now. Nothing is written: overdue is computed, not stored.
func (s *Service) ListOverdue(ctx context.Context) ([]*BorrowRecord, error) {
	records, err := s.repo.ListOverdue(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to list overdue borrowings", "error", err)
		return nil, err
	}
	return records, nil
}

// ListHistory returns borrow records newest-first, optionally filtered to
// one item. Open and closed records are both included.
func (s *Service) ListHistory(ctx context.Context, itemID *int64) ([]*BorrowRecord, error) {
	records, err := s.repo.ListHistory(ctx, itemID)
	if err != nil {
		s.logger.Error("failed to list borrowing history", "error", err)
		return nil, err
	}
	return records, nil
}

// Now exposes the service clock so handlers derive display status with
// the same time source the service uses.
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	ctx, cancel := internal.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}
