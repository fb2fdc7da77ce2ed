package borrowing_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/inventory-lending/internal/borrowing"
	"github.com/frahmantamala/inventory-lending/internal/core/events"
)

// Mock repository for testing
type mockBorrowingRepository struct {
	records     map[int64]*borrowing.BorrowRecord
	order       []int64
	holders     map[int64]int64
	borrowError error
	returnError error
	listError   error
	nextID      int64
}

func newMockBorrowingRepository() *mockBorrowingRepository {
	return &mockBorrowingRepository{
		records: make(map[int64]*borrowing.BorrowRecord),
		holders: make(map[int64]int64),
		nextID:  1,
	}
}

func (m *mockBorrowingRepository) BorrowItem(_ context.Context, record *borrowing.BorrowRecord) error {
	if m.borrowError != nil {
		return m.borrowError
	}
	if _, held := m.holders[record.ItemID]; held {
		return borrowing.ErrItemAlreadyBorrowed
	}
	record.ID = m.nextID
	m.nextID++
	m.records[record.ID] = record
	m.order = append(m.order, record.ID)
	m.holders[record.ItemID] = record.BorrowerID
	return nil
}

func (m *mockBorrowingRepository) ReturnItem(_ context.Context, borrowingID int64, returnedAt time.Time, notes *string) (*borrowing.BorrowRecord, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	record, exists := m.records[borrowingID]
	if !exists {
		return nil, borrowing.ErrBorrowingNotFound
	}
	if record.Status == borrowing.StatusReturned {
		return nil, borrowing.ErrAlreadyReturned
	}
	record.ActualReturnDate = &returnedAt
	record.Status = borrowing.StatusReturned
	if notes != nil {
		record.Notes = notes
	}
	delete(m.holders, record.ItemID)
	return record, nil
}

func (m *mockBorrowingRepository) ListOverdue(_ context.Context, now time.Time) ([]*borrowing.BorrowRecord, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	overdue := make([]*borrowing.BorrowRecord, 0)
	for _, id := range m.order {
		r := m.records[id]
		if r.ActualReturnDate == nil && r.ExpectedReturnDate.Before(now) {
			overdue = append(overdue, r)
		}
	}
	sort.Slice(overdue, func(i, j int) bool {
		return overdue[i].ExpectedReturnDate.Before(overdue[j].ExpectedReturnDate)
	})
	return overdue, nil
}

func (m *mockBorrowingRepository) ListHistory(_ context.Context, itemID *int64) ([]*borrowing.BorrowRecord, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	history := make([]*borrowing.BorrowRecord, 0)
	for i := len(m.order) - 1; i >= 0; i-- {
		r := m.records[m.order[i]]
		if itemID != nil && r.ItemID != *itemID {
			continue
		}
		history = append(history, r)
	}
	return history, nil
}

// Mock user reader for testing
type mockUserReader struct {
	users       map[int64]bool
	existsError error
}

func (m *mockUserReader) Exists(_ context.Context, userID int64) (bool, error) {
	if m.existsError != nil {
		return false, m.existsError
	}
	return m.users[userID], nil
}

// Mock item reader for testing
type mockItemReader struct {
	items       map[int64]bool
	existsError error
}

func (m *mockItemReader) Exists(_ context.Context, itemID int64) (bool, error) {
	if m.existsError != nil {
		return false, m.existsError
	}
	return m.items[itemID], nil
}

func strPtr(s string) *string {
	return &s
}

var _ = Describe("BorrowingService", func() {
	var (
		service   *borrowing.Service
		mockRepo  *mockBorrowingRepository
		mockUsers *mockUserReader
		mockItems *mockItemReader
		bus       *events.EventBus
		logger    *slog.Logger
		ctx       context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockBorrowingRepository()
		mockUsers = &mockUserReader{users: map[int64]bool{1: true, 2: true}}
		mockItems = &mockItemReader{items: map[int64]bool{10: true, 11: true}}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		service = borrowing.NewService(mockRepo, mockUsers, mockItems, bus, logger)
		ctx = context.Background()
	})

	Describe("BorrowItem", func() {
		Context("when the item is available", func() {
			It("should create an open borrow record", func() {
				dto := borrowing.BorrowItemDTO{
					ItemID:             10,
					BorrowerID:         1,
					ExpectedReturnDate: time.Now().Add(7 * 24 * time.Hour),
					Notes:              strPtr("for the offsite"),
				}

				record, err := service.BorrowItem(ctx, dto)

				Expect(err).ToNot(HaveOccurred())
				Expect(record).ToNot(BeNil())
				Expect(record.ID).To(BeNumerically(">", 0))
				Expect(record.ItemID).To(Equal(int64(10)))
				Expect(record.BorrowerID).To(Equal(int64(1)))
				Expect(record.Status).To(Equal(borrowing.StatusBorrowed))
				Expect(record.ActualReturnDate).To(BeNil())
				Expect(record.Notes).ToNot(BeNil())
				Expect(*record.Notes).To(Equal("for the offsite"))
				Expect(record.BorrowedDate).ToNot(BeZero())
			})

			It("should publish an item.borrowed event", func() {
				var published []events.Event
				bus.Subscribe(events.EventTypeItemBorrowed, func(_ context.Context, e events.Event) error {
					published = append(published, e)
					return nil
				})

				_, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
					ItemID:             10,
					BorrowerID:         1,
					ExpectedReturnDate: time.Now().Add(24 * time.Hour),
				})

				Expect(err).ToNot(HaveOccurred())
				Expect(published).To(HaveLen(1))
				Expect(published[0].EventType()).To(Equal(events.EventTypeItemBorrowed))
			})
		})

		Context("when the item is already on loan", func() {
			It("should reject the second borrower and keep the first record", func() {
				first, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
					ItemID:             10,
					BorrowerID:         1,
					ExpectedReturnDate: time.Now().Add(24 * time.Hour),
				})
				Expect(err).ToNot(HaveOccurred())

				second, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
					ItemID:             10,
					BorrowerID:         2,
					ExpectedReturnDate: time.Now().Add(48 * time.Hour),
				})

				Expect(second).To(BeNil())
				Expect(err).To(MatchError(borrowing.ErrItemAlreadyBorrowed))

				history, err := service.ListHistory(ctx, nil)
				Expect(err).ToNot(HaveOccurred())
				Expect(history).To(HaveLen(1))
				Expect(history[0].ID).To(Equal(first.ID))
			})

			It("should allow borrowing a different item", func() {
				_, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
					ItemID:             10,
					BorrowerID:         1,
					ExpectedReturnDate: time.Now().Add(24 * time.Hour),
				})
				Expect(err).ToNot(HaveOccurred())

				record, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
					ItemID:             11,
					BorrowerID:         1,
					ExpectedReturnDate: time.Now().Add(24 * time.Hour),
				})

				Expect(err).ToNot(HaveOccurred())
				Expect(record.ItemID).To(Equal(int64(11)))
			})
		})

		Context("when the borrower does not exist", func() {
			It("should fail without creating a record", func() {
				record, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
					ItemID:             10,
					BorrowerID:         99,
					ExpectedReturnDate: time.Now().Add(24 * time.Hour),
				})

				Expect(record).To(BeNil())
				Expect(err).To(MatchError(borrowing.ErrBorrowerNotFound))
				Expect(mockRepo.records).To(BeEmpty())
			})
		})

		Context("when the item does not exist", func() {
			It("should fail without creating a record", func() {
				record, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
					ItemID:             404,
					BorrowerID:         1,
					ExpectedReturnDate: time.Now().Add(24 * time.Hour),
				})

				Expect(record).To(BeNil())
				Expect(err).To(MatchError(borrowing.ErrItemNotFound))
				Expect(mockRepo.records).To(BeEmpty())
			})
		})

		Context("with an invalid request", func() {
			It("should reject a missing item id", func() {
				_, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
					BorrowerID:         1,
					ExpectedReturnDate: time.Now().Add(24 * time.Hour),
				})
				Expect(err).To(HaveOccurred())
			})

			It("should reject a missing expected return date", func() {
				_, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
					ItemID:     10,
					BorrowerID: 1,
				})
				Expect(err).To(HaveOccurred())
			})
		})

		Context("when a dependency fails", func() {
			It("should propagate user lookup errors", func() {
				mockUsers.existsError = errors.New("connection refused")

				_, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
					ItemID:             10,
					BorrowerID:         1,
					ExpectedReturnDate: time.Now().Add(24 * time.Hour),
				})

				Expect(err).To(MatchError(ContainSubstring("connection refused")))
			})

			It("should propagate repository errors", func() {
				mockRepo.borrowError = errors.New("tx aborted")

				_, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
					ItemID:             10,
					BorrowerID:         1,
					ExpectedReturnDate: time.Now().Add(24 * time.Hour),
				})

				Expect(err).To(MatchError(ContainSubstring("tx aborted")))
			})
		})
	})

	Describe("ReturnItem", func() {
		var open *borrowing.BorrowRecord

		BeforeEach(func() {
			var err error
			open, err = service.BorrowItem(ctx, borrowing.BorrowItemDTO{
				ItemID:             10,
				BorrowerID:         1,
				ExpectedReturnDate: time.Now().Add(24 * time.Hour),
				Notes:              strPtr("original notes"),
			})
			Expect(err).ToNot(HaveOccurred())
		})

		Context("when the record is open", func() {
			It("should close it and stamp the return date", func() {
				record, err := service.ReturnItem(ctx, open.ID, borrowing.ReturnItemDTO{})

				Expect(err).ToNot(HaveOccurred())
				Expect(record.Status).To(Equal(borrowing.StatusReturned))
				Expect(record.ActualReturnDate).ToNot(BeNil())
			})

			It("should preserve existing notes when none are supplied", func() {
				record, err := service.ReturnItem(ctx, open.ID, borrowing.ReturnItemDTO{})

				Expect(err).ToNot(HaveOccurred())
				Expect(record.Notes).ToNot(BeNil())
				Expect(*record.Notes).To(Equal("original notes"))
			})

			It("should replace notes when supplied", func() {
				record, err := service.ReturnItem(ctx, open.ID, borrowing.ReturnItemDTO{
					Notes: strPtr("returned with scratches"),
				})

				Expect(err).ToNot(HaveOccurred())
				Expect(record.Notes).ToNot(BeNil())
				Expect(*record.Notes).To(Equal("returned with scratches"))
			})

			It("should make the item borrowable again", func() {
				_, err := service.ReturnItem(ctx, open.ID, borrowing.ReturnItemDTO{})
				Expect(err).ToNot(HaveOccurred())

				record, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
					ItemID:             10,
					BorrowerID:         2,
					ExpectedReturnDate: time.Now().Add(24 * time.Hour),
				})

				Expect(err).ToNot(HaveOccurred())
				Expect(record.BorrowerID).To(Equal(int64(2)))

				history, err := service.ListHistory(ctx, nil)
				Expect(err).ToNot(HaveOccurred())
				Expect(history).To(HaveLen(2))
			})

			It("should publish an item.returned event", func() {
				var published []events.Event
				bus.Subscribe(events.EventTypeItemReturned, func(_ context.Context, e events.Event) error {
					published = append(published, e)
					return nil
				})

				_, err := service.ReturnItem(ctx, open.ID, borrowing.ReturnItemDTO{})

				Expect(err).ToNot(HaveOccurred())
				Expect(published).To(HaveLen(1))
			})
		})

		Context("when the record is already closed", func() {
			It("should reject a second return", func() {
				_, err := service.ReturnItem(ctx, open.ID, borrowing.ReturnItemDTO{})
				Expect(err).ToNot(HaveOccurred())

				_, err = service.ReturnItem(ctx, open.ID, borrowing.ReturnItemDTO{})
				Expect(err).To(MatchError(borrowing.ErrAlreadyReturned))
			})
		})

		Context("when the record does not exist", func() {
			It("should report not found", func() {
				_, err := service.ReturnItem(ctx, 9999, borrowing.ReturnItemDTO{})
				Expect(err).To(MatchError(borrowing.ErrBorrowingNotFound))
			})
		})
	})

	Describe("ListOverdue", func() {
		It("should include only open records past their expected return date", func() {
			overdueRec, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
				ItemID:             10,
				BorrowerID:         1,
				ExpectedReturnDate: time.Now().Add(-48 * time.Hour),
			})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.BorrowItem(ctx, borrowing.BorrowItemDTO{
				ItemID:             11,
				BorrowerID:         2,
				ExpectedReturnDate: time.Now().Add(48 * time.Hour),
			})
			Expect(err).ToNot(HaveOccurred())

			overdue, err := service.ListOverdue(ctx)

			Expect(err).ToNot(HaveOccurred())
			Expect(overdue).To(HaveLen(1))
			Expect(overdue[0].ID).To(Equal(overdueRec.ID))
		})

		It("should exclude past-due records that were returned", func() {
			rec, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
				ItemID:             10,
				BorrowerID:         1,
				ExpectedReturnDate: time.Now().Add(-48 * time.Hour),
			})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ReturnItem(ctx, rec.ID, borrowing.ReturnItemDTO{})
			Expect(err).ToNot(HaveOccurred())

			overdue, err := service.ListOverdue(ctx)

			Expect(err).ToNot(HaveOccurred())
			Expect(overdue).To(BeEmpty())
		})

		It("should order results by expected return date, most overdue first", func() {
			_, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
				ItemID:             10,
				BorrowerID:         1,
				ExpectedReturnDate: time.Now().Add(-24 * time.Hour),
			})
			Expect(err).ToNot(HaveOccurred())

			older, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
				ItemID:             11,
				BorrowerID:         2,
				ExpectedReturnDate: time.Now().Add(-72 * time.Hour),
			})
			Expect(err).ToNot(HaveOccurred())

			overdue, err := service.ListOverdue(ctx)

			Expect(err).ToNot(HaveOccurred())
			Expect(overdue).To(HaveLen(2))
			Expect(overdue[0].ID).To(Equal(older.ID))
		})
	})

	Describe("ListHistory", func() {
		BeforeEach(func() {
			rec, err := service.BorrowItem(ctx, borrowing.BorrowItemDTO{
				ItemID:             10,
				BorrowerID:         1,
				ExpectedReturnDate: time.Now().Add(24 * time.Hour),
			})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.ReturnItem(ctx, rec.ID, borrowing.ReturnItemDTO{})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.BorrowItem(ctx, borrowing.BorrowItemDTO{
				ItemID:             11,
				BorrowerID:         2,
				ExpectedReturnDate: time.Now().Add(24 * time.Hour),
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should return all records newest first", func() {
			history, err := service.ListHistory(ctx, nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(history).To(HaveLen(2))
			Expect(history[0].ItemID).To(Equal(int64(11)))
			Expect(history[1].ItemID).To(Equal(int64(10)))
		})

		It("should filter by item when requested", func() {
			itemID := int64(10)
			history, err := service.ListHistory(ctx, &itemID)

			Expect(err).ToNot(HaveOccurred())
			Expect(history).To(HaveLen(1))
			Expect(history[0].ItemID).To(Equal(int64(10)))
			Expect(history[0].Status).To(Equal(borrowing.StatusReturned))
		})

		It("should include both open and closed records", func() {
			history, err := service.ListHistory(ctx, nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(history[0].Status).To(Equal(borrowing.StatusBorrowed))
			Expect(history[1].Status).To(Equal(borrowing.StatusReturned))
		})
	})
})

var _ = Describe("BorrowRecord", func() {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	Describe("IsOverdue", func() {
		It("is overdue when open and past the expected return date", func() {
			r := &borrowing.BorrowRecord{
				Status:             borrowing.StatusBorrowed,
				ExpectedReturnDate: now.Add(-time.Hour),
			}
			Expect(r.IsOverdue(now)).To(BeTrue())
		})

		It("is not overdue exactly at the expected return date", func() {
			r := &borrowing.BorrowRecord{
				Status:             borrowing.StatusBorrowed,
				ExpectedReturnDate: now,
			}
			Expect(r.IsOverdue(now)).To(BeFalse())
		})

		It("is not overdue once returned, even late", func() {
			late := now.Add(-time.Minute)
			r := &borrowing.BorrowRecord{
				Status:             borrowing.StatusReturned,
				ExpectedReturnDate: now.Add(-time.Hour),
				ActualReturnDate:   &late,
			}
			Expect(r.IsOverdue(now)).To(BeFalse())
		})
	})

	Describe("DisplayStatus", func() {
		It("reports overdue for an open past-due record", func() {
			r := &borrowing.BorrowRecord{
				Status:             borrowing.StatusBorrowed,
				ExpectedReturnDate: now.Add(-time.Hour),
			}
			Expect(r.DisplayStatus(now)).To(Equal(borrowing.StatusOverdue))
		})

		It("reports the stored status otherwise", func() {
			r := &borrowing.BorrowRecord{
				Status:             borrowing.StatusBorrowed,
				ExpectedReturnDate: now.Add(time.Hour),
			}
			Expect(r.DisplayStatus(now)).To(Equal(borrowing.StatusBorrowed))
		})
	})
})
