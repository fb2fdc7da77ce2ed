package borrowing_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/go-chi/chi"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/inventory-lending/internal/borrowing"
	borrowingPostgres "github.com/frahmantamala/inventory-lending/internal/borrowing/postgres"
	"github.com/frahmantamala/inventory-lending/internal/core/events"
	"github.com/frahmantamala/inventory-lending/internal/item"
	itemPostgres "github.com/frahmantamala/inventory-lending/internal/item/postgres"
	"github.com/frahmantamala/inventory-lending/internal/user"
	userPostgres "github.com/frahmantamala/inventory-lending/internal/user/postgres"
)

var _ = Describe("Borrowing Handler Integration", func() {
	var (
		router   *chi.Mux
		borrower user.User
		laptop   item.Item
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&user.User{}, &item.Item{}, &borrowing.BorrowRecord{})
		Expect(err).NotTo(HaveOccurred())

		borrower = user.User{Username: "dina", Email: "dina@mail.com", FullName: "Dina Lestari", Role: user.RoleUser, PasswordHash: "x"}
		Expect(db.Create(&borrower).Error).To(Succeed())

		laptop = item.Item{Name: "Dell Latitude", AssetCode: "LPT-001", Condition: item.ConditionGood, StorageLocation: "Cabinet A1", Quantity: 1}
		Expect(db.Create(&laptop).Error).To(Succeed())

		service := borrowing.NewService(
			borrowingPostgres.NewBorrowingRepository(db),
			userPostgres.NewUserRepository(db),
			itemPostgres.NewItemRepository(db),
			events.NewEventBus(slogger),
			slogger,
		)
		handler := borrowing.NewHandler(service)

		router = chi.NewRouter()
		router.Post("/borrowings", handler.BorrowItem)
		router.Post("/borrowings/{id}/return", handler.ReturnItem)
		router.Get("/borrowings/overdue", handler.ListOverdue)
		router.Get("/borrowings", handler.ListHistory)
	})

	borrowPayload := func(itemID, borrowerID int64, due time.Time) *bytes.Buffer {
		body, err := json.Marshal(borrowing.BorrowItemDTO{
			ItemID:             itemID,
			BorrowerID:         borrowerID,
			ExpectedReturnDate: due,
		})
		Expect(err).NotTo(HaveOccurred())
		return bytes.NewBuffer(body)
	}

	doBorrow := func(itemID, borrowerID int64, due time.Time) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/borrowings", borrowPayload(itemID, borrowerID, due))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should create a borrow record over POST /borrowings", func() {
		w := doBorrow(laptop.ID, borrower.ID, time.Now().Add(24*time.Hour))

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var view borrowing.BorrowRecordView
		Expect(json.NewDecoder(w.Body).Decode(&view)).To(Succeed())
		Expect(view.ID).To(BeNumerically(">", 0))
		Expect(view.Status).To(Equal(borrowing.StatusBorrowed))
	})

	It("should answer 409 when the item is already on loan", func() {
		Expect(doBorrow(laptop.ID, borrower.ID, time.Now().Add(24*time.Hour)).Code).To(Equal(http.StatusCreated))

		w := doBorrow(laptop.ID, borrower.ID, time.Now().Add(24*time.Hour))
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("should answer 404 for an unknown borrower", func() {
		w := doBorrow(laptop.ID, 9999, time.Now().Add(24*time.Hour))
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should answer 400 for an incomplete payload", func() {
		req := httptest.NewRequest(http.MethodPost, "/borrowings", bytes.NewBufferString(`{"item_id": 1}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	Describe("returning", func() {
		var borrowingID int64

		BeforeEach(func() {
			w := doBorrow(laptop.ID, borrower.ID, time.Now().Add(24*time.Hour))
			Expect(w.Code).To(Equal(http.StatusCreated))

			var view borrowing.BorrowRecordView
			Expect(json.NewDecoder(w.Body).Decode(&view)).To(Succeed())
			borrowingID = view.ID
		})

		It("should close the record with an empty body", func() {
			req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/borrowings/%d/return", borrowingID), nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var view borrowing.BorrowRecordView
			Expect(json.NewDecoder(w.Body).Decode(&view)).To(Succeed())
			Expect(view.Status).To(Equal(borrowing.StatusReturned))
			Expect(view.ActualReturnDate).NotTo(BeNil())
		})

		It("should record return notes when supplied", func() {
			body := bytes.NewBufferString(`{"notes": "scratched lid"}`)
			req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/borrowings/%d/return", borrowingID), body)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var view borrowing.BorrowRecordView
			Expect(json.NewDecoder(w.Body).Decode(&view)).To(Succeed())
			Expect(view.Notes).NotTo(BeNil())
			Expect(*view.Notes).To(Equal("scratched lid"))
		})

		It("should answer 409 on a second return", func() {
			req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/borrowings/%d/return", borrowingID), nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))

			req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/borrowings/%d/return", borrowingID), nil)
			w = httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("should answer 404 for an unknown record", func() {
			req := httptest.NewRequest(http.MethodPost, "/borrowings/9999/return", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /borrowings/overdue", func() {
		It("should surface open past-due records with derived overdue status", func() {
			Expect(doBorrow(laptop.ID, borrower.ID, time.Now().Add(-24*time.Hour)).Code).To(Equal(http.StatusCreated))

			req := httptest.NewRequest(http.MethodGet, "/borrowings/overdue", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var response struct {
				Borrowings []borrowing.BorrowRecordView `json:"borrowings"`
				CheckedAt  time.Time                    `json:"checked_at"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
			Expect(response.Borrowings).To(HaveLen(1))
			Expect(response.Borrowings[0].Status).To(Equal(borrowing.StatusOverdue))
			Expect(response.CheckedAt).NotTo(BeZero())
		})

		It("should return an empty list when nothing is overdue", func() {
			Expect(doBorrow(laptop.ID, borrower.ID, time.Now().Add(24*time.Hour)).Code).To(Equal(http.StatusCreated))

			req := httptest.NewRequest(http.MethodGet, "/borrowings/overdue", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var response struct {
				Borrowings []borrowing.BorrowRecordView `json:"borrowings"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
			Expect(response.Borrowings).To(BeEmpty())
		})
	})

	Describe("GET /borrowings", func() {
		It("should answer 400 for a malformed item_id filter", func() {
			req := httptest.NewRequest(http.MethodGet, "/borrowings?item_id=abc", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should list history filtered by item", func() {
			Expect(doBorrow(laptop.ID, borrower.ID, time.Now().Add(24*time.Hour)).Code).To(Equal(http.StatusCreated))

			req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/borrowings?item_id=%d", laptop.ID), nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var response struct {
				Borrowings []borrowing.BorrowRecordView `json:"borrowings"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
			Expect(response.Borrowings).To(HaveLen(1))
			Expect(response.Borrowings[0].ItemID).To(Equal(laptop.ID))
		})
	})
})
