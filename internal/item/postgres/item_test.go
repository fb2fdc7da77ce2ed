package postgres_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/inventory-lending/internal/borrowing"
	"github.com/frahmantamala/inventory-lending/internal/item"
	"github.com/frahmantamala/inventory-lending/internal/item/postgres"
)

var _ = Describe("ItemRepository", func() {
	var (
		db   *gorm.DB
		repo *postgres.ItemRepository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).ToNot(HaveOccurred())

		err = db.AutoMigrate(&item.Item{}, &borrowing.BorrowRecord{})
		Expect(err).ToNot(HaveOccurred())

		repo = postgres.NewItemRepository(db)
		ctx = context.Background()
	})

	seed := func(name, assetCode, condition, location string) *item.Item {
		it := &item.Item{
			Name:            name,
			AssetCode:       assetCode,
			Condition:       condition,
			StorageLocation: location,
			Quantity:        1,
		}
		Expect(repo.Create(ctx, it)).To(Succeed())
		return it
	}

	Describe("GetByID", func() {
		It("returns the stored item", func() {
			created := seed("Dell Latitude", "LPT-001", item.ConditionGood, "Cabinet A1")

			found, err := repo.GetByID(ctx, created.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(found.AssetCode).To(Equal("LPT-001"))
		})

		It("reports not found for an unknown id", func() {
			_, err := repo.GetByID(ctx, 9999)
			Expect(err).To(MatchError(item.ErrNotFound))
		})
	})

	Describe("GetByAssetCode", func() {
		It("returns nil without error when absent", func() {
			found, err := repo.GetByAssetCode(ctx, "NOPE-001")

			Expect(err).ToNot(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("Search", func() {
		BeforeEach(func() {
			seed("Dell Latitude 5440", "LPT-001", item.ConditionGood, "Cabinet A1")
			seed("Epson Projector", "PRJ-001", item.ConditionFair, "Cabinet B2")
			seed("HDMI Cable 3m", "CBL-001", item.ConditionGood, "Drawer C2")
		})

		It("matches the text query case-insensitively against name and asset code", func() {
			byName, err := repo.Search(ctx, item.SearchItemsDTO{Query: "projector"})
			Expect(err).ToNot(HaveOccurred())
			Expect(byName).To(HaveLen(1))
			Expect(byName[0].AssetCode).To(Equal("PRJ-001"))

			byCode, err := repo.Search(ctx, item.SearchItemsDTO{Query: "cbl"})
			Expect(err).ToNot(HaveOccurred())
			Expect(byCode).To(HaveLen(1))
			Expect(byCode[0].Name).To(Equal("HDMI Cable 3m"))
		})

		It("filters by condition and storage location", func() {
			good, err := repo.Search(ctx, item.SearchItemsDTO{Condition: item.ConditionGood})
			Expect(err).ToNot(HaveOccurred())
			Expect(good).To(HaveLen(2))

			drawer, err := repo.Search(ctx, item.SearchItemsDTO{StorageLocation: "Drawer C2"})
			Expect(err).ToNot(HaveOccurred())
			Expect(drawer).To(HaveLen(1))
		})

		It("excludes borrowed items when available_only is set", func() {
			holder := int64(7)
			Expect(db.Model(&item.Item{}).
				Where("asset_code = ?", "LPT-001").
				Update("current_user_id", holder).Error).To(Succeed())

			available, err := repo.Search(ctx, item.SearchItemsDTO{AvailableOnly: true})

			Expect(err).ToNot(HaveOccurred())
			Expect(available).To(HaveLen(2))
			for _, it := range available {
				Expect(it.CurrentUserID).To(BeNil())
			}
		})
	})

	Describe("HasBorrowHistory", func() {
		It("reflects whether any borrow record references the item", func() {
			it := seed("Dell Latitude", "LPT-001", item.ConditionGood, "Cabinet A1")

			has, err := repo.HasBorrowHistory(ctx, it.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(has).To(BeFalse())

			record := &borrowing.BorrowRecord{
				ItemID:             it.ID,
				BorrowerID:         1,
				BorrowedDate:       time.Now(),
				ExpectedReturnDate: time.Now().Add(24 * time.Hour),
				Status:             borrowing.StatusBorrowed,
				CreatedAt:          time.Now(),
			}
			Expect(db.Create(record).Error).To(Succeed())

			has, err = repo.HasBorrowHistory(ctx, it.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(has).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("removes the item", func() {
			it := seed("Logitech Mouse", "MSE-001", item.ConditionGood, "Drawer C1")

			Expect(repo.Delete(ctx, it.ID)).To(Succeed())

			_, err := repo.GetByID(ctx, it.ID)
			Expect(err).To(MatchError(item.ErrNotFound))
		})
	})
})
