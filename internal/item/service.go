package item

import (
	"context"
	"log/slog"
)

// Repository defines the data access methods for catalog items.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	GetByAssetCode(ctx context.Context, assetCode string) (*Item, error)
	List(ctx context.Context) ([]*Item, error)
	Search(ctx context.Context, filter SearchItemsDTO) ([]*Item, error)
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	HasBorrowHistory(ctx context.Context, id int64) (bool, error)
}

// Service handles catalog business logic.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) CreateItem(ctx context.Context, dto CreateItemDTO) (*Item, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("item validation failed", "error", err, "asset_code", dto.AssetCode)
		return nil, err
	}

	existing, err := s.repo.GetByAssetCode(ctx, dto.AssetCode)
	if err != nil {
		s.logger.Error("failed to check asset code", "error", err, "asset_code", dto.AssetCode)
		return nil, err
	}
	if existing != nil {
		return nil, ErrAssetCodeTaken
	}

	it := &Item{
		Name:            dto.Name,
		AssetCode:       dto.AssetCode,
		Description:     dto.Description,
		PurchaseDate:    dto.PurchaseDate,
		Condition:       dto.Condition,
		StorageLocation: dto.StorageLocation,
		Quantity:        dto.Quantity,
	}

	if err := s.repo.Create(ctx, it); err != nil {
		s.logger.Error("failed to create item", "error", err, "asset_code", dto.AssetCode)
		return nil, err
	}

	s.logger.Info("item created", "item_id", it.ID, "asset_code", it.AssetCode)
	return it, nil
}

func (s *Service) GetItemByID(ctx context.Context, id int64) (*Item, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get item", "error", err, "item_id", id)
		return nil, err
	}
	return it, nil
}

func (s *Service) ListItems(ctx context.Context) ([]*Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list items", "error", err)
		return nil, err
	}
	return items, nil
}

func (s *Service) SearchItems(ctx context.Context, filter SearchItemsDTO) ([]*Item, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.repo.Search(ctx, filter)
	if err != nil {
		s.logger.Error("failed to search items", "error", err, "query", filter.Query)
		return nil, err
	}
	return items, nil
}

// UpdateItem applies a partial update. The borrower link and its
// timestamps are untouchable from here.
func (s *Service) UpdateItem(ctx context.Context, id int64, dto UpdateItemDTO) (*Item, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("item update validation failed", "error", err, "item_id", id)
		return nil, err
	}

	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get item for update", "error", err, "item_id", id)
		return nil, err
	}

	if dto.AssetCode != nil && *dto.AssetCode != it.AssetCode {
		existing, err := s.repo.GetByAssetCode(ctx, *dto.AssetCode)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrAssetCodeTaken
		}
		it.AssetCode = *dto.AssetCode
	}
	if dto.Name != nil {
		it.Name = *dto.Name
	}
	if dto.Description != nil {
		it.Description = dto.Description
	}
	if dto.PurchaseDate != nil {
		it.PurchaseDate = dto.PurchaseDate
	}
	if dto.Condition != nil {
		it.Condition = *dto.Condition
	}
	if dto.StorageLocation != nil {
		it.StorageLocation = *dto.StorageLocation
	}
	if dto.Quantity != nil {
		it.Quantity = *dto.Quantity
	}

	if err := s.repo.Update(ctx, it); err != nil {
		s.logger.Error("failed to update item", "error", err, "item_id", id)
		return nil, err
	}

	s.logger.Info("item updated", "item_id", it.ID, "asset_code", it.AssetCode)
	return it, nil
}

// DeleteItem removes an item from the catalog. Items referenced by any
// borrow record are protected: history is the audit trail and must keep
// its references intact.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		s.logger.Error("failed to get item for deletion", "error", err, "item_id", id)
		return err
	}

	hasHistory, err := s.repo.HasBorrowHistory(ctx, id)
	if err != nil {
		s.logger.Error("failed to check borrow history", "error", err, "item_id", id)
		return err
	}
	if hasHistory {
		s.logger.Warn("delete refused: item has borrowing history", "item_id", id)
		return ErrHasBorrowHistory
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete item", "error", err, "item_id", id)
		return err
	}

	s.logger.Info("item deleted", "item_id", id)
	return nil
}
