package item

import (
	"errors"
	"fmt"
	"time"
)

// CreateItemDTO is the request payload for registering a new asset.
type CreateItemDTO struct {
	Name            string     `json:"name" validate:"required"`
	AssetCode       string     `json:"asset_code" validate:"required"`
	Description     *string    `json:"description,omitempty"`
	PurchaseDate    *time.Time `json:"purchase_date,omitempty"`
	Condition       string     `json:"condition"`
	StorageLocation string     `json:"storage_location" validate:"required"`
	Quantity        int        `json:"quantity"`
}

func (dto *CreateItemDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if dto.AssetCode == "" {
		return errors.New("asset_code is required")
	}
	if dto.StorageLocation == "" {
		return errors.New("storage_location is required")
	}
	if dto.Condition == "" {
		dto.Condition = ConditionGood
	}
	if !ValidCondition(dto.Condition) {
		return fmt.Errorf("invalid condition %q", dto.Condition)
	}
	if dto.Quantity == 0 {
		dto.Quantity = 1
	}
	if dto.Quantity < 1 {
		return errors.New("quantity must be a positive integer")
	}
	return nil
}

// UpdateItemDTO carries a partial update: nil fields are left untouched.
// CurrentUserID is deliberately absent, the borrower link belongs to the
// borrowing lifecycle alone.
type UpdateItemDTO struct {
	Name            *string    `json:"name,omitempty"`
	AssetCode       *string    `json:"asset_code,omitempty"`
	Description     *string    `json:"description,omitempty"`
	PurchaseDate    *time.Time `json:"purchase_date,omitempty"`
	Condition       *string    `json:"condition,omitempty"`
	StorageLocation *string    `json:"storage_location,omitempty"`
	Quantity        *int       `json:"quantity,omitempty"`
}

func (dto UpdateItemDTO) Validate() error {
	if dto.Name != nil && *dto.Name == "" {
		return errors.New("name cannot be empty")
	}
	if dto.AssetCode != nil && *dto.AssetCode == "" {
		return errors.New("asset_code cannot be empty")
	}
	if dto.Condition != nil && !ValidCondition(*dto.Condition) {
		return fmt.Errorf("invalid condition %q", *dto.Condition)
	}
	if dto.StorageLocation != nil && *dto.StorageLocation == "" {
		return errors.New("storage_location cannot be empty")
	}
	if dto.Quantity != nil && *dto.Quantity < 1 {
		return errors.New("quantity must be a positive integer")
	}
	return nil
}

// SearchItemsDTO are the catalog search filters. Query matches name and
// asset code case-insensitively; zero values mean "no filter".
type SearchItemsDTO struct {
	Query           string
	Condition       string
	StorageLocation string
	AvailableOnly   bool
}

func (dto SearchItemsDTO) Validate() error {
	if dto.Condition != "" && !ValidCondition(dto.Condition) {
		return fmt.Errorf("invalid condition %q", dto.Condition)
	}
	return nil
}
