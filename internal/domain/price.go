package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultAdditionalBenefits = "Wi-Fi • Peškiri • Higijenski set • Parking"

// IncludedItem one benefit line of the pricing page
type IncludedItem struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Price singleton pricing record. IncludedItems is the legacy flat list
// kept only so older rows can be upgraded into IncludedItemsDetails.
type Price struct {
	ID                   int64                             `json:"id,string"`
	Price                float64                           `json:"price"`
	Description          string                            `json:"description"`
	IncludedItems        datatypes.JSONSlice[string]       `json:"includedItems"`
	IncludedItemsDetails datatypes.JSONSlice[IncludedItem] `json:"includedItemsDetails"`
	AdditionalBenefits   string                            `json:"additionalBenefits"`
	Note                 string                            `json:"note"`
	CreatedAt            time.Time                         `json:"createdAt"`
	UpdatedAt            time.Time                         `json:"updatedAt"`
}

func (Price) TableName() string {
	return "price"
}

func (p *Price) AfterFind(*gorm.DB) error {
	if p.IncludedItems == nil {
		p.IncludedItems = datatypes.JSONSlice[string]{}
	}
	if p.IncludedItemsDetails == nil {
		p.IncludedItemsDetails = datatypes.JSONSlice[IncludedItem]{}
	}
	return nil
}
