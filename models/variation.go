package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SizeAvailability is one per-size stock entry of a variation.
type SizeAvailability struct {
	Size            string  `json:"size"`
	Stock           int     `json:"stock"`
	PriceAdjustment float64 `json:"priceAdjustment"`
}

// ProductVariation is one color option of a product with its own images,
// stock and per-size price adjustments. ProductID is the back-reference to
// the owning product; it is optional at the schema level but every variation
// created through the API gets it set.
type ProductVariation struct {
	ID               string                                `gorm:"primaryKey" json:"id"`
	ColorName        string                                `json:"colorName" validate:"required"`
	ColorCode        string                                `json:"colorCode" validate:"required"`
	VariationImages  datatypes.JSONSlice[string]           `json:"variationImages"`
	MainImage        string                                `json:"mainImage" validate:"required"`
	StockQuantity    int                                   `json:"stockQuantity"`
	IsAvailable      bool                                  `json:"isAvailable"`
	SizeAvailability datatypes.JSONSlice[SizeAvailability] `json:"sizeAvailability"`
	ProductID        string                                `gorm:"index" json:"productId"`
	CreatedAt        time.Time                             `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time                             `gorm:"autoUpdateTime" json:"updatedAt"`

	// Resolved owning product, filled by the color search.
	Product *Product `gorm:"-" json:"product,omitempty"`
}

func (v *ProductVariation) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// UnmarshalJSON applies the schema default for isAvailable: a variation is
// available unless the payload explicitly says otherwise. Embedded variation
// slices decode element-by-element through this too.
func (v *ProductVariation) UnmarshalJSON(data []byte) error {
	type variationAlias ProductVariation
	alias := variationAlias{IsAvailable: true}
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*v = ProductVariation(alias)
	return nil
}
