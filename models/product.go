package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductData holds the descriptive attributes of a product. It is stored as
// prefixed columns (data_*) so price and category filters stay plain SQL, but
// marshals as a nested "data" object.
type ProductData struct {
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description" validate:"required"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
	IsNew       bool    `json:"isNew"`
	Brand       string  `json:"brand,omitempty"`
	Category    string  `json:"category,omitempty"`
	ModelNumber string  `json:"modelNumber,omitempty"`
}

type Product struct {
	ID             string                      `gorm:"primaryKey" json:"id"`
	Name           string                      `json:"name" validate:"required"`
	Image          string                      `json:"image" validate:"required"`
	VariationRefs  datatypes.JSONSlice[string] `json:"variationRefs"`
	Data           ProductData                 `gorm:"embedded;embeddedPrefix:data_" json:"data"`
	BasePrice      float64                     `json:"basePrice" validate:"gte=0"`
	AvailableSizes datatypes.JSONSlice[string] `json:"availableSizes"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
	IsFeatured     bool                        `json:"isFeatured"`
	IsActive       bool                        `json:"isActive"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`

	// Resolved variation records, filled from VariationRefs on reads.
	Variations []ProductVariation `gorm:"-" json:"variations"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// UnmarshalJSON applies the schema default for isActive: a product is active
// unless the payload explicitly says otherwise. A gorm default tag cannot do
// this, since it would also override an explicit false on insert.
func (p *Product) UnmarshalJSON(data []byte) error {
	type productAlias Product
	alias := productAlias{IsActive: true}
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*p = Product(alias)
	return nil
}
