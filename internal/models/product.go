package models

import "time"

// Product represents a product in the catalog.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"not null;index"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Price       float64   `json:"price" gorm:"not null"`
	Category    string    `json:"category" gorm:"size:100;not null;index"`
	InStock     bool      `json:"inStock" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// NameLower is Name folded with strings.ToLower, kept by SQL stores for
	// case-insensitive search.
	NameLower string `json:"-" gorm:"column:name_lower;index"`
}

// ProductInput is the payload accepted when creating a product.
// Price and InStock are pointers so that an absent field can be told apart
// from a zero value.
type ProductInput struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	InStock     *bool    `json:"inStock" validate:"required"`
}

// Product converts a validated input into a Product without an ID.
func (in ProductInput) Product() Product {
	p := Product{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	return p
}

// ProductPatch is a partial update. Nil fields keep their current value.
type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	InStock     *bool    `json:"inStock"`
}

// Apply merges the patch over p. ID and CreatedAt are never touched.
func (pt ProductPatch) Apply(p *Product) {
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.Category != nil {
		p.Category = *pt.Category
	}
	if pt.InStock != nil {
		p.InStock = *pt.InStock
	}
}

// IsEmpty reports whether the patch changes nothing.
func (pt ProductPatch) IsEmpty() bool {
	return pt.Name == nil && pt.Description == nil && pt.Price == nil &&
		pt.Category == nil && pt.InStock == nil
}

// CategoryCount is one row of the per-category aggregation.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
