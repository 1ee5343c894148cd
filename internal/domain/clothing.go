package domain

import (
	"time"
)

// CreatedOnLayout is the wire format for ClothingItem.CreatedOn.
const CreatedOnLayout = "2006-01-02 15:04:05"

// DefaultCount is stored when a new item is created without a count.
const DefaultCount = 1

// ClothingItem represents a single piece of clothing in the wardrobe
type ClothingItem struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Category       string    `json:"category" db:"category"`
	MainColor      string    `json:"main_color" db:"main_color"`
	SecondaryColor *string   `json:"secondary_color" db:"secondary_color"`
	ImageURL       *string   `json:"image_url" db:"image_url"`
	Location       Location  `json:"location" db:"location"`
	Count          int       `json:"count" db:"count"`
	CreatedOn      time.Time `json:"created_on" db:"created_on"`
}

// ClothingInput holds the mutable fields supplied on create and update.
// Count is nil when the client omitted it.
type ClothingInput struct {
	Name           string  `form:"name" validate:"required,max=100"`
	Category       string  `form:"category" validate:"required,max=50"`
	MainColor      string  `form:"main_color" validate:"required,max=30"`
	SecondaryColor *string `form:"secondary_color" validate:"omitempty,max=30"`
	Location       string  `form:"location" validate:"required,location"`
	Count          *int    `form:"count" validate:"omitempty,gte=0,lte=2147483647"`
}
