package models

import "time"

// Recipe is owned by a single user and references (but does not own) a set
// of tags and ingredients through join tables.
type Recipe struct {
	ID          string       `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID      string       `json:"-" gorm:"index;not null;type:varchar(36)"`
	Title       string       `json:"title" gorm:"type:varchar(255)" validate:"required,max=255"`
	TimeMinutes int          `json:"time_minutes" validate:"gte=0"`
	Price       float64      `json:"price" validate:"gte=0"`
	Link        string       `json:"link" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	Tags        []Tag        `json:"tags" gorm:"many2many:recipe_tags"`
	Ingredients []Ingredient `json:"ingredients" gorm:"many2many:recipe_ingredients"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (r Recipe) String() string { return r.Title }
