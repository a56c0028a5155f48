package models

// Tag is a user-owned label attached to recipes.
type Tag struct {
	ID     string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID string `json:"-" gorm:"index;not null;type:varchar(36)"`
	Name   string `json:"name" gorm:"type:varchar(255)" validate:"required"`
}

func (t Tag) String() string { return t.Name }

// Ingredient is a user-owned ingredient referenced by recipes.
type Ingredient struct {
	ID     string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID string `json:"-" gorm:"index;not null;type:varchar(36)"`
	Name   string `json:"name" gorm:"type:varchar(255)" validate:"required"`
}

func (i Ingredient) String() string { return i.Name }
