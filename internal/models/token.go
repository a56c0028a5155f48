package models

import "time"

// Token is an opaque bearer credential bound to a user. A login issues a
// fresh token; previously issued tokens stay valid until deleted.
type Token struct {
	Key       string    `json:"-" gorm:"primaryKey;type:varchar(64)"`
	UserID    string    `json:"-" gorm:"index;not null;type:varchar(36)"`
	CreatedAt time.Time `json:"-"`
}
