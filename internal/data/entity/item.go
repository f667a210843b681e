package entity

import "github.com/google/uuid"

type Item struct {
	Base
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	UserID      uuid.UUID `db:"user_id"`
}
