package models

import "time"

type User struct {
	ID        int       `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Nickname  *string   `json:"nickname,omitempty" db:"nickname"`
	Email     string    `json:"email" db:"email"`
	IsDeleted bool      `json:"-" db:"is_deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Profile *PlayerProfile `json:"profile,omitempty" db:"-"`
}
