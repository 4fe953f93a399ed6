package models

import "time"

// InitialElo — рейтинг нового профиля. Ноль или NULL здесь опасны:
// формула ожидает положительный рейтинг с обеих сторон.
const InitialElo = 1000

type PlayerProfile struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Bio       *string   `json:"bio,omitempty" db:"bio"`
	Elo       int       `json:"elo" db:"elo"`
	IsDeleted bool      `json:"-" db:"is_deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	User    *User        `json:"user,omitempty" db:"-"`
	History []EloHistory `json:"history,omitempty" db:"-"`
}
