package models

import "time"

// EloHistory — append-only запись изменения рейтинга. Создаётся только
// EloService и никогда не изменяется и не удаляется.
type EloHistory struct {
	ID        int       `json:"id" db:"id"`
	ProfileID int       `json:"profile_id" db:"profile_id"`
	OldRating int       `json:"old_rating" db:"old_rating"`
	NewRating int       `json:"new_rating" db:"new_rating"`
	MatchDate time.Time `json:"match_date" db:"match_date"`
}
