package models

import "time"

// TournamentPlayer связывает игрока с турниром. Seed задаёт порядок посева
// при генерации сетки.
type TournamentPlayer struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	PlayerID     int       `json:"player_id" db:"player_id"`
	Seed         *int      `json:"seed,omitempty" db:"seed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Player *User `json:"player,omitempty" db:"-"`
}
