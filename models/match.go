package models

import "time"

// MatchSlot фиксирует позицию матча под его родителем: победитель левого
// матча занимает PlayerA родителя, правого — PlayerB. Слот назначается один
// раз при построении сетки и больше никогда не пересчитывается.
type MatchSlot string

const (
	SlotLeft  MatchSlot = "left"
	SlotRight MatchSlot = "right"
)

type Match struct {
	ID           int        `json:"id" db:"id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	Round        int        `json:"round" db:"round"`
	Slot         *MatchSlot `json:"slot,omitempty" db:"slot"`

	// PlayerA/PlayerB nullable: отсутствующий игрок — это bye либо ещё не
	// определившийся победитель предыдущего раунда.
	PlayerAID *int `json:"player_a_id,omitempty" db:"player_a_id"`
	PlayerBID *int `json:"player_b_id,omitempty" db:"player_b_id"`
	WinnerID  *int `json:"winner_id,omitempty" db:"winner_id"`
	RefereeID *int `json:"referee_id,omitempty" db:"referee_id"`

	// NextMatchID указывает на матч следующего раунда, который этот матч
	// питает. nil только у финала.
	NextMatchID *int `json:"next_match_id,omitempty" db:"next_match_id"`

	IsDeleted bool      `json:"-" db:"is_deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	PlayerA *User `json:"player_a,omitempty" db:"-"`
	PlayerB *User `json:"player_b,omitempty" db:"-"`
	Winner  *User `json:"winner,omitempty" db:"-"`
}

// HasWinner reports whether the match is decided.
func (m *Match) HasWinner() bool {
	return m.WinnerID != nil
}

// IsBye reports whether exactly one competitor is present.
func (m *Match) IsBye() bool {
	return (m.PlayerAID == nil) != (m.PlayerBID == nil)
}

// HasPlayer reports whether userID is one of the match's competitors.
func (m *Match) HasPlayer(userID int) bool {
	if m.PlayerAID != nil && *m.PlayerAID == userID {
		return true
	}
	if m.PlayerBID != nil && *m.PlayerBID == userID {
		return true
	}
	return false
}
