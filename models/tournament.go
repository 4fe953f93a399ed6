package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusOpen           TournamentStatus = "open"
	StatusClosed         TournamentStatus = "closed"
	StatusPendingBracket TournamentStatus = "pending_bracket"
	StatusInProgress     TournamentStatus = "in_progress"
	StatusCompleted      TournamentStatus = "completed"
	StatusDeleted        TournamentStatus = "deleted"
)

// Tournament представляет турнир.
type Tournament struct {
	ID                   int              `json:"id" db:"id"`
	Name                 string           `json:"name" db:"name"`
	Format               string           `json:"format" db:"format"`
	OrganizerID          *int             `json:"organizer_id,omitempty" db:"organizer_id"`
	Status               TournamentStatus `json:"status" db:"status"`
	TournamentDate       time.Time        `json:"tournament_date" db:"tournament_date"`
	RegistrationClosesAt *time.Time       `json:"registration_closes_at,omitempty" db:"registration_closes_at"`
	IsDeleted            bool             `json:"-" db:"is_deleted"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
	LogoKey              *string          `json:"-" db:"logo_key"`
	LogoURL              *string          `json:"logo_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Organizer *User              `json:"organizer,omitempty" db:"-"`
	Players   []TournamentPlayer `json:"players,omitempty" db:"-"`
	Matches   []Match            `json:"matches,omitempty" db:"-"`
}

// IsRegistrationOpen reports whether players can still join.
func (t *Tournament) IsRegistrationOpen(now time.Time) bool {
	if t.Status != StatusOpen {
		return false
	}
	return t.RegistrationClosesAt == nil || !now.After(*t.RegistrationClosesAt)
}
