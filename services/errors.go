package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrUserNotFound       = errors.New("user not found")

	// ErrProfileNotFound для матча без bye означает нарушение целостности
	// данных: профиль создаётся вместе с игроком и не может отсутствовать.
	ErrProfileNotFound = errors.New("player profile not found")

	// Ошибки построения сетки
	ErrBracketAlreadyExists = errors.New("a bracket already exists for this tournament")
	ErrNotEnoughPlayers     = errors.New("at least two players are required to generate a bracket")
	ErrBracketInvalidStatus = errors.New("tournament must be closed before generating a bracket")
	ErrUnsupportedFormat    = errors.New("unsupported bracket format")

	// Ошибки продвижения результатов
	ErrMatchDeleted        = errors.New("cannot update a deleted match")
	ErrTournamentNotActive = errors.New("tournament is not currently active")
	ErrInvalidWinner       = errors.New("winner must be one of the match competitors")
	// ErrConflictingAdvancement: смена победителя потребовала бы отката уже
	// продвинутого в следующий раунд игрока — такое не исправляется молча.
	ErrConflictingAdvancement = errors.New("winner already advanced to the next round and cannot be changed")

	// Ошибки жизненного цикла турнира и регистрации
	ErrTournamentNameRequired            = errors.New("tournament name is required")
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrRegistrationNotOpen               = errors.New("tournament registration is not open")
	ErrRegistrationConflict              = errors.New("player is already registered for this tournament")

	// Конфликты
	ErrUserEmailConflict = errors.New("email address is already in use")
)
