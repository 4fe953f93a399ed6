package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-manager/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchPlayerInvalid     = errors.New("match player conflict or invalid")
	ErrMatchWinnerInvalid     = errors.New("match winner conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	// ListByTournament возвращает матчи турнира, упорядоченные (round, id).
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, includeDeleted bool) ([]*models.Match, error)
	UpdateWinner(ctx context.Context, exec SQLExecutor, matchID int, winnerID *int) error
	// UpdateSlotPlayer записывает игрока в указанный слот матча (left -> player_a,
	// right -> player_b).
	UpdateSlotPlayer(ctx context.Context, exec SQLExecutor, matchID int, slot models.MatchSlot, playerID int) error
	UpdateNextMatchInfo(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID *int, slot *models.MatchSlot) error
	UpdateReferee(ctx context.Context, matchID int, refereeID *int) error
	HasActiveByTournament(ctx context.Context, tournamentID int) (bool, error)
	CountUndecided(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	SoftDelete(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, round, slot, player_a_id, player_b_id,
	       winner_id, referee_id, next_match_id, is_deleted, created_at`

func scanMatch(row interface {
	Scan(dest ...interface{}) error
}, m *models.Match) error {
	return row.Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.Slot, &m.PlayerAID, &m.PlayerBID,
		&m.WinnerID, &m.RefereeID, &m.NextMatchID, &m.IsDeleted, &m.CreatedAt,
	)
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(tournament_id, round, slot, player_a_id, player_b_id, winner_id, referee_id, next_match_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.TournamentID,
		match.Round,
		match.Slot,
		match.PlayerAID,
		match.PlayerBID,
		match.WinnerID,
		match.RefereeID,
		match.NextMatchID,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match := &models.Match{}
	err := scanMatch(executor.QueryRowContext(ctx, query, id), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, includeDeleted bool) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`
	if !includeDeleted {
		query += ` AND is_deleted = FALSE`
	}
	query += ` ORDER BY round ASC, id ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := scanMatch(rows, &match); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateWinner(ctx context.Context, exec SQLExecutor, matchID int, winnerID *int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET winner_id = $1 WHERE id = $2 AND is_deleted = FALSE`
	result, err := executor.ExecContext(ctx, query, winnerID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSlotPlayer(ctx context.Context, exec SQLExecutor, matchID int, slot models.MatchSlot, playerID int) error {
	executor := r.getExecutor(exec)
	var query string
	switch slot {
	case models.SlotLeft:
		query = `UPDATE matches SET player_a_id = $1 WHERE id = $2 AND is_deleted = FALSE`
	case models.SlotRight:
		query = `UPDATE matches SET player_b_id = $1 WHERE id = $2 AND is_deleted = FALSE`
	default:
		return fmt.Errorf("UpdateSlotPlayer: unknown slot %q", slot)
	}

	result, err := executor.ExecContext(ctx, query, playerID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateNextMatchInfo(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID *int, slot *models.MatchSlot) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET next_match_id = $1, slot = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, nextMatchID, slot, matchID)
	if err != nil {
		return fmt.Errorf("UpdateNextMatchInfo: failed to execute query for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateReferee(ctx context.Context, matchID int, refereeID *int) error {
	query := `UPDATE matches SET referee_id = $1 WHERE id = $2 AND is_deleted = FALSE`
	result, err := r.db.ExecContext(ctx, query, refereeID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) HasActiveByTournament(ctx context.Context, tournamentID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM matches WHERE tournament_id = $1 AND is_deleted = FALSE)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active matches for tournament %d: %w", tournamentID, err)
	}
	return exists, nil
}

func (r *postgresMatchRepository) CountUndecided(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM matches WHERE tournament_id = $1 AND is_deleted = FALSE AND winner_id IS NULL`
	var count int
	if err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count undecided matches for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) SoftDelete(ctx context.Context, id int) error {
	query := `UPDATE matches SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_player_a_id_fkey", "matches_player_b_id_fkey", "matches_referee_id_fkey":
			return ErrMatchPlayerInvalid
		case "matches_winner_id_fkey":
			return ErrMatchWinnerInvalid
		}
	}
	return err
}
