package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-manager/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound         = errors.New("tournament not found")
	ErrTournamentNameConflict     = errors.New("tournament name conflict for this organizer")
	ErrTournamentInvalidOrganizer = errors.New("invalid organizer reference")
	ErrTournamentPlayerConflict   = errors.New("player is already registered for this tournament")
	ErrTournamentPlayerInvalid    = errors.New("invalid player reference")
)

type ListTournamentsFilter struct {
	OrganizerID *int
	Status      *models.TournamentStatus
	Limit       int
	Offset      int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	// GetWithRoster загружает турнир вместе с игроками, упорядоченными по
	// посеву (NULL-посевы в конце, затем по id — детерминированный полный порядок).
	GetWithRoster(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error
	SoftDelete(ctx context.Context, id int) error
	AddPlayer(ctx context.Context, tp *models.TournamentPlayer) error
	ListExpiredRegistrations(ctx context.Context, now time.Time) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, format, organizer_id, status, tournament_date, registration_closes_at, logo_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Format, t.OrganizerID, t.Status, t.TournamentDate, t.RegistrationClosesAt, t.LogoKey,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, format, organizer_id, status, tournament_date, registration_closes_at,
		       is_deleted, created_at, logo_key
		FROM tournaments
		WHERE id = $1 AND is_deleted = FALSE`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Format, &t.OrganizerID, &t.Status, &t.TournamentDate,
		&t.RegistrationClosesAt, &t.IsDeleted, &t.CreatedAt, &t.LogoKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetWithRoster(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT tp.id, tp.tournament_id, tp.player_id, tp.seed, tp.created_at,
		       u.id, u.first_name, u.last_name, u.nickname, u.email, u.created_at
		FROM tournament_players tp
		JOIN users u ON u.id = tp.player_id AND u.is_deleted = FALSE
		WHERE tp.tournament_id = $1
		ORDER BY tp.seed ASC NULLS LAST, tp.id ASC`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster for tournament %d: %w", id, err)
	}
	defer rows.Close()

	players := make([]models.TournamentPlayer, 0)
	for rows.Next() {
		var tp models.TournamentPlayer
		var u models.User
		if scanErr := rows.Scan(
			&tp.ID, &tp.TournamentID, &tp.PlayerID, &tp.Seed, &tp.CreatedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Nickname, &u.Email, &u.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament player row: %w", scanErr)
		}
		tp.Player = &u
		players = append(players, tp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during roster rows iteration: %w", err)
	}

	tournament.Players = players
	return tournament, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `
		SELECT id, name, format, organizer_id, status, tournament_date, registration_closes_at,
		       is_deleted, created_at, logo_key
		FROM tournaments
		WHERE is_deleted = FALSE`

	args := []interface{}{}
	argID := 1

	if filter.OrganizerID != nil {
		query += fmt.Sprintf(" AND organizer_id = $%d", argID)
		args = append(args, *filter.OrganizerID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY tournament_date DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.Format, &t.OrganizerID, &t.Status, &t.TournamentDate,
			&t.RegistrationClosesAt, &t.IsDeleted, &t.CreatedAt, &t.LogoKey,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2 AND is_deleted = FALSE`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("UpdateStatus: failed to execute query for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error {
	query := `UPDATE tournaments SET logo_key = $1 WHERE id = $2 AND is_deleted = FALSE`
	result, err := r.db.ExecContext(ctx, query, logoKey, tournamentID)
	if err != nil {
		return fmt.Errorf("UpdateLogoKey: failed to execute query for tournament %d: %w", tournamentID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SoftDelete(ctx context.Context, id int) error {
	query := `UPDATE tournaments SET is_deleted = TRUE, status = $1 WHERE id = $2 AND is_deleted = FALSE`
	result, err := r.db.ExecContext(ctx, query, models.StatusDeleted, id)
	if err != nil {
		return fmt.Errorf("SoftDelete: failed to execute query for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) AddPlayer(ctx context.Context, tp *models.TournamentPlayer) error {
	query := `
		INSERT INTO tournament_players (tournament_id, player_id, seed)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, tp.TournamentID, tp.PlayerID, tp.Seed).
		Scan(&tp.ID, &tp.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) ListExpiredRegistrations(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	query := `
		SELECT id, name, format, organizer_id, status, tournament_date, registration_closes_at,
		       is_deleted, created_at, logo_key
		FROM tournaments
		WHERE is_deleted = FALSE
		  AND status = $1
		  AND registration_closes_at IS NOT NULL
		  AND registration_closes_at <= $2`

	rows, err := r.db.QueryContext(ctx, query, models.StatusOpen, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired registrations: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.Format, &t.OrganizerID, &t.Status, &t.TournamentDate,
			&t.RegistrationClosesAt, &t.IsDeleted, &t.CreatedAt, &t.LogoKey,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "tournaments_organizer_id_fkey":
			return ErrTournamentInvalidOrganizer
		case "tournaments_name_organizer_key":
			return ErrTournamentNameConflict
		case "tournament_players_tournament_id_player_id_key":
			return ErrTournamentPlayerConflict
		case "tournament_players_player_id_fkey":
			return ErrTournamentPlayerInvalid
		case "tournament_players_tournament_id_fkey":
			return ErrTournamentNotFound
		}
	}
	return err
}
