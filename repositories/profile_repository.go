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
	ErrProfileNotFound    = errors.New("player profile not found")
	ErrProfileUserInvalid = errors.New("profile user conflict or invalid")
	ErrProfileConflict    = errors.New("profile already exists for this user")
)

type ProfileRepository interface {
	Create(ctx context.Context, exec SQLExecutor, profile *models.PlayerProfile) error
	GetByUserID(ctx context.Context, exec SQLExecutor, userID int) (*models.PlayerProfile, error)
	// UpdateRatingWithHistory обновляет рейтинг профиля и добавляет запись
	// истории одним вызовом; обе записи должны идти в одной транзакции.
	UpdateRatingWithHistory(ctx context.Context, exec SQLExecutor, profileID int, newElo int, history *models.EloHistory) error
	ListHistory(ctx context.Context, profileID int) ([]models.EloHistory, error)
	Leaderboard(ctx context.Context, limit int) ([]*models.PlayerProfile, error)
	SoftDelete(ctx context.Context, id int) error
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

func (r *postgresProfileRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresProfileRepository) Create(ctx context.Context, exec SQLExecutor, profile *models.PlayerProfile) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO player_profiles (user_id, bio, elo)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, profile.UserID, profile.Bio, profile.Elo).
		Scan(&profile.ID, &profile.CreatedAt)

	return r.handleProfileError(err)
}

func (r *postgresProfileRepository) GetByUserID(ctx context.Context, exec SQLExecutor, userID int) (*models.PlayerProfile, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, user_id, bio, elo, is_deleted, created_at
		FROM player_profiles
		WHERE user_id = $1 AND is_deleted = FALSE`

	profile := &models.PlayerProfile{}
	err := executor.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID, &profile.UserID, &profile.Bio, &profile.Elo,
		&profile.IsDeleted, &profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to scan profile for user %d: %w", userID, err)
	}
	return profile, nil
}

func (r *postgresProfileRepository) UpdateRatingWithHistory(ctx context.Context, exec SQLExecutor, profileID int, newElo int, history *models.EloHistory) error {
	executor := r.getExecutor(exec)

	updateQuery := `UPDATE player_profiles SET elo = $1 WHERE id = $2 AND is_deleted = FALSE`
	result, err := executor.ExecContext(ctx, updateQuery, newElo, profileID)
	if err != nil {
		return r.handleProfileError(err)
	}
	if err := checkAffectedRows(result, ErrProfileNotFound); err != nil {
		return err
	}

	historyQuery := `
		INSERT INTO elo_history (profile_id, old_rating, new_rating, match_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err = executor.QueryRowContext(ctx, historyQuery,
		history.ProfileID, history.OldRating, history.NewRating, history.MatchDate,
	).Scan(&history.ID)
	if err != nil {
		return fmt.Errorf("failed to insert elo history for profile %d: %w", profileID, err)
	}
	return nil
}

func (r *postgresProfileRepository) ListHistory(ctx context.Context, profileID int) ([]models.EloHistory, error) {
	query := `
		SELECT id, profile_id, old_rating, new_rating, match_date
		FROM elo_history
		WHERE profile_id = $1
		ORDER BY match_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query elo history for profile %d: %w", profileID, err)
	}
	defer rows.Close()

	history := make([]models.EloHistory, 0)
	for rows.Next() {
		var h models.EloHistory
		if scanErr := rows.Scan(&h.ID, &h.ProfileID, &h.OldRating, &h.NewRating, &h.MatchDate); scanErr != nil {
			return nil, fmt.Errorf("failed to scan elo history row: %w", scanErr)
		}
		history = append(history, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during elo history rows iteration: %w", err)
	}
	return history, nil
}

func (r *postgresProfileRepository) Leaderboard(ctx context.Context, limit int) ([]*models.PlayerProfile, error) {
	query := `
		SELECT p.id, p.user_id, p.bio, p.elo, p.is_deleted, p.created_at,
		       u.id, u.first_name, u.last_name, u.nickname, u.email, u.created_at
		FROM player_profiles p
		JOIN users u ON u.id = p.user_id AND u.is_deleted = FALSE
		WHERE p.is_deleted = FALSE
		ORDER BY p.elo DESC, p.id ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	profiles := make([]*models.PlayerProfile, 0)
	for rows.Next() {
		var p models.PlayerProfile
		var u models.User
		if scanErr := rows.Scan(
			&p.ID, &p.UserID, &p.Bio, &p.Elo, &p.IsDeleted, &p.CreatedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Nickname, &u.Email, &u.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", scanErr)
		}
		p.User = &u
		profiles = append(profiles, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during leaderboard rows iteration: %w", err)
	}
	return profiles, nil
}

func (r *postgresProfileRepository) SoftDelete(ctx context.Context, id int) error {
	query := `UPDATE player_profiles SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) handleProfileError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "player_profiles_user_id_fkey":
			return ErrProfileUserInvalid
		case "player_profiles_user_id_key":
			return ErrProfileConflict
		}
	}
	return err
}
