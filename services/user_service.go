package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-manager/models"
	"github.com/Dosada05/tournament-manager/repositories"
)

type CreateUserInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Nickname  *string `json:"nickname,omitempty"`
	Email     string  `json:"email"`
	Bio       *string `json:"bio,omitempty"`
}

type UserService interface {
	// CreateUser создаёт игрока вместе с профилем (стартовый рейтинг 1000)
	// в одной транзакции.
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	// GetProfile возвращает профиль игрока с полной историей рейтинга.
	GetProfile(ctx context.Context, userID int) (*models.PlayerProfile, error)
	Leaderboard(ctx context.Context, limit int) ([]*models.PlayerProfile, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, error)
}

type userService struct {
	txm         repositories.TxManager
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
}

func NewUserService(
	txm repositories.TxManager,
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
) UserService {
	return &userService{
		txm:         txm,
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if input.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrUserEmailConflict)
	}

	user := &models.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Nickname:  input.Nickname,
		Email:     input.Email,
	}

	txErr := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.userRepo.Create(ctx, exec, user); err != nil {
			if errors.Is(err, repositories.ErrUserEmailConflict) {
				return ErrUserEmailConflict
			}
			return err
		}

		profile := &models.PlayerProfile{
			UserID: user.ID,
			Bio:    input.Bio,
			Elo:    models.InitialElo,
		}
		if err := s.profileRepo.Create(ctx, exec, profile); err != nil {
			return fmt.Errorf("failed to create profile for user %d: %w", user.ID, err)
		}
		user.Profile = profile
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID int) (*models.PlayerProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	history, err := s.profileRepo.ListHistory(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load elo history for profile %d: %w", profile.ID, err)
	}
	profile.History = history
	return profile, nil
}

func (s *userService) Leaderboard(ctx context.Context, limit int) ([]*models.PlayerProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.profileRepo.Leaderboard(ctx, limit)
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.List(ctx, limit, offset)
}
