package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-manager/models"
	"github.com/Dosada05/tournament-manager/repositories"
	"github.com/Dosada05/tournament-manager/storage"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name                 string     `json:"name"`
	Format               string     `json:"format"`
	OrganizerID          *int       `json:"organizer_id,omitempty"`
	TournamentDate       time.Time  `json:"tournament_date"`
	RegistrationClosesAt *time.Time `json:"registration_closes_at,omitempty"`
}

type RegisterPlayerInput struct {
	PlayerID int  `json:"player_id"`
	Seed     *int `json:"seed,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	// UpdateStatus выполняет организаторские переходы статуса (открытие и
	// закрытие регистрации, удаление). Переходы closed -> in_progress и
	// in_progress -> completed делает движок сетки, не этот метод.
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	RegisterPlayer(ctx context.Context, tournamentID int, input RegisterPlayerInput) (*models.TournamentPlayer, error)
	SoftDeleteTournament(ctx context.Context, id int) error
	UploadLogo(ctx context.Context, tournamentID int, contentType string, r io.Reader) (*models.Tournament, error)
	// AutoCloseRegistrations закрывает регистрацию турниров, у которых
	// истёк registration_closes_at. Запускается планировщиком.
	AutoCloseRegistrations(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	userRepo       repositories.UserRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		userRepo:       userRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	format := input.Format
	if format == "" {
		format = "single_elimination"
	}
	if format != "single_elimination" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	tournamentDate := input.TournamentDate
	if tournamentDate.IsZero() {
		tournamentDate = time.Now().UTC()
	}

	tournament := &models.Tournament{
		Name:                 input.Name,
		Format:               format,
		OrganizerID:          input.OrganizerID,
		Status:               models.StatusOpen,
		TournamentDate:       tournamentDate,
		RegistrationClosesAt: input.RegistrationClosesAt,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, s.mapRepoError(err)
	}
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	// Состав и матчи независимы, грузим параллельно.
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		withRoster, err := s.tournamentRepo.GetWithRoster(gCtx, id)
		if err != nil {
			return err
		}
		tournament.Players = withRoster.Players
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, nil, id, false)
		if err != nil {
			return err
		}
		tournament.Matches = make([]models.Match, len(matches))
		for i, m := range matches {
			tournament.Matches[i] = *m
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load details for tournament %d: %w", id, err)
	}

	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		s.populateLogoURL(&tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	if !isValidTournamentStatus(status) {
		return nil, ErrTournamentInvalidStatus
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if !isValidStatusTransition(tournament.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, status)
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, s.mapRepoError(err)
	}
	tournament.Status = status
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) RegisterPlayer(ctx context.Context, tournamentID int, input RegisterPlayerInput) (*models.TournamentPlayer, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if !tournament.IsRegistrationOpen(time.Now().UTC()) {
		return nil, ErrRegistrationNotOpen
	}

	player, err := s.userRepo.GetByID(ctx, input.PlayerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	tp := &models.TournamentPlayer{
		TournamentID: tournamentID,
		PlayerID:     player.ID,
		Seed:         input.Seed,
	}
	if err := s.tournamentRepo.AddPlayer(ctx, tp); err != nil {
		return nil, s.mapRepoError(err)
	}
	tp.Player = player
	return tp, nil
}

func (s *tournamentService) SoftDeleteTournament(ctx context.Context, id int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err)
	}

	if err := s.tournamentRepo.SoftDelete(ctx, id); err != nil {
		return s.mapRepoError(err)
	}

	// Логотип подчищаем по best-effort: турнир уже помечен удалённым.
	if tournament.LogoKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *tournament.LogoKey); err != nil {
			s.logger.Error("failed to delete tournament logo",
				slog.Int("tournament_id", id), slog.Any("error", err))
		}
	}
	return nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, tournamentID int, contentType string, r io.Reader) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	key := fmt.Sprintf("tournaments/%d/logo", tournamentID)
	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo for tournament %d: %w", tournamentID, err)
	}

	if err := s.tournamentRepo.UpdateLogoKey(ctx, tournamentID, &result.Key); err != nil {
		return nil, s.mapRepoError(err)
	}
	tournament.LogoKey = &result.Key
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) AutoCloseRegistrations(ctx context.Context) error {
	expired, err := s.tournamentRepo.ListExpiredRegistrations(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to list expired registrations: %w", err)
	}

	for _, t := range expired {
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, models.StatusClosed); err != nil {
			s.logger.Error("failed to auto-close registration",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		s.logger.Info("registration auto-closed", slog.Int("tournament_id", t.ID))
	}
	return nil
}

func (s *tournamentService) populateLogoURL(t *models.Tournament) {
	if s.uploader == nil || t.LogoKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*t.LogoKey)
	if url != "" {
		t.LogoURL = &url
	}
}

func (s *tournamentService) mapRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentPlayerConflict):
		return ErrRegistrationConflict
	case errors.Is(err, repositories.ErrTournamentPlayerInvalid):
		return ErrUserNotFound
	default:
		return err
	}
}
