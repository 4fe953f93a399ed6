package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-manager/brackets"
	"github.com/Dosada05/tournament-manager/models"
	"github.com/Dosada05/tournament-manager/repositories"
)

type MatchService interface {
	// ReportResult фиксирует победителя матча, продвигает его в следующий
	// раунд и закрывает турнир, когда решён последний матч. Повторный вызов
	// с тем же победителем — no-op, операцию можно безопасно ретраить.
	ReportResult(ctx context.Context, matchID int, winnerID int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	AssignReferee(ctx context.Context, matchID int, refereeID *int) error
	SoftDeleteMatch(ctx context.Context, matchID int) error
}

type matchService struct {
	txm            repositories.TxManager
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	eloService     EloService
	locker         *TournamentLocker
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewMatchService(
	txm repositories.TxManager,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	eloService EloService,
	locker *TournamentLocker,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txm:            txm,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		eloService:     eloService,
		locker:         locker,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) ReportResult(ctx context.Context, matchID int, winnerID int) (*models.Match, error) {
	// Первая загрузка нужна только чтобы узнать турнир и взять его лок;
	// внутри критической секции матч перечитывается.
	peek, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	tournamentID := peek.TournamentID

	s.locker.Lock(tournamentID)
	defer s.locker.Unlock(tournamentID)

	var match *models.Match
	completed := false

	txErr := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err = s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if match.IsDeleted {
			return ErrMatchDeleted
		}

		tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if tournament.Status != models.StatusInProgress {
			return ErrTournamentNotActive
		}

		// Повторная доставка того же результата — не ошибка.
		if match.WinnerID != nil && *match.WinnerID == winnerID {
			return nil
		}

		if !match.HasPlayer(winnerID) {
			return ErrInvalidWinner
		}

		// Смена победителя допустима, только пока прежний не продвинут в
		// родительский матч: откатывать следующий раунд движок не берётся.
		if match.WinnerID != nil && match.NextMatchID != nil {
			parent, err := s.matchRepo.GetByID(ctx, exec, *match.NextMatchID)
			if err != nil {
				return fmt.Errorf("failed to load parent match %d: %w", *match.NextMatchID, err)
			}
			if match.Slot != nil && parentSlotHolds(parent, *match.Slot, *match.WinnerID) {
				return ErrConflictingAdvancement
			}
		}

		if err := s.matchRepo.UpdateWinner(ctx, exec, matchID, &winnerID); err != nil {
			return err
		}
		match.WinnerID = &winnerID

		// Рейтинг меняется только когда оба соперника реальные.
		if match.PlayerAID != nil && match.PlayerBID != nil {
			if err := s.eloService.UpdateRatings(ctx, exec, *match.PlayerAID, *match.PlayerBID, winnerID); err != nil {
				return err
			}
		}

		if err := advanceIntoParent(ctx, exec, s.matchRepo, match); err != nil {
			return err
		}

		undecided, err := s.matchRepo.CountUndecided(ctx, exec, match.TournamentID)
		if err != nil {
			return err
		}
		if undecided == 0 {
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, match.TournamentID, models.StatusCompleted); err != nil {
				return fmt.Errorf("failed to complete tournament %d: %w", match.TournamentID, err)
			}
			completed = true
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.logger.Info("match result reported",
		slog.Int("match_id", matchID),
		slog.Int("winner_id", winnerID),
		slog.Int("tournament_id", tournamentID),
		slog.Bool("tournament_completed", completed))

	if s.hub != nil {
		room := brackets.RoomForTournament(tournamentID)
		s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
			Type:    brackets.MessageMatchUpdated,
			Payload: match,
			RoomID:  room,
		})
		if completed {
			s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
				Type:    brackets.MessageTournamentCompleted,
				Payload: map[string]int{"tournament_id": tournamentID},
				RoomID:  room,
			})
		}
	}

	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) AssignReferee(ctx context.Context, matchID int, refereeID *int) error {
	err := s.matchRepo.UpdateReferee(ctx, matchID, refereeID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	return nil
}

func (s *matchService) SoftDeleteMatch(ctx context.Context, matchID int) error {
	err := s.matchRepo.SoftDelete(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	return nil
}
