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

type BracketService interface {
	// GenerateBracket строит и сохраняет полную сетку турнира и переводит
	// его в in_progress. Повторный вызов при живой сетке — ошибка.
	GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// GetBracket возвращает неудалённые матчи турнира, сгруппированные по
	// раундам.
	GetBracket(ctx context.Context, tournamentID int) (map[int][]*models.Match, error)
}

type bracketService struct {
	txm            repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	locker         *TournamentLocker
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewBracketService(
	txm repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	locker *TournamentLocker,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		txm:            txm,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		locker:         locker,
		hub:            hub,
		logger:         logger,
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	s.locker.Lock(tournamentID)
	defer s.locker.Unlock(tournamentID)

	tournament, err := s.tournamentRepo.GetWithRoster(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d with roster: %w", tournamentID, err)
	}

	if tournament.Status != models.StatusClosed && tournament.Status != models.StatusPendingBracket {
		return nil, ErrBracketInvalidStatus
	}

	hasBracket, err := s.matchRepo.HasActiveByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing bracket for tournament %d: %w", tournamentID, err)
	}
	if hasBracket {
		return nil, ErrBracketAlreadyExists
	}

	if len(tournament.Players) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	var generator brackets.BracketGenerator
	switch tournament.Format {
	case "single_elimination":
		generator = brackets.NewSingleEliminationGenerator()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, tournament.Format)
	}

	generated, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		TournamentID: tournamentID,
		Players:      tournament.Players,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughPlayers) {
			return nil, ErrNotEnoughPlayers
		}
		return nil, fmt.Errorf("failed to generate bracket structure for tournament %d: %w", tournamentID, err)
	}

	saved := make([]*models.Match, 0, len(generated))
	txErr := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		byUID := make(map[string]*models.Match, len(generated))

		// Первый проход: создаём все матчи. Родительские связи ещё не
		// известны — БД присвоит id только при вставке.
		for _, bm := range generated {
			match := &models.Match{
				TournamentID: tournamentID,
				Round:        bm.Round,
				Slot:         bm.Slot,
				PlayerAID:    bm.PlayerAID,
				PlayerBID:    bm.PlayerBID,
				WinnerID:     bm.WinnerID,
			}
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return fmt.Errorf("failed to create match %s: %w", bm.UID, err)
			}
			byUID[bm.UID] = match
			saved = append(saved, match)
		}

		// Второй проход: проставляем next_match_id по ParentUID.
		for _, bm := range generated {
			if bm.ParentUID == nil {
				continue
			}
			child := byUID[bm.UID]
			parent, ok := byUID[*bm.ParentUID]
			if !ok {
				return fmt.Errorf("internal error: parent %s of match %s was not created", *bm.ParentUID, bm.UID)
			}
			if err := s.matchRepo.UpdateNextMatchInfo(ctx, exec, child.ID, &parent.ID, child.Slot); err != nil {
				return err
			}
			child.NextMatchID = &parent.ID
		}

		// Bye-победители первого раунда продвигаются сразу, тем же путём,
		// что и обычные результаты. Запись дублируется в in-memory копию
		// родителя: возвращаемый срез должен совпадать с сохранённой сеткой.
		byID := make(map[int]*models.Match, len(saved))
		for _, match := range saved {
			byID[match.ID] = match
		}
		for _, match := range saved {
			if match.Round != 1 || !match.HasWinner() {
				continue
			}
			if err := advanceIntoParent(ctx, exec, s.matchRepo, match); err != nil {
				return err
			}
			if match.NextMatchID == nil || match.Slot == nil {
				continue
			}
			parent := byID[*match.NextMatchID]
			switch *match.Slot {
			case models.SlotLeft:
				if parent.PlayerAID == nil {
					parent.PlayerAID = match.WinnerID
				}
			case models.SlotRight:
				if parent.PlayerBID == nil {
					parent.PlayerBID = match.WinnerID
				}
			}
		}

		if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusInProgress); err != nil {
			return fmt.Errorf("failed to set tournament %d in progress: %w", tournamentID, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("players", len(tournament.Players)),
		slog.Int("matches", len(saved)))

	if s.hub != nil {
		room := brackets.RoomForTournament(tournamentID)
		s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
			Type:    brackets.MessageBracketGenerated,
			Payload: brackets.GroupByRound(saved),
			RoomID:  room,
		})
	}

	return saved, nil
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) (map[int][]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return brackets.GroupByRound(matches), nil
}
