package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Dosada05/tournament-manager/models"
	"github.com/Dosada05/tournament-manager/repositories"
)

// kFactor — чувствительность рейтинга к одному результату.
const kFactor = 32

// EloService обновляет рейтинги пары игроков по результату матча.
// Вызывается движком продвижения только когда оба соперника реальные:
// bye никогда не меняет рейтинг.
type EloService interface {
	UpdateRatings(ctx context.Context, exec repositories.SQLExecutor, playerAID, playerBID, winnerID int) error
}

type eloService struct {
	profileRepo repositories.ProfileRepository
	now         func() time.Time
}

func NewEloService(profileRepo repositories.ProfileRepository) EloService {
	return &eloService{
		profileRepo: profileRepo,
		now:         time.Now,
	}
}

// calculateElo возвращает новые рейтинги пары после матча.
// Округление — math.Round, то есть половина от нуля (1007.5 -> 1008).
func calculateElo(ratingA, ratingB int, aWon bool) (newA, newB int) {
	ra := float64(ratingA)
	rb := float64(ratingB)

	expectedA := 1.0 / (1.0 + math.Pow(10, (rb-ra)/400.0))
	expectedB := 1.0 / (1.0 + math.Pow(10, (ra-rb)/400.0))

	scoreA, scoreB := 0.0, 1.0
	if aWon {
		scoreA, scoreB = 1.0, 0.0
	}

	newA = int(math.Round(ra + kFactor*(scoreA-expectedA)))
	newB = int(math.Round(rb + kFactor*(scoreB-expectedB)))
	return newA, newB
}

func (s *eloService) UpdateRatings(ctx context.Context, exec repositories.SQLExecutor, playerAID, playerBID, winnerID int) error {
	profileA, err := s.profileRepo.GetByUserID(ctx, exec, playerAID)
	if err != nil {
		return s.wrapProfileError(err, playerAID)
	}
	profileB, err := s.profileRepo.GetByUserID(ctx, exec, playerBID)
	if err != nil {
		return s.wrapProfileError(err, playerBID)
	}

	oldA, oldB := profileA.Elo, profileB.Elo
	newA, newB := calculateElo(oldA, oldB, winnerID == playerAID)

	matchDate := s.now().UTC()

	err = s.profileRepo.UpdateRatingWithHistory(ctx, exec, profileA.ID, newA, &models.EloHistory{
		ProfileID: profileA.ID,
		OldRating: oldA,
		NewRating: newA,
		MatchDate: matchDate,
	})
	if err != nil {
		return fmt.Errorf("failed to update rating for player %d: %w", playerAID, err)
	}

	err = s.profileRepo.UpdateRatingWithHistory(ctx, exec, profileB.ID, newB, &models.EloHistory{
		ProfileID: profileB.ID,
		OldRating: oldB,
		NewRating: newB,
		MatchDate: matchDate,
	})
	if err != nil {
		return fmt.Errorf("failed to update rating for player %d: %w", playerBID, err)
	}
	return nil
}

func (s *eloService) wrapProfileError(err error, playerID int) error {
	if errors.Is(err, repositories.ErrProfileNotFound) {
		// Профиль создаётся вместе с игроком; его отсутствие здесь —
		// признак повреждения данных, а не ожидаемая ситуация.
		return fmt.Errorf("%w: player %d", ErrProfileNotFound, playerID)
	}
	return fmt.Errorf("failed to load profile for player %d: %w", playerID, err)
}
