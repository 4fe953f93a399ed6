package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-manager/models"
	"github.com/Dosada05/tournament-manager/repositories"
)

// --- Общие хелперы ---

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	// Closed -> InProgress и InProgress -> Completed выполняет сам движок
	// сетки; остальные переходы делает организатор.
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusOpen:           {models.StatusClosed, models.StatusDeleted},
		models.StatusClosed:         {models.StatusOpen, models.StatusPendingBracket, models.StatusInProgress, models.StatusDeleted},
		models.StatusPendingBracket: {models.StatusInProgress, models.StatusDeleted},
		models.StatusInProgress:     {models.StatusCompleted, models.StatusDeleted},
		models.StatusCompleted:      {},
		models.StatusDeleted:        {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

func isValidTournamentStatus(status models.TournamentStatus) bool {
	switch status {
	case models.StatusOpen, models.StatusClosed, models.StatusPendingBracket,
		models.StatusInProgress, models.StatusCompleted, models.StatusDeleted:
		return true
	}
	return false
}

// advanceIntoParent записывает победителя матча в слот его родителя.
// Слот определяется только полем child.Slot, зафиксированным при построении
// сетки. Уже занятый слот не перезаписывается: при дублированной или
// пришедшей не по порядку доставке первый записавший выигрывает.
func advanceIntoParent(ctx context.Context, exec repositories.SQLExecutor, matchRepo repositories.MatchRepository, child *models.Match) error {
	if child.NextMatchID == nil || child.WinnerID == nil {
		return nil
	}
	if child.Slot == nil {
		return fmt.Errorf("match %d has a parent but no slot assigned", child.ID)
	}

	parent, err := matchRepo.GetByID(ctx, exec, *child.NextMatchID)
	if err != nil {
		return fmt.Errorf("failed to load parent match %d: %w", *child.NextMatchID, err)
	}

	var occupied *int
	switch *child.Slot {
	case models.SlotLeft:
		occupied = parent.PlayerAID
	case models.SlotRight:
		occupied = parent.PlayerBID
	default:
		return fmt.Errorf("match %d has unknown slot %q", child.ID, *child.Slot)
	}
	if occupied != nil {
		return nil
	}

	return matchRepo.UpdateSlotPlayer(ctx, exec, parent.ID, *child.Slot, *child.WinnerID)
}

// parentSlotHolds сообщает, занимает ли playerID слот родителя,
// закреплённый за данным матчем.
func parentSlotHolds(parent *models.Match, slot models.MatchSlot, playerID int) bool {
	switch slot {
	case models.SlotLeft:
		return parent.PlayerAID != nil && *parent.PlayerAID == playerID
	case models.SlotRight:
		return parent.PlayerBID != nil && *parent.PlayerBID == playerID
	}
	return false
}
