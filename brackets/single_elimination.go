package brackets

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-manager/models"
)

var ErrNotEnoughPlayers = errors.New("not enough players to generate a single elimination bracket (minimum 2)")

// BracketMatch — матч в сгенерированной сетке до сохранения в БД.
// Slot и ParentUID фиксируются здесь и больше никогда не пересчитываются:
// это структурный каркас, на который опирается продвижение победителей.
type BracketMatch struct {
	UID          string
	Round        int
	OrderInRound int

	// Slot — позиция под родителем (left/right), nil только у финала.
	Slot      *models.MatchSlot
	ParentUID *string

	PlayerAID *int
	PlayerBID *int

	// WinnerID устанавливается сразу для bye-матчей первого раунда.
	WinnerID *int
}

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "single_elimination"
}

// BracketSize возвращает наименьшую степень двойки, не меньшую n.
func BracketSize(n int) int {
	size := 1
	for size < n {
		size *= 2
	}
	return size
}

func matchUID(round, order int) string {
	return fmt.Sprintf("R%dM%d", round, order)
}

func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	players := params.Players
	n := len(players)
	if n < 2 {
		return nil, ErrNotEnoughPlayers
	}

	bracketSize := BracketSize(n)
	numByes := bracketSize - n
	numRounds := 0
	for s := bracketSize; s > 1; s /= 2 {
		numRounds++
	}

	// Раскладываем посеянный список по позициям первого раунда. Bye
	// достаются верхним сеяным: пара i < numByes — это (player[i], bye),
	// остальные играют между собой. Два bye в одной паре невозможны.
	slots := make([]*int, bracketSize)
	for i := 0; i < numByes; i++ {
		pid := players[i].PlayerID
		slots[2*i] = &pid
	}
	idx := numByes
	for pos := 2 * numByes; pos < bracketSize; pos++ {
		pid := players[idx].PlayerID
		slots[pos] = &pid
		idx++
	}

	allMatches := make([]*BracketMatch, 0, bracketSize-1)

	// Первый раунд: пары (2i, 2i+1); матч с одним bye сразу получает
	// победителя, рейтинг при этом не меняется.
	firstRoundCount := bracketSize / 2
	for i := 0; i < firstRoundCount; i++ {
		bm := &BracketMatch{
			UID:          matchUID(1, i+1),
			Round:        1,
			OrderInRound: i + 1,
			PlayerAID:    slots[2*i],
			PlayerBID:    slots[2*i+1],
		}
		if bm.PlayerAID != nil && bm.PlayerBID == nil {
			bm.WinnerID = bm.PlayerAID
		} else if bm.PlayerAID == nil && bm.PlayerBID != nil {
			bm.WinnerID = bm.PlayerBID
		} else if bm.PlayerAID == nil && bm.PlayerBID == nil {
			return nil, fmt.Errorf("internal error: round 1 match %d has two byes", i+1)
		}
		allMatches = append(allMatches, bm)
	}

	// Последующие раунды создаются пустыми, победители заполнят их по мере
	// продвижения.
	for r := 2; r <= numRounds; r++ {
		matchCount := bracketSize >> uint(r)
		for i := 0; i < matchCount; i++ {
			allMatches = append(allMatches, &BracketMatch{
				UID:          matchUID(r, i+1),
				Round:        r,
				OrderInRound: i + 1,
			})
		}
	}

	// Связываем детей с родителями: матч i раунда r питает матч i/2 раунда
	// r+1; чётный индекс — левый слот, нечётный — правый.
	for _, bm := range allMatches {
		if bm.Round == numRounds {
			continue // финал, родителя нет
		}
		childIdx := bm.OrderInRound - 1
		parentUID := matchUID(bm.Round+1, childIdx/2+1)
		slot := models.SlotLeft
		if childIdx%2 != 0 {
			slot = models.SlotRight
		}
		bm.ParentUID = &parentUID
		bm.Slot = &slot
	}

	return allMatches, nil
}

// GroupByRound группирует сохранённые матчи по раундам; внутри раунда
// порядок по id стабилен независимо от порядка загрузки.
func GroupByRound(matches []*models.Match) map[int][]*models.Match {
	rounds := make(map[int][]*models.Match)
	for _, m := range matches {
		rounds[m.Round] = append(rounds[m.Round], m)
	}
	for _, round := range rounds {
		sort.Slice(round, func(i, j int) bool {
			return round[i].ID < round[j].ID
		})
	}
	return rounds
}
