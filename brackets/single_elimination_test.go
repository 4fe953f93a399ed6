package brackets

import (
	"context"
	"testing"

	"github.com/Dosada05/tournament-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededPlayers(ids ...int) []models.TournamentPlayer {
	players := make([]models.TournamentPlayer, 0, len(ids))
	for i, id := range ids {
		seed := i + 1
		players = append(players, models.TournamentPlayer{
			TournamentID: 1,
			PlayerID:     id,
			Seed:         &seed,
		})
	}
	return players
}

func generate(t *testing.T, ids ...int) []*BracketMatch {
	t.Helper()
	gen := NewSingleEliminationGenerator()
	matches, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: 1,
		Players:      seededPlayers(ids...),
	})
	require.NoError(t, err)
	return matches
}

func TestBracketSize(t *testing.T) {
	tests := []struct {
		players int
		want    int
	}{
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{7, 8},
		{8, 8},
		{9, 16},
		{17, 32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BracketSize(tt.players), "BracketSize(%d)", tt.players)
	}
}

func TestGenerateBracketRejectsTooFewPlayers(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	for _, n := range []int{0, 1} {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i + 1
		}
		_, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
			TournamentID: 1,
			Players:      seededPlayers(ids...),
		})
		assert.ErrorIs(t, err, ErrNotEnoughPlayers, "n=%d", n)
	}
}

func TestGenerateBracketPowerOfTwo(t *testing.T) {
	matches := generate(t, 10, 20, 30, 40)

	require.Len(t, matches, 3) // 2 полуфинала + финал

	round1 := matchesInRound(matches, 1)
	round2 := matchesInRound(matches, 2)
	require.Len(t, round1, 2)
	require.Len(t, round2, 1)

	// Без bye ни один матч первого раунда не решён заранее.
	for _, m := range round1 {
		require.NotNil(t, m.PlayerAID)
		require.NotNil(t, m.PlayerBID)
		assert.Nil(t, m.WinnerID)
	}

	// Пары по порядку посева: (10,20) и (30,40).
	assert.Equal(t, 10, *round1[0].PlayerAID)
	assert.Equal(t, 20, *round1[0].PlayerBID)
	assert.Equal(t, 30, *round1[1].PlayerAID)
	assert.Equal(t, 40, *round1[1].PlayerBID)

	// Оба полуфинала питают финал: первый в левый слот, второй в правый.
	final := round2[0]
	assert.Nil(t, final.Slot)
	assert.Nil(t, final.ParentUID)
	require.NotNil(t, round1[0].ParentUID)
	require.NotNil(t, round1[1].ParentUID)
	assert.Equal(t, final.UID, *round1[0].ParentUID)
	assert.Equal(t, final.UID, *round1[1].ParentUID)
	assert.Equal(t, models.SlotLeft, *round1[0].Slot)
	assert.Equal(t, models.SlotRight, *round1[1].Slot)
}

func TestGenerateBracketWithOneBye(t *testing.T) {
	matches := generate(t, 10, 20, 30)

	require.Len(t, matches, 3) // сетка на 4 позиции

	round1 := matchesInRound(matches, 1)
	require.Len(t, round1, 2)

	// Bye достаётся первому сеяному, матч решён сразу.
	bye := round1[0]
	require.NotNil(t, bye.PlayerAID)
	assert.Equal(t, 10, *bye.PlayerAID)
	assert.Nil(t, bye.PlayerBID)
	require.NotNil(t, bye.WinnerID)
	assert.Equal(t, 10, *bye.WinnerID)

	// Остальные играют между собой.
	real := round1[1]
	require.NotNil(t, real.PlayerAID)
	require.NotNil(t, real.PlayerBID)
	assert.Equal(t, 20, *real.PlayerAID)
	assert.Equal(t, 30, *real.PlayerBID)
	assert.Nil(t, real.WinnerID)
}

func TestGenerateBracketNeverPairsTwoByes(t *testing.T) {
	// 5 игроков -> сетка на 8, три bye. При наивной раскладке хвостом списка
	// два bye оказались бы в одной паре.
	for _, n := range []int{3, 5, 6, 9, 11, 13} {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = (i + 1) * 100
		}
		matches := generate(t, ids...)

		for _, m := range matchesInRound(matches, 1) {
			assert.False(t, m.PlayerAID == nil && m.PlayerBID == nil,
				"n=%d: match %s has two byes", n, m.UID)
		}
	}
}

func TestGenerateBracketSlotAndParentLinks(t *testing.T) {
	matches := generate(t, 1, 2, 3, 4, 5, 6, 7, 8)

	require.Len(t, matches, 7)

	numRounds := 3
	type slotPair struct{ left, right int }
	fills := make(map[string]*slotPair)

	for _, m := range matches {
		if m.Round == numRounds {
			assert.Nil(t, m.ParentUID, "final has no parent")
			assert.Nil(t, m.Slot)
			continue
		}
		require.NotNil(t, m.ParentUID, "match %s must have a parent", m.UID)
		require.NotNil(t, m.Slot, "match %s must have a slot", m.UID)

		pair := fills[*m.ParentUID]
		if pair == nil {
			pair = &slotPair{}
			fills[*m.ParentUID] = pair
		}
		switch *m.Slot {
		case models.SlotLeft:
			pair.left++
		case models.SlotRight:
			pair.right++
		}
	}

	// Каждый родитель получает ровно одного левого и одного правого ребёнка.
	require.Len(t, fills, 3)
	for uid, pair := range fills {
		assert.Equal(t, 1, pair.left, "parent %s left children", uid)
		assert.Equal(t, 1, pair.right, "parent %s right children", uid)
	}
}

func TestGroupByRound(t *testing.T) {
	matches := []*models.Match{
		{ID: 5, Round: 2},
		{ID: 2, Round: 1},
		{ID: 4, Round: 2},
		{ID: 1, Round: 1},
		{ID: 3, Round: 1},
	}

	rounds := GroupByRound(matches)

	require.Len(t, rounds, 2)
	require.Len(t, rounds[1], 3)
	require.Len(t, rounds[2], 2)

	assert.Equal(t, []int{1, 2, 3}, matchIDs(rounds[1]))
	assert.Equal(t, []int{4, 5}, matchIDs(rounds[2]))
}

func matchesInRound(matches []*BracketMatch, round int) []*BracketMatch {
	var out []*BracketMatch
	for _, m := range matches {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}

func matchIDs(matches []*models.Match) []int {
	ids := make([]int, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return ids
}
