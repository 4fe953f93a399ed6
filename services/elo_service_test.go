package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateElo(t *testing.T) {
	tests := []struct {
		name     string
		ratingA  int
		ratingB  int
		aWon     bool
		wantNewA int
		wantNewB int
	}{
		{"equal ratings, A wins", 1000, 1000, true, 1016, 984},
		{"favorite wins", 1200, 1000, true, 1208, 992},
		{"underdog wins", 1200, 1000, false, 1176, 1024},
		{"big underdog wins", 1000, 1400, true, 1029, 1371},
		{"favorite wins as B", 900, 1100, false, 892, 1108},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newA, newB := calculateElo(tt.ratingA, tt.ratingB, tt.aWon)
			assert.Equal(t, tt.wantNewA, newA)
			assert.Equal(t, tt.wantNewB, newB)
		})
	}
}

func TestCalculateEloZeroSumPoints(t *testing.T) {
	// До округления обмен очками симметричен: сумма рейтингов меняется
	// максимум на 1 из-за независимого округления сторон.
	pairs := [][2]int{{1000, 1000}, {1200, 1000}, {1000, 1400}, {900, 1100}, {1500, 700}}
	for _, pair := range pairs {
		newA, newB := calculateElo(pair[0], pair[1], true)
		diff := (newA + newB) - (pair[0] + pair[1])
		assert.LessOrEqual(t, diff, 1, "ratings %v", pair)
		assert.GreaterOrEqual(t, diff, -1, "ratings %v", pair)
	}
}

func TestUpdateRatingsWritesHistoryForBothPlayers(t *testing.T) {
	profileRepo := newFakeProfileRepo()
	profileA := profileRepo.addProfile(1, 1200)
	profileB := profileRepo.addProfile(2, 1000)

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &eloService{profileRepo: profileRepo, now: func() time.Time { return fixed }}

	// Аутсайдер выигрывает.
	err := svc.UpdateRatings(context.Background(), nil, 1, 2, 2)
	require.NoError(t, err)

	updatedA, err := profileRepo.GetByUserID(context.Background(), nil, 1)
	require.NoError(t, err)
	updatedB, err := profileRepo.GetByUserID(context.Background(), nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 1176, updatedA.Elo)
	assert.Equal(t, 1024, updatedB.Elo)

	historyA, err := profileRepo.ListHistory(context.Background(), profileA.ID)
	require.NoError(t, err)
	historyB, err := profileRepo.ListHistory(context.Background(), profileB.ID)
	require.NoError(t, err)
	require.Len(t, historyA, 1)
	require.Len(t, historyB, 1)

	assert.Equal(t, 1200, historyA[0].OldRating)
	assert.Equal(t, 1176, historyA[0].NewRating)
	assert.Equal(t, 1000, historyB[0].OldRating)
	assert.Equal(t, 1024, historyB[0].NewRating)

	// Обе записи истории получают одну и ту же дату матча.
	assert.Equal(t, fixed, historyA[0].MatchDate)
	assert.Equal(t, fixed, historyB[0].MatchDate)
}

func TestUpdateRatingsMissingProfile(t *testing.T) {
	profileRepo := newFakeProfileRepo()
	profileRepo.addProfile(1, 1000)

	svc := &eloService{profileRepo: profileRepo, now: time.Now}

	err := svc.UpdateRatings(context.Background(), nil, 1, 2, 1)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
