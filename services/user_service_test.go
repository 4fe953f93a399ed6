package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/tournament-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserServiceFixture() (UserService, *fakeUserRepo, *fakeProfileRepo) {
	userRepo := newFakeUserRepo()
	profileRepo := newFakeProfileRepo()
	return NewUserService(&fakeTxManager{}, userRepo, profileRepo), userRepo, profileRepo
}

func TestCreateUserCreatesProfileWithInitialRating(t *testing.T) {
	svc, _, profileRepo := newUserServiceFixture()

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		FirstName: "Anna",
		LastName:  "K",
		Email:     "anna@example.com",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	require.NotNil(t, user.Profile)
	assert.Equal(t, models.InitialElo, user.Profile.Elo)

	stored, err := profileRepo.GetByUserID(context.Background(), nil, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InitialElo, stored.Elo)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newUserServiceFixture()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateUserInput{Email: "dup@example.com"})
	assert.ErrorIs(t, err, ErrUserEmailConflict)

	_, err = svc.CreateUser(ctx, CreateUserInput{})
	assert.ErrorIs(t, err, ErrUserEmailConflict)
}

func TestGetProfileIncludesHistory(t *testing.T) {
	svc, _, profileRepo := newUserServiceFixture()
	ctx := context.Background()

	profile := profileRepo.addProfile(1, 1016)
	require.NoError(t, profileRepo.UpdateRatingWithHistory(ctx, nil, profile.ID, 1016, &models.EloHistory{
		ProfileID: profile.ID,
		OldRating: 1000,
		NewRating: 1016,
		MatchDate: time.Now(),
	}))

	loaded, err := svc.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1016, loaded.Elo)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, 1000, loaded.History[0].OldRating)

	_, err = svc.GetProfile(ctx, 999)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestLeaderboardOrdersByRating(t *testing.T) {
	svc, _, profileRepo := newUserServiceFixture()

	profileRepo.addProfile(1, 900)
	profileRepo.addProfile(2, 1400)
	profileRepo.addProfile(3, 1100)

	board, err := svc.Leaderboard(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, 1400, board[0].Elo)
	assert.Equal(t, 1100, board[1].Elo)
}

func TestListUsersClampsPagination(t *testing.T) {
	svc, userRepo, _ := newUserServiceFixture()

	for i := 0; i < 3; i++ {
		userRepo.addUser(string(rune('a'+i)) + "@example.com")
	}

	users, err := svc.ListUsers(context.Background(), -5, -1)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}
