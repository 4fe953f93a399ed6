package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/tournament-manager/models"
	"github.com/Dosada05/tournament-manager/repositories"
)

// Ин-мемори фейки репозиториев. Транзакционность здесь не моделируется:
// fakeTxManager просто вызывает функцию с nil-исполнителем, репозитории
// игнорируют exec.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	m.calls++
	return fn(nil)
}

// --- matches ---

type fakeMatchRepo struct {
	nextID  int
	matches map[int]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1, matches: make(map[int]*models.Match)}
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	match.ID = r.nextID
	match.CreatedAt = time.Now()
	r.nextID++
	stored := *match
	r.matches[match.ID] = &stored
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	stored, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *stored
	return &cp, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, includeDeleted bool) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if m.IsDeleted && !includeDeleted {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeMatchRepo) UpdateWinner(ctx context.Context, exec repositories.SQLExecutor, matchID int, winnerID *int) error {
	m, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.WinnerID = winnerID
	return nil
}

func (r *fakeMatchRepo) UpdateSlotPlayer(ctx context.Context, exec repositories.SQLExecutor, matchID int, slot models.MatchSlot, playerID int) error {
	m, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	pid := playerID
	switch slot {
	case models.SlotLeft:
		m.PlayerAID = &pid
	case models.SlotRight:
		m.PlayerBID = &pid
	}
	return nil
}

func (r *fakeMatchRepo) UpdateNextMatchInfo(ctx context.Context, exec repositories.SQLExecutor, matchID int, nextMatchID *int, slot *models.MatchSlot) error {
	m, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.NextMatchID = nextMatchID
	m.Slot = slot
	return nil
}

func (r *fakeMatchRepo) UpdateReferee(ctx context.Context, matchID int, refereeID *int) error {
	m, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.RefereeID = refereeID
	return nil
}

func (r *fakeMatchRepo) HasActiveByTournament(ctx context.Context, tournamentID int) (bool, error) {
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && !m.IsDeleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMatchRepo) CountUndecided(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	count := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && !m.IsDeleted && m.WinnerID == nil {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) SoftDelete(ctx context.Context, id int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.IsDeleted = true
	return nil
}

// --- tournaments ---

type fakeTournamentRepo struct {
	nextID      int
	tournaments map[int]*models.Tournament
	rosters     map[int][]models.TournamentPlayer
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{
		nextID:      1,
		tournaments: make(map[int]*models.Tournament),
		rosters:     make(map[int][]models.TournamentPlayer),
	}
}

func (r *fakeTournamentRepo) addTournament(status models.TournamentStatus, playerIDs ...int) *models.Tournament {
	t := &models.Tournament{
		ID:             r.nextID,
		Name:           "test",
		Format:         "single_elimination",
		Status:         status,
		TournamentDate: time.Now(),
		CreatedAt:      time.Now(),
	}
	r.nextID++
	r.tournaments[t.ID] = t
	for i, pid := range playerIDs {
		seed := i + 1
		r.rosters[t.ID] = append(r.rosters[t.ID], models.TournamentPlayer{
			ID:           i + 1,
			TournamentID: t.ID,
			PlayerID:     pid,
			Seed:         &seed,
		})
	}
	return t
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	t.ID = r.nextID
	t.CreatedAt = time.Now()
	r.nextID++
	stored := *t
	r.tournaments[t.ID] = &stored
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	stored, ok := r.tournaments[id]
	if !ok || stored.IsDeleted {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *stored
	return &cp, nil
}

func (r *fakeTournamentRepo) GetWithRoster(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Players = append([]models.TournamentPlayer(nil), r.rosters[id]...)
	return t, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	var out []models.Tournament
	for _, t := range r.tournaments {
		if t.IsDeleted {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error {
	t, ok := r.tournaments[tournamentID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *fakeTournamentRepo) SoftDelete(ctx context.Context, id int) error {
	t, ok := r.tournaments[id]
	if !ok || t.IsDeleted {
		return repositories.ErrTournamentNotFound
	}
	t.IsDeleted = true
	t.Status = models.StatusDeleted
	return nil
}

func (r *fakeTournamentRepo) AddPlayer(ctx context.Context, tp *models.TournamentPlayer) error {
	for _, existing := range r.rosters[tp.TournamentID] {
		if existing.PlayerID == tp.PlayerID {
			return repositories.ErrTournamentPlayerConflict
		}
	}
	tp.ID = len(r.rosters[tp.TournamentID]) + 1
	r.rosters[tp.TournamentID] = append(r.rosters[tp.TournamentID], *tp)
	return nil
}

func (r *fakeTournamentRepo) ListExpiredRegistrations(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if t.IsDeleted || t.Status != models.StatusOpen || t.RegistrationClosesAt == nil {
			continue
		}
		if !t.RegistrationClosesAt.After(now) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- profiles ---

type fakeProfileRepo struct {
	nextID   int
	profiles map[int]*models.PlayerProfile // по user_id
	history  []models.EloHistory
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{nextID: 1, profiles: make(map[int]*models.PlayerProfile)}
}

func (r *fakeProfileRepo) addProfile(userID, elo int) *models.PlayerProfile {
	p := &models.PlayerProfile{
		ID:     r.nextID,
		UserID: userID,
		Elo:    elo,
	}
	r.nextID++
	r.profiles[userID] = p
	return p
}

func (r *fakeProfileRepo) Create(ctx context.Context, exec repositories.SQLExecutor, profile *models.PlayerProfile) error {
	if _, ok := r.profiles[profile.UserID]; ok {
		return repositories.ErrProfileConflict
	}
	profile.ID = r.nextID
	r.nextID++
	stored := *profile
	r.profiles[profile.UserID] = &stored
	return nil
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, exec repositories.SQLExecutor, userID int) (*models.PlayerProfile, error) {
	stored, ok := r.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	cp := *stored
	return &cp, nil
}

func (r *fakeProfileRepo) UpdateRatingWithHistory(ctx context.Context, exec repositories.SQLExecutor, profileID int, newElo int, history *models.EloHistory) error {
	for _, p := range r.profiles {
		if p.ID == profileID {
			p.Elo = newElo
			entry := *history
			entry.ID = len(r.history) + 1
			r.history = append(r.history, entry)
			return nil
		}
	}
	return repositories.ErrProfileNotFound
}

func (r *fakeProfileRepo) ListHistory(ctx context.Context, profileID int) ([]models.EloHistory, error) {
	var out []models.EloHistory
	for _, h := range r.history {
		if h.ProfileID == profileID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) Leaderboard(ctx context.Context, limit int) ([]*models.PlayerProfile, error) {
	var out []*models.PlayerProfile
	for _, p := range r.profiles {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Elo > out[j].Elo })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeProfileRepo) SoftDelete(ctx context.Context, id int) error {
	for _, p := range r.profiles {
		if p.ID == id {
			p.IsDeleted = true
			return nil
		}
	}
	return repositories.ErrProfileNotFound
}

// --- users ---

type fakeUserRepo struct {
	nextID int
	users  map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]*models.User)}
}

func (r *fakeUserRepo) addUser(email string) *models.User {
	u := &models.User{ID: r.nextID, Email: email, CreatedAt: time.Now()}
	r.nextID++
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, exec repositories.SQLExecutor, user *models.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	stored, ok := r.users[id]
	if !ok || stored.IsDeleted {
		return nil, repositories.ErrUserNotFound
	}
	cp := *stored
	return &cp, nil
}

func (r *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if !u.IsDeleted {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) SoftDelete(ctx context.Context, id int) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsDeleted = true
	return nil
}
