package services

import "sync"

// TournamentLocker сериализует операции над одним турниром: построение сетки
// и приём результатов выполняются в критической секции на весь цикл
// load -> mutate -> persist. Разные турниры не блокируют друг друга.
type TournamentLocker struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewTournamentLocker() *TournamentLocker {
	return &TournamentLocker{
		locks: make(map[int]*sync.Mutex),
	}
}

func (l *TournamentLocker) Lock(tournamentID int) {
	l.mu.Lock()
	m, ok := l.locks[tournamentID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tournamentID] = m
	}
	l.mu.Unlock()
	m.Lock()
}

func (l *TournamentLocker) Unlock(tournamentID int) {
	l.mu.Lock()
	m, ok := l.locks[tournamentID]
	l.mu.Unlock()
	if ok {
		m.Unlock()
	}
}
