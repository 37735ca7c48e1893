package leaderboard

import (
	"context"
	"slices"
	"sync"

	"github.com/coder/quartz"
)

// MemoryStore keeps the board in process. It backs tests and offline play.
type MemoryStore struct {
	mu      sync.Mutex
	clock   quartz.Clock
	entries []Entry
}

// NewMemoryStore creates an empty board. A nil clock uses the real one.
func NewMemoryStore(clock quartz.Clock) *MemoryStore {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &MemoryStore{clock: clock}
}

func (m *MemoryStore) Top(ctx context.Context, n int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.top(n), nil
}

func (m *MemoryStore) top(n int) []Entry {
	n = min(max(n, 0), len(m.entries))
	return slices.Clone(m.entries[:n])
}

func (m *MemoryStore) Submit(ctx context.Context, player string, score int64, n int) (SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return SubmitResult{}, err
	}
	player, err := NormalizePlayer(player)
	if err != nil {
		return SubmitResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	idx := slices.IndexFunc(m.entries, func(e Entry) bool { return e.Player == player })
	switch {
	case idx < 0:
		m.entries = append(m.entries, Entry{Player: player, Score: score, AchievedAt: now})
	case score > m.entries[idx].Score:
		m.entries[idx] = Entry{Player: player, Score: score, AchievedAt: now}
	}

	slices.SortStableFunc(m.entries, func(a, b Entry) int {
		switch {
		case ranksBefore(a, b):
			return -1
		case ranksBefore(b, a):
			return 1
		}
		return 0
	})
	if len(m.entries) > n {
		m.entries = m.entries[:n]
	}
	return placement(m.top(n), player, score), nil
}
