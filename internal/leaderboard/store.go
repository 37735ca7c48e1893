// Package leaderboard keeps the best session scores. Entries are ordered by
// score descending, then by the time the score was achieved, and only the top
// few survive each submission.
package leaderboard

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultSize is how many entries the board keeps.
	DefaultSize = 5
	// MaxPlayerLength is the longest accepted player name, in runes.
	MaxPlayerLength = 40
)

var (
	ErrBadPlayer   = errors.New("bad_player")
	ErrBadScore    = errors.New("bad_score")
	ErrUnavailable = errors.New("db_unavailable")
)

// Entry is one row of the board.
type Entry struct {
	Player     string    `json:"player"`
	Score      int64     `json:"score"`
	AchievedAt time.Time `json:"-"`
}

// SubmitResult reports whether a submission made the board.
type SubmitResult struct {
	Entered     bool    `json:"entered"`
	Rank        int     `json:"rank,omitempty"`
	Leaderboard []Entry `json:"leaderboard"`
}

// Store persists the board. Submit upserts by player, keeping only the best
// score per player, trims to the top n and returns the resulting board.
type Store interface {
	Top(ctx context.Context, n int) ([]Entry, error)
	Submit(ctx context.Context, player string, score int64, n int) (SubmitResult, error)
}

// NormalizePlayer trims a player name and truncates it to MaxPlayerLength
// runes. Names that end up empty are rejected.
func NormalizePlayer(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !utf8.ValidString(name) {
		return "", ErrBadPlayer
	}
	if utf8.RuneCountInString(name) > MaxPlayerLength {
		name = strings.TrimSpace(string([]rune(name)[:MaxPlayerLength]))
	}
	if name == "" {
		return "", ErrBadPlayer
	}
	return name, nil
}

// placement builds the result for a submission from the board after it.
func placement(board []Entry, player string, score int64) SubmitResult {
	res := SubmitResult{Leaderboard: board}
	for i, e := range board {
		if e.Player == player && e.Score == score {
			res.Entered = true
			res.Rank = i + 1
			break
		}
	}
	if res.Leaderboard == nil {
		res.Leaderboard = []Entry{}
	}
	return res
}

// ranksBefore reports whether a sorts ahead of b.
func ranksBefore(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.AchievedAt.Before(b.AchievedAt)
}
