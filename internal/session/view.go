package session

import (
	"time"

	"github.com/lox/boothjack/internal/game"
	"github.com/lox/boothjack/internal/leaderboard"
)

// Stage is a screen of the booth.
type Stage int

const (
	StageName Stage = iota
	StagePractice
	StagePrestart
	StagePlay
	StageResult
)

func (s Stage) String() string {
	switch s {
	case StageName:
		return "name"
	case StagePractice:
		return "practice"
	case StagePrestart:
		return "prestart"
	case StagePlay:
		return "play"
	case StageResult:
		return "result"
	default:
		return "unknown"
	}
}

// FinishReason says why a scored session ended.
type FinishReason string

const (
	FinishTimeUp FinishReason = "timeup"
	FinishBroke  FinishReason = "broke"
)

// Result is what the result screen shows.
type Result struct {
	Player      string
	Money       int
	Reason      FinishReason
	Submitted   bool
	Entered     bool
	Rank        int
	Leaderboard []leaderboard.Entry
	SubmitError string
}

// View is a copy of everything a host needs to draw the booth.
type View struct {
	SessionID    string
	Stage        Stage
	Player       string
	Table        game.Snapshot
	Remaining    time.Duration
	TimeUp       bool
	PracticeLeft int
	Cue          game.Cue
	Result       *Result
	Leaderboard  []leaderboard.Entry
	Log          []string
}

// Listener receives a view after every change. It is called from the
// controller goroutine and must not block for long.
type Listener interface {
	Update(View)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(View)

func (f ListenerFunc) Update(v View) { f(v) }
