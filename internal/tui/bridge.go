package tui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/boothjack/internal/game"
	"github.com/lox/boothjack/internal/session"
)

// Booth is the set of controls the TUI drives.
type Booth interface {
	SetName(name string) error
	Start()
	Return()
	AdjustBet(delta int)
	BetAll()
	ClearBet()
	Deal()
	Hit()
	Stand()
	Double()
	Split()
	DeclineSplit()
	Proceed()
}

// Bridge manages the connection between a booth and the TUI model
type Bridge struct {
	booth  Booth
	tui    *TUIModel
	logger *log.Logger

	mu   sync.Mutex
	last session.View
}

// NewBridge creates a new bridge feeding the TUI. It is the session's
// listener; Start connects the input side.
func NewBridge(tui *TUIModel, logger *log.Logger) *Bridge {
	return &Bridge{
		tui:    tui,
		logger: logger.WithPrefix("bridge"),
	}
}

// Update implements session.Listener.
func (b *Bridge) Update(v session.View) {
	b.mu.Lock()
	b.last = v
	b.mu.Unlock()
	b.tui.PushView(v)
}

// Start begins the command handling loop for booth (non-blocking)
func (b *Bridge) Start(booth Booth) {
	b.booth = booth
	go b.commandLoop()
}

func (b *Bridge) commandLoop() {
	for {
		action, args, shouldContinue, err := b.tui.WaitForAction()
		if err != nil {
			continue
		}
		if !shouldContinue {
			return
		}
		if action == "quit" || action == "/quit" {
			b.tui.SendQuitSignal()
			return
		}
		if err := b.handleAction(action, args); err != nil {
			b.logger.Debug("Rejected input", "action", action, "error", err)
			b.tui.Notify(err.Error())
		}
	}
}

func (b *Bridge) current() session.View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// handleAction maps one line of input onto the booth for the current screen.
func (b *Bridge) handleAction(action string, args []string) error {
	v := b.current()
	switch v.Stage {
	case session.StageName:
		return b.booth.SetName(strings.Join(append([]string{action}, args...), " "))
	case session.StagePrestart:
		if action == "" || action == "start" {
			b.booth.Start()
			return nil
		}
		return fmt.Errorf("press Enter to start")
	case session.StageResult:
		b.booth.Return()
		return nil
	}

	switch strings.ToLower(action) {
	case "":
		switch v.Table.Phase {
		case game.PhaseRoundOver:
			b.booth.Proceed()
		case game.PhaseBetting:
			b.booth.Deal()
		}
	case "bet", "b":
		if len(args) != 1 {
			return fmt.Errorf("usage: bet <amount>")
		}
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid bet amount %q", args[0])
		}
		b.booth.AdjustBet(amount)
	case "allin", "all":
		b.booth.BetAll()
	case "clear":
		b.booth.ClearBet()
	case "deal", "d":
		b.booth.Deal()
	case "hit", "h":
		b.booth.Hit()
	case "stand", "s":
		b.booth.Stand()
	case "double", "dd":
		b.booth.Double()
	case "split", "y", "yes":
		b.booth.Split()
	case "no", "n":
		b.booth.DeclineSplit()
	case "next", "continue":
		b.booth.Proceed()
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}
