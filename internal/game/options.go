package game

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/boothjack/internal/deck"
)

// DefaultMoney is the wallet a new session starts with.
const DefaultMoney = 10000

// Option configures an Engine during creation. Passing nil to any of the
// collaborator options keeps its default.
type Option func(*config)

type config struct {
	logger    *log.Logger
	deck      *deck.Deck
	money     int
	cues      CuePlayer
	token     TokenSource
	mode      ModeSource
	moneySink MoneySink
	roundOver RoundOverSink
	presenter Presenter
	bus       EventBus
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDeck uses a specific shoe instead of building one from the RNG.
func WithDeck(d *deck.Deck) Option {
	return func(c *config) { c.deck = d }
}

// WithMoney sets the starting wallet. Default is DefaultMoney.
func WithMoney(money int) Option {
	return func(c *config) { c.money = money }
}

// WithCues sets the sound cue player.
func WithCues(p CuePlayer) Option {
	return func(c *config) {
		if p != nil {
			c.cues = p
		}
	}
}

// WithToken sets the run id source used to detect stale operations.
func WithToken(t TokenSource) Option {
	return func(c *config) {
		if t != nil {
			c.token = t
		}
	}
}

// WithMode sets the mode source.
func WithMode(m ModeSource) Option {
	return func(c *config) {
		if m != nil {
			c.mode = m
		}
	}
}

// WithMoneySink sets the money change callback.
func WithMoneySink(s MoneySink) Option {
	return func(c *config) {
		if s != nil {
			c.moneySink = s
		}
	}
}

// WithRoundOver sets the round summary callback.
func WithRoundOver(s RoundOverSink) Option {
	return func(c *config) {
		if s != nil {
			c.roundOver = s
		}
	}
}

// WithPresenter sets the card delivery presenter.
func WithPresenter(p Presenter) Option {
	return func(c *config) {
		if p != nil {
			c.presenter = p
		}
	}
}

// WithEventBus publishes engine events on bus instead of a private one.
func WithEventBus(bus EventBus) Option {
	return func(c *config) {
		if bus != nil {
			c.bus = bus
		}
	}
}

func defaultConfig() *config {
	return &config{
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		money:     DefaultMoney,
		cues:      noCues,
		token:     fixedToken,
		mode:      alwaysPlay,
		moneySink: noMoneySink,
		roundOver: noRoundOver,
		presenter: instantCards,
	}
}
