// Package session runs one booth: name entry, a couple of practice rounds,
// a timed scored session and the leaderboard submission that ends it.
//
// The Controller owns a game.Engine and is the only thing that touches it.
// Public methods enqueue commands that Run executes one at a time. Every
// stage change bumps the run id as soon as it is requested, so commands queued
// before the change are dropped and any card delivery in flight is cancelled.
package session

import (
	"context"
	"errors"
	"io"
	rand "math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/boothjack/internal/game"
	"github.com/lox/boothjack/internal/gameid"
	"github.com/lox/boothjack/internal/leaderboard"
)

const maxLogLines = 50

// ErrEmptyName is returned by SetName for blank names.
var ErrEmptyName = errors.New("player name is required")

// Submitter is the leaderboard as the booth sees it.
type Submitter interface {
	Top(ctx context.Context) ([]leaderboard.Entry, error)
	Submit(ctx context.Context, player string, score int64) (leaderboard.SubmitResult, error)
}

// Config holds the session rules.
type Config struct {
	StartingMoney  int
	PlayDuration   time.Duration
	PracticeRounds int
	DealDelay      time.Duration
	SubmitTimeout  time.Duration
}

// DefaultConfig matches the booth defaults.
func DefaultConfig() Config {
	return Config{
		StartingMoney:  game.DefaultMoney,
		PlayDuration:   2 * time.Minute,
		PracticeRounds: 2,
		DealDelay:      430 * time.Millisecond,
		SubmitTimeout:  5 * time.Second,
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for the countdown and card pacing.
func WithClock(clock quartz.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithSubmitter sets the leaderboard. Without one results stay local.
func WithSubmitter(s Submitter) Option {
	return func(c *Controller) { c.submitter = s }
}

// WithListener sets the view listener.
func WithListener(l Listener) Option {
	return func(c *Controller) { c.listener = l }
}

// WithRand seeds the shoe.
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

// WithEngineOptions passes extra options to the round engine.
func WithEngineOptions(opts ...game.Option) Option {
	return func(c *Controller) { c.engineOpts = append(c.engineOpts, opts...) }
}

type command struct {
	run uint64
	// stale commands are dropped unless always is set
	always bool
	fn     func(ctx context.Context)
}

// Controller drives the booth.
type Controller struct {
	cfg        Config
	clock      quartz.Clock
	logger     *log.Logger
	submitter  Submitter
	listener   Listener
	rng        *rand.Rand
	engineOpts []game.Option

	run      atomic.Uint64
	cmds     chan command
	stopped  chan struct{}
	stopOnce sync.Once

	opMu     sync.Mutex
	opCancel context.CancelFunc

	viewMu sync.RWMutex
	view   View

	// owned by the Run goroutine
	engine       *game.Engine
	stage        Stage
	player       string
	sessionID    string
	practiceDone int
	remaining    time.Duration
	timeUp       bool
	broke        bool
	countdown    *quartz.Timer
	result       *Result
	board        []leaderboard.Entry
	logLines     []string
	cue          game.Cue
}

// New creates a controller on the name stage.
func New(cfg Config, opts ...Option) *Controller {
	c := &Controller{
		cfg:     cfg,
		cmds:    make(chan command, 64),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = quartz.NewReal()
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	c.logger = c.logger.WithPrefix("session")
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}

	presenter := NewPacedPresenter(c.clock, cfg.DealDelay, func(game.Delivery) { c.publish() })
	engineOpts := append([]game.Option{
		game.WithLogger(c.logger),
		game.WithMoney(cfg.StartingMoney),
		game.WithToken(game.TokenFunc(c.RunID)),
		game.WithMode(game.ModeFunc(c.mode)),
		game.WithCues(game.CueFunc(func(cue game.Cue) { c.cue = cue })),
		game.WithRoundOver(game.RoundOverFunc(c.roundOver)),
		game.WithPresenter(presenter),
	}, c.engineOpts...)
	c.engine = game.New(c.rng, engineOpts...)
	c.engine.Events().Subscribe(game.SubscriberFunc(func(ev game.GameEvent) {
		c.appendLog(ev.String())
	}))

	c.storeView()
	return c
}

// RunID returns the current run id. Safe from any goroutine.
func (c *Controller) RunID() uint64 {
	return c.run.Load()
}

// View returns the most recently published view.
func (c *Controller) View() View {
	c.viewMu.RLock()
	defer c.viewMu.RUnlock()
	return c.view
}

// Run executes commands until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	defer c.stopOnce.Do(func() { close(c.stopped) })
	c.publish()

	for {
		select {
		case <-ctx.Done():
			c.bump()
			c.stopCountdown()
			return ctx.Err()
		case cmd := <-c.cmds:
			if !cmd.always && cmd.run != c.run.Load() {
				continue
			}
			c.exec(ctx, cmd)
			c.publish()
		}
	}
}

func (c *Controller) exec(ctx context.Context, cmd command) {
	opCtx, cancel := context.WithCancel(ctx)
	c.opMu.Lock()
	c.opCancel = cancel
	c.opMu.Unlock()

	defer func() {
		c.opMu.Lock()
		c.opCancel = nil
		c.opMu.Unlock()
		cancel()
	}()

	// a bump between dequeue and now must still cancel this command
	if !cmd.always && cmd.run != c.run.Load() {
		return
	}
	cmd.fn(opCtx)
}

// bump invalidates everything queued or in flight. Stage changes bump when
// they are requested and run unconditionally, so a burst of them still
// applies in order.
func (c *Controller) bump() uint64 {
	run := c.run.Add(1)
	c.opMu.Lock()
	if c.opCancel != nil {
		c.opCancel()
	}
	c.opMu.Unlock()
	return run
}

func (c *Controller) enqueue(cmd command) {
	select {
	case c.cmds <- cmd:
	case <-c.stopped:
	}
}

func (c *Controller) do(fn func(ctx context.Context)) {
	c.enqueue(command{run: c.run.Load(), fn: fn})
}

// Flush waits until every command queued before it has run.
func (c *Controller) Flush(ctx context.Context) error {
	done := make(chan struct{})
	c.enqueue(command{always: true, fn: func(context.Context) { close(done) }})
	select {
	case <-done:
		return nil
	case <-c.stopped:
		return errors.New("session stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) mode() game.Mode {
	switch c.stage {
	case StagePractice:
		return game.ModePractice
	case StagePlay:
		return game.ModePlay
	default:
		return game.ModeDisabled
	}
}

// SetName starts a session for player, beginning with practice rounds.
func (c *Controller) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	c.bump()
	c.enqueue(command{always: true, fn: func(context.Context) {
		if c.stage != StageName {
			return
		}
		c.player = name
		c.sessionID = gameid.Generate()
		c.practiceDone = 0
		c.result = nil
		c.logLines = nil
		c.engine.ResetSession(c.cfg.StartingMoney)
		c.setStage(StagePractice)
		if c.cfg.PracticeRounds <= 0 {
			c.setStage(StagePrestart)
		}
		c.logger.Info("Session started", "player", name, "session", c.sessionID)
	}})
	return nil
}

// Start begins the scored session from the prestart screen.
func (c *Controller) Start() {
	c.bump()
	c.enqueue(command{always: true, fn: func(context.Context) {
		if c.stage != StagePrestart {
			return
		}
		run := c.run.Load()
		c.engine.ResetSession(c.cfg.StartingMoney)
		c.timeUp = false
		c.broke = false
		c.remaining = c.cfg.PlayDuration
		c.setStage(StagePlay)
		c.refreshBoard(run)
		c.scheduleTick(run)
		c.logger.Info("Scored play started", "player", c.player, "duration", c.cfg.PlayDuration)
	}})
}

// Return goes back to name entry for the next player.
func (c *Controller) Return() {
	c.bump()
	c.enqueue(command{always: true, fn: func(context.Context) {
		c.stopCountdown()
		c.player = ""
		c.sessionID = ""
		c.result = nil
		c.timeUp = false
		c.broke = false
		c.remaining = 0
		c.engine.ResetSession(c.cfg.StartingMoney)
		c.setStage(StageName)
	}})
}

// AdjustBet changes the pending bet.
func (c *Controller) AdjustBet(delta int) {
	c.do(func(context.Context) { c.engine.AdjustBet(delta) })
}

// BetAll moves the whole wallet onto the pending bet.
func (c *Controller) BetAll() {
	c.do(func(context.Context) { c.engine.AdjustBet(c.engine.Money() - c.engine.PendingBet()) })
}

// ClearBet returns the pending bet to zero.
func (c *Controller) ClearBet() {
	c.do(func(context.Context) { c.engine.AdjustBet(-c.engine.PendingBet()) })
}

// Deal starts a round.
func (c *Controller) Deal() {
	c.do(func(ctx context.Context) { c.engine.Deal(ctx) })
}

// Hit draws a card.
func (c *Controller) Hit() {
	c.do(func(ctx context.Context) { c.engine.Hit(ctx) })
}

// Stand closes the active hand.
func (c *Controller) Stand() {
	c.do(func(ctx context.Context) { c.engine.Stand(ctx) })
}

// Double doubles down on the active hand.
func (c *Controller) Double() {
	c.do(func(ctx context.Context) { c.engine.Double(ctx) })
}

// Split accepts a split offer.
func (c *Controller) Split() {
	c.do(func(ctx context.Context) { c.engine.AcceptSplit(ctx) })
}

// DeclineSplit refuses a split offer.
func (c *Controller) DeclineSplit() {
	c.do(func(context.Context) { c.engine.DeclineSplit() })
}

// Proceed leaves the round-over screen. It is also where practice hands over
// to the prestart screen and where a finished scored session is finalized.
func (c *Controller) Proceed() {
	c.do(func(context.Context) {
		if c.engine.Phase() != game.PhaseRoundOver {
			return
		}
		c.engine.Proceed()

		switch c.stage {
		case StagePractice:
			if c.practiceDone >= c.cfg.PracticeRounds {
				c.bump()
				c.setStage(StagePrestart)
			}
		case StagePlay:
			switch {
			case c.timeUp:
				c.finalize(FinishTimeUp)
			case c.broke:
				c.finalize(FinishBroke)
			}
		}
	})
}

func (c *Controller) roundOver(s game.RoundSummary) {
	switch c.stage {
	case StagePractice:
		c.practiceDone++
	case StagePlay:
		if s.Money <= 0 {
			c.broke = true
		}
	}
}

func (c *Controller) setStage(stage Stage) {
	if c.stage != stage {
		c.logger.Debug("Stage change", "from", c.stage, "to", stage)
	}
	c.stage = stage
}

func (c *Controller) scheduleTick(run uint64) {
	c.stopCountdown()
	c.countdown = c.clock.AfterFunc(time.Second, func() {
		c.enqueue(command{run: run, fn: func(context.Context) { c.tick(run) }})
	}, "session", "countdown")
}

func (c *Controller) stopCountdown() {
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
}

func (c *Controller) tick(run uint64) {
	if c.stage != StagePlay || c.timeUp {
		return
	}
	c.remaining -= time.Second
	if c.remaining > 0 {
		c.scheduleTick(run)
		return
	}

	c.remaining = 0
	c.timeUp = true
	c.countdown = nil
	c.logger.Info("Time up", "player", c.player, "phase", c.engine.Phase())
	if c.engine.Phase() == game.PhaseBetting {
		c.finalize(FinishTimeUp)
	}
}

// finalize shows the result screen and submits the score in the background.
func (c *Controller) finalize(reason FinishReason) {
	run := c.bump()
	c.stopCountdown()
	c.setStage(StageResult)

	result := &Result{
		Player: c.player,
		Money:  c.engine.Money(),
		Reason: reason,
	}
	c.result = result
	c.logger.Info("Session finished", "player", c.player, "money", result.Money, "reason", reason)

	if c.submitter == nil {
		result.SubmitError = "leaderboard not configured"
		return
	}

	player, score := c.player, int64(result.Money)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.submitTimeout())
		defer cancel()
		res, err := c.submitter.Submit(ctx, player, score)
		c.enqueue(command{run: run, fn: func(context.Context) {
			if c.result != result {
				return
			}
			if err != nil {
				c.logger.Warn("Leaderboard submit failed", "player", player, "error", err)
				result.SubmitError = err.Error()
				return
			}
			result.Submitted = true
			result.Entered = res.Entered
			result.Rank = res.Rank
			result.Leaderboard = res.Leaderboard
			c.board = res.Leaderboard
		}})
	}()
}

func (c *Controller) refreshBoard(run uint64) {
	if c.submitter == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.submitTimeout())
		defer cancel()
		items, err := c.submitter.Top(ctx)
		if err != nil {
			c.logger.Warn("Leaderboard refresh failed", "error", err)
			return
		}
		c.enqueue(command{run: run, fn: func(context.Context) { c.board = items }})
	}()
}

func (c *Controller) submitTimeout() time.Duration {
	if c.cfg.SubmitTimeout <= 0 {
		return 5 * time.Second
	}
	return c.cfg.SubmitTimeout
}

func (c *Controller) appendLog(line string) {
	c.logLines = append(c.logLines, line)
	if n := len(c.logLines); n > maxLogLines {
		c.logLines = c.logLines[n-maxLogLines:]
	}
}

func (c *Controller) storeView() View {
	v := View{
		SessionID:   c.sessionID,
		Stage:       c.stage,
		Player:      c.player,
		Table:       c.engine.Snapshot(),
		Remaining:   c.remaining,
		TimeUp:      c.timeUp,
		Cue:         c.cue,
		Leaderboard: append([]leaderboard.Entry(nil), c.board...),
		Log:         append([]string(nil), c.logLines...),
	}
	if c.stage == StagePractice {
		v.PracticeLeft = max(c.cfg.PracticeRounds-c.practiceDone, 0)
	}
	if c.result != nil {
		r := *c.result
		r.Leaderboard = append([]leaderboard.Entry(nil), r.Leaderboard...)
		v.Result = &r
	}

	c.viewMu.Lock()
	c.view = v
	c.viewMu.Unlock()
	return v
}

func (c *Controller) publish() {
	v := c.storeView()
	c.cue = ""
	if c.listener != nil {
		c.listener.Update(v)
	}
}
