package simulator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/boothjack/internal/game"
	"github.com/lox/boothjack/internal/randutil"
	"github.com/lox/boothjack/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// DefaultBet is the stake placed every simulated round.
const DefaultBet = 100

// maxSteps bounds the decisions in one round; a round never needs more than
// a handful, so hitting it means the engine stopped advancing.
const maxSteps = 64

// Config holds configuration for running simulations
type Config struct {
	Rounds   int
	Workers  int
	Strategy string
	Seed     int64
	Bet      int
	Timeout  time.Duration
	Logger   *log.Logger
}

// Simulator plays many independent rounds with a fixed strategy
type Simulator struct {
	config   Config
	strategy Strategy
}

// New creates a new simulator with the given configuration
func New(config Config) (*Simulator, error) {
	strategy, err := NewStrategy(config.Strategy)
	if err != nil {
		return nil, err
	}
	if config.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", config.Rounds)
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	config.Workers = min(config.Workers, config.Rounds)
	if config.Bet <= 0 {
		config.Bet = DefaultBet
	}
	if config.Logger == nil {
		config.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Simulator{config: config, strategy: strategy}, nil
}

// Run executes the simulation and returns merged statistics
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	perWorker := make([]*statistics.Statistics, s.config.Workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range s.config.Workers {
		rounds := s.config.Rounds / s.config.Workers
		if w < s.config.Rounds%s.config.Workers {
			rounds++
		}
		seed := randutil.Derive(s.config.Seed, w)
		g.Go(func() error {
			stats, err := s.runWorker(ctx, seed, rounds)
			if err != nil {
				return fmt.Errorf("worker %d (seed %d): %w", w, seed, err)
			}
			perWorker[w] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, ws := range perWorker {
		stats.Merge(ws)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

func (s *Simulator) runWorker(ctx context.Context, seed int64, rounds int) (*statistics.Statistics, error) {
	// per-round info logs would drown the summary
	engineLogger := s.config.Logger.WithPrefix("engine")
	if engineLogger.GetLevel() == log.InfoLevel {
		engineLogger.SetLevel(log.WarnLevel)
	}

	var last game.RoundSummary
	engine := game.New(randutil.New(seed),
		game.WithLogger(engineLogger),
		game.WithRoundOver(game.RoundOverFunc(func(summary game.RoundSummary) { last = summary })),
	)
	stake := s.config.Bet * 4

	stats := &statistics.Statistics{}
	for round := range rounds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		engine.ResetSession(stake)
		engine.AdjustBet(s.config.Bet)
		if err := s.playRound(ctx, engine); err != nil {
			return nil, fmt.Errorf("round %d: %w", round+1, err)
		}
		stats.Add(roundResult(last, s.config.Bet, seed))
	}

	s.config.Logger.Debug("Worker finished", "seed", seed, "rounds", rounds, "mean", stats.Mean())
	return stats, nil
}

// playRound deals and plays one round to completion.
func (s *Simulator) playRound(ctx context.Context, engine *game.Engine) error {
	engine.Deal(ctx)
	for range maxSteps {
		snap := engine.Snapshot()
		switch snap.Phase {
		case game.PhaseRoundOver:
			return nil
		case game.PhaseResolvingSplit:
			if s.strategy.Split(snap) {
				engine.AcceptSplit(ctx)
			} else {
				engine.DeclineSplit()
			}
		case game.PhasePlaying:
			switch s.strategy.Play(snap) {
			case game.ActionDouble:
				engine.Double(ctx)
			case game.ActionHit:
				engine.Hit(ctx)
			default:
				engine.Stand(ctx)
			}
		default:
			if err := ctx.Err(); err != nil {
				return err
			}
			return fmt.Errorf("round stuck in %s", snap.Phase)
		}
	}
	return fmt.Errorf("round did not finish after %d decisions", maxSteps)
}

func roundResult(summary game.RoundSummary, bet int, seed int64) statistics.RoundResult {
	r := statistics.RoundResult{
		Net:     float64(summary.Net()) / float64(bet),
		Seed:    seed,
		Natural: summary.Natural,
		Split:   len(summary.Hands) > 1,
		Hands:   len(summary.Hands),
	}
	for _, h := range summary.Hands {
		if h.Bet > bet {
			r.Doubled = true
		}
		if h.Result == game.ResultBust {
			r.Busts++
		}
	}
	return r
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics, strategy string) {
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS with %s strategy ===\n", strategy)
	fmt.Fprintf(w, "Rounds played: %d\n", stats.Rounds)

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f bets/round\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f bets/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f bets\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f bets\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] bets/round\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.3f, P25=%.3f, P75=%.3f, P95=%.3f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
	fmt.Fprintf(w, "Wins: %d (%.1f%%), losses: %d, pushes: %d\n",
		stats.Wins, stats.WinRate()*100, stats.Losses, stats.Pushes)
	fmt.Fprintf(w, "Busts: %d of %d hands (%.1f%%)\n", stats.Busts, stats.PlayerHands, stats.BustRate()*100)

	fmt.Fprintf(w, "\n=== FEATURE ANALYSIS ===\n")
	printFeature(w, "Naturals", stats.Naturals, stats.NaturalNet, stats.Rounds)
	printFeature(w, "Splits", stats.Splits, stats.SplitNet, stats.Rounds)
	printFeature(w, "Doubles", stats.Doubles, stats.DoubleNet, stats.Rounds)
}

func printFeature(w io.Writer, name string, count int, net float64, rounds int) {
	if count == 0 {
		fmt.Fprintf(w, "%s: none\n", name)
		return
	}
	fmt.Fprintf(w, "%s: %d rounds (%.1f%%), %.3f bets/round when it happened\n",
		name, count, float64(count)/float64(rounds)*100, net/float64(count))
}

// Report is the machine-readable form of a finished run.
type Report struct {
	Strategy   string     `json:"strategy"`
	Seed       int64      `json:"seed"`
	Bet        int        `json:"bet"`
	Rounds     int        `json:"rounds"`
	Mean       float64    `json:"mean"`
	Median     float64    `json:"median"`
	StdDev     float64    `json:"std_dev"`
	StdError   float64    `json:"std_error"`
	CI95       [2]float64 `json:"ci95"`
	Wins       int        `json:"wins"`
	Losses     int        `json:"losses"`
	Pushes     int        `json:"pushes"`
	Busts      int        `json:"busts"`
	Hands      int        `json:"hands"`
	Naturals   int        `json:"naturals"`
	Splits     int        `json:"splits"`
	Doubles    int        `json:"doubles"`
	DurationMS int64      `json:"duration_ms,omitempty"`
}

// NewReport summarizes stats for the run configured on s.
func (s *Simulator) NewReport(stats *statistics.Statistics, elapsed time.Duration) Report {
	low, high := stats.ConfidenceInterval95()
	return Report{
		Strategy:   s.strategy.Name(),
		Seed:       s.config.Seed,
		Bet:        s.config.Bet,
		Rounds:     stats.Rounds,
		Mean:       stats.Mean(),
		Median:     stats.Median(),
		StdDev:     stats.StdDev(),
		StdError:   stats.StdError(),
		CI95:       [2]float64{low, high},
		Wins:       stats.Wins,
		Losses:     stats.Losses,
		Pushes:     stats.Pushes,
		Busts:      stats.Busts,
		Hands:      stats.PlayerHands,
		Naturals:   stats.Naturals,
		Splits:     stats.Splits,
		Doubles:    stats.Doubles,
		DurationMS: elapsed.Milliseconds(),
	}
}
