package statistics

import (
	"fmt"
	"math"
	"sort"
)

// RoundResult represents the outcome of a single simulated round
type RoundResult struct {
	Net     float64 // Net result in units of the base bet
	Seed    int64   // Worker seed that produced this round (for replay)
	Natural bool    // Player or dealer held a natural
	Split   bool    // The player split
	Doubled bool    // At least one hand doubled down
	Busts   int     // Player hands that busted
	Hands   int     // Player hands played (1, or 2 after a split)
}

// Statistics tracks simulation statistics
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // All values for median/percentile calculation

	Wins   int
	Losses int
	Pushes int

	Naturals    int
	NaturalNet  float64
	Splits      int
	SplitNet    float64
	Doubles     int
	DoubleNet   float64
	Busts       int
	PlayerHands int
}

// Mean returns the arithmetic mean of all results in bets per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a new round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	net := result.Net
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)

	switch {
	case net > 0:
		s.Wins++
	case net < 0:
		s.Losses++
	default:
		s.Pushes++
	}

	if result.Natural {
		s.Naturals++
		s.NaturalNet += net
	}
	if result.Split {
		s.Splits++
		s.SplitNet += net
	}
	if result.Doubled {
		s.Doubles++
		s.DoubleNet += net
	}
	s.Busts += result.Busts
	s.PlayerHands += max(result.Hands, 1)
}

// Merge folds another worker's statistics into s.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Naturals += other.Naturals
	s.NaturalNet += other.NaturalNet
	s.Splits += other.Splits
	s.SplitNet += other.SplitNet
	s.Doubles += other.Doubles
	s.DoubleNet += other.DoubleNet
	s.Busts += other.Busts
	s.PlayerHands += other.PlayerHands
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func (s *Statistics) sorted() []float64 {
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)
	return sorted
}

// WinRate returns the fraction of rounds with a positive result.
func (s *Statistics) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds)
}

// BustRate returns busted hands per hand played.
func (s *Statistics) BustRate() float64 {
	if s.PlayerHands == 0 {
		return 0
	}
	return float64(s.Busts) / float64(s.PlayerHands)
}

// Validate performs consistency checks on the collected data
func (s *Statistics) Validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}
	if total := s.Wins + s.Losses + s.Pushes; total != s.Rounds {
		return fmt.Errorf("wins+losses+pushes (%d) does not match rounds count (%d)", total, s.Rounds)
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	if math.Abs(sum-s.SumNet) > 1e-6 {
		return fmt.Errorf("ledger mismatch: sum of values=%.6f, SumNet=%.6f", sum, s.SumNet)
	}
	if s.Busts > s.PlayerHands {
		return fmt.Errorf("busts (%d) exceed hands played (%d)", s.Busts, s.PlayerHands)
	}
	return nil
}
