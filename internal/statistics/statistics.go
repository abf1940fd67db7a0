package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/blackjack/internal/ledger"
)

// RoundResult represents the outcome of a single blackjack round
type RoundResult struct {
	Net     float64        // Net result in base bets (a doubled loss is -2)
	Seed    int64          // Worker seed the round was played from
	Outcome ledger.Outcome // How the round settled
	Doubled bool           // Did the player double down?
}

// Statistics tracks simulation results
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // Store all values for median/percentile calculation

	Wins       int
	Losses     int
	Pushes     int
	Blackjacks int

	// Double down analytics
	Doubles   int
	DoubleNet float64
	PlainNet  float64
}

// Mean returns the arithmetic mean in base bets per round
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

	switch result.Outcome {
	case ledger.Win:
		s.Wins++
	case ledger.Blackjack:
		s.Wins++
		s.Blackjacks++
	case ledger.Push:
		s.Pushes++
	default:
		s.Losses++
	}

	if result.Doubled {
		s.Doubles++
		s.DoubleNet += net
	} else {
		s.PlainNet += net
	}
}

// Merge folds other into s. Values keep their order, so merging worker
// results in worker order is deterministic.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Blackjacks += other.Blackjacks
	s.Doubles += other.Doubles
	s.DoubleNet += other.DoubleNet
	s.PlainNet += other.PlainNet
}

// WinRate returns the share of rounds won, blackjacks included
func (s *Statistics) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds)
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

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
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IsLedgerBalanced checks that doubled and plain rounds add up to the total
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.SumNet-s.DoubleNet-s.PlainNet) <= 1e-6
}

// Validate performs consistency checks on the collected data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: SumNet=%.6f, DoubleNet=%.6f, PlainNet=%.6f",
			s.SumNet, s.DoubleNet, s.PlainNet)
	}

	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}

	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	if total := s.Wins + s.Losses + s.Pushes; total != s.Rounds {
		return fmt.Errorf("outcome total (%d) does not match rounds count (%d)", total, s.Rounds)
	}

	if s.Blackjacks > s.Wins {
		return fmt.Errorf("blackjacks (%d) exceed wins (%d)", s.Blackjacks, s.Wins)
	}

	return nil
}
