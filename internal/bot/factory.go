package bot

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	StrategyRandom = "random"
	StrategyGreedy = "greedy"
)

// NewBrain creates a new AI brain for the named strategy.
func NewBrain(strategy string, cache *SolverCache, rng *rand.Rand) (Brain, error) {
	switch strategy {
	case StrategyRandom:
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		return &RandomBot{rng: rng}, nil
	case StrategyGreedy:
		return NewGreedyBot(cache, DefaultTuning), nil
	default:
		return nil, fmt.Errorf("unknown bot strategy: %q", strategy)
	}
}
