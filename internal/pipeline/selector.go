// Package pipeline picks which of the six workflow stages the dashboard highlights.
package pipeline

import (
	"fmt"

	"ArbiOps/internal/feed"
	"ArbiOps/internal/model"
)

// Selector returns the active stage for a tick.
type Selector interface {
	Next(tick uint64) model.PipelineStage
	Name() string
}

// RandomSelector picks uniformly at random, independent of the tick.
type RandomSelector struct {
	Rand feed.Rand
}

func NewRandomSelector(r feed.Rand) *RandomSelector { return &RandomSelector{Rand: r} }

func (s *RandomSelector) Name() string { return "random" }

func (s *RandomSelector) Next(_ uint64) model.PipelineStage {
	return model.Stages[s.Rand.IntN(len(model.Stages))]
}

// RoundRobinSelector walks the stages in workflow order, starting from the first
// stage on tick 1.
type RoundRobinSelector struct{}

func (RoundRobinSelector) Name() string { return "round_robin" }

func (RoundRobinSelector) Next(tick uint64) model.PipelineStage {
	if tick == 0 {
		return model.StageNone
	}
	return model.Stages[(tick-1)%uint64(len(model.Stages))]
}

// New builds the selector named by kind. r is only used by the random selector.
func New(kind string, r feed.Rand) (Selector, error) {
	switch kind {
	case "", "random":
		return NewRandomSelector(r), nil
	case "round_robin":
		return RoundRobinSelector{}, nil
	default:
		return nil, fmt.Errorf("unknown stage selector %q", kind)
	}
}
