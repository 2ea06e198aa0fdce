package sensor

import (
	"context"
	"fmt"

	"github.com/zeusync/npcmind/internal/core/blackboard"
	"github.com/zeusync/npcmind/internal/core/world"
	"github.com/zeusync/npcmind/pkg/concurrent"
)

// Target is one agent seen by the phase.
type Target struct {
	ID         world.EntityID
	Blackboard *blackboard.Blackboard
	Sensors    []Sensor
}

// Phase runs every sensor of every target against one world snapshot.
type Phase struct {
	workers int
}

// NewPhase creates a phase. workers > 1 senses agents concurrently; each
// agent writes only its own blackboard and q must tolerate concurrent reads.
func NewPhase(workers int) *Phase { return &Phase{workers: workers} }

func (p *Phase) Workers() int { return p.workers }

// Run senses all targets. A failing sensor skips the rest of its target only.
func (p *Phase) Run(ctx context.Context, q world.Query, targets []Target) error {
	return concurrent.ForEach(ctx, targets, p.workers, func(ctx context.Context, t Target) error {
		for _, s := range t.Sensors {
			if err := s.Sense(ctx, q, t.ID, t.Blackboard); err != nil {
				return fmt.Errorf("sensor %s: %w", s.Name(), err)
			}
		}
		return nil
	})
}
