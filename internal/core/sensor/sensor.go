package sensor

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/zeusync/npcmind/internal/core/blackboard"
	"github.com/zeusync/npcmind/internal/core/world"
)

// Blackboard names written by WorldInfo.
const (
	KeyHitpoints  = "hp"
	KeyAlliesNum  = "alliesNum"
	KeyEnemyDist  = "enemyDist"
	KeyAllyDist   = "allyDist"
	KeyBaseDist   = "baseDist"
	KeyPlayerDist = "playerDist"

	// KeyBase is the Position slot baseDist is measured against.
	KeyBase = "base_wp"
)

// alliesRadiusSq bounds the squared distance of allies counted in alliesNum.
const alliesRadiusSq = 25

var (
	ErrWrongBlackboard = errors.New("sensor: blackboard does not match the one the sensor was bound to")
	ErrUnknownAgent    = errors.New("sensor: agent has no position")
)

// Sensor publishes facts about one agent into its blackboard.
type Sensor interface {
	Name() string
	Sense(ctx context.Context, q world.Query, self world.EntityID, bb *blackboard.Blackboard) error
}

// WorldInfo gathers the facts utility scorers read.
type WorldInfo struct {
	bb         *blackboard.Blackboard
	hp         blackboard.Handle[float64]
	alliesNum  blackboard.Handle[float64]
	enemyDist  blackboard.Handle[float64]
	allyDist   blackboard.Handle[float64]
	baseDist   blackboard.Handle[float64]
	playerDist blackboard.Handle[float64]
	base       blackboard.Handle[world.Position]
}

// NewWorldInfo registers the sensor slots in bb.
func NewWorldInfo(bb *blackboard.Blackboard) *WorldInfo {
	return &WorldInfo{
		bb:         bb,
		hp:         blackboard.Register[float64](bb, KeyHitpoints),
		alliesNum:  blackboard.Register[float64](bb, KeyAlliesNum),
		enemyDist:  blackboard.Register[float64](bb, KeyEnemyDist),
		allyDist:   blackboard.Register[float64](bb, KeyAllyDist),
		baseDist:   blackboard.Register[float64](bb, KeyBaseDist),
		playerDist: blackboard.Register[float64](bb, KeyPlayerDist),
		base:       blackboard.Register[world.Position](bb, KeyBase),
	}
}

func (*WorldInfo) Name() string { return "world_info" }

func (w *WorldInfo) Sense(_ context.Context, q world.Query, self world.EntityID, bb *blackboard.Blackboard) error {
	if bb != w.bb {
		return ErrWrongBlackboard
	}
	pos, ok := q.Position(self)
	if !ok {
		return fmt.Errorf("sense agent %d: %w", self, ErrUnknownAgent)
	}

	blackboard.Set(bb, w.hp, q.Hitpoints(self))

	team := q.Team(self)
	allies := 0
	for _, id := range q.Agents() {
		if q.Team(id) != team {
			continue
		}
		if apos, ok := q.Position(id); ok && world.DistSq(pos, apos) < alliesRadiusSq {
			allies++
		}
	}
	blackboard.Set(bb, w.alliesNum, float64(allies))

	blackboard.Set(bb, w.enemyDist, distOrMax(q.NearestOpponent(self, world.Unbounded)))
	blackboard.Set(bb, w.allyDist, distOrMax(q.NearestAlly(self, world.Unbounded)))
	blackboard.Set(bb, w.playerDist, distOrMax(q.NearestPlayer(self)))

	if base, ok := blackboard.Lookup(bb, w.base); ok {
		blackboard.Set(bb, w.baseDist, world.Dist(pos, base))
	} else {
		blackboard.Set(bb, w.baseDist, math.MaxFloat64)
	}
	return nil
}

func distOrMax(s world.Sighting, ok bool) float64 {
	if !ok {
		return math.MaxFloat64
	}
	return s.Dist
}
