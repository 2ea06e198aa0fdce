package npc

import (
	"fmt"

	"github.com/zeusync/npcmind/internal/core/blackboard"
	"github.com/zeusync/npcmind/internal/core/world"
	"github.com/zeusync/npcmind/pkg/rng"
)

// arrivalThreshold is the distance under which a waypoint counts as reached.
const arrivalThreshold = 0.5

// MoveToEntity steps toward the entity stored under a blackboard name.
type MoveToEntity struct {
	leaf
	target blackboard.Handle[world.EntityID]
}

func NewMoveToEntity(b Binding, target string) *MoveToEntity {
	return &MoveToEntity{
		leaf:   leaf{named{name: "move_to_entity(" + target + ")"}},
		target: blackboard.Register[world.EntityID](b.Blackboard, target),
	}
}

func (m *MoveToEntity) Update(ctx *Context) Status {
	action, ok := stepTowards(ctx, blackboard.Get(ctx.Blackboard, m.target))
	if !ok {
		return Fail
	}
	if action == world.Nop {
		return Success
	}
	ctx.emit(world.Intent{Action: action})
	return Running
}

// Flee steps away from the entity stored under a blackboard name.
type Flee struct {
	leaf
	target blackboard.Handle[world.EntityID]
}

func NewFlee(b Binding, target string) *Flee {
	return &Flee{
		leaf:   leaf{named{name: "flee(" + target + ")"}},
		target: blackboard.Register[world.EntityID](b.Blackboard, target),
	}
}

func (f *Flee) Update(ctx *Context) Status {
	from, to, ok := locate(ctx, blackboard.Get(ctx.Blackboard, f.target))
	if !ok {
		return Fail
	}
	ctx.emit(world.Intent{Action: world.Inverse(world.MoveTowards(from, to))})
	return Running
}

// stepTowards returns the move toward target, Nop when already there, and
// false when target or self cannot be located.
func stepTowards(ctx *Context, target world.EntityID) (world.Action, bool) {
	from, to, ok := locate(ctx, target)
	if !ok {
		return world.Nop, false
	}
	if from == to {
		return world.Nop, true
	}
	return world.MoveTowards(from, to), true
}

// locate reads the positions of self and a live target.
func locate(ctx *Context, target world.EntityID) (from, to world.Position, ok bool) {
	if target == world.NoEntity || !ctx.World.Alive(target) {
		return from, to, false
	}
	if to, ok = ctx.World.Position(target); !ok {
		return from, to, false
	}
	from, ok = ctx.position()
	return from, to, ok
}

// IsLowHp succeeds while the agent's hitpoints are under a threshold.
type IsLowHp struct {
	leaf
	threshold float64
}

func NewIsLowHp(threshold float64) *IsLowHp {
	return &IsLowHp{leaf: leaf{named{name: fmt.Sprintf("is_low_hp(%g)", threshold)}}, threshold: threshold}
}

func (l *IsLowHp) Update(ctx *Context) Status {
	if ctx.World.Hitpoints(ctx.Self) < l.threshold {
		return Success
	}
	return Fail
}

// FindEnemy stores the nearest opponent within range.
type FindEnemy struct {
	leaf
	maxDist float64
	target  blackboard.Handle[world.EntityID]
}

func NewFindEnemy(b Binding, maxDist float64, target string) *FindEnemy {
	return &FindEnemy{
		leaf:    leaf{named{name: fmt.Sprintf("find_enemy(%g,%s)", maxDist, target)}},
		maxDist: maxDist,
		target:  blackboard.Register[world.EntityID](b.Blackboard, target),
	}
}

func (f *FindEnemy) Update(ctx *Context) Status {
	s, ok := ctx.World.NearestOpponent(ctx.Self, f.maxDist)
	if !ok {
		return Fail
	}
	blackboard.Set(ctx.Blackboard, f.target, s.ID)
	return Success
}

// FindTreasure stores the nearest treasure regardless of distance.
type FindTreasure struct {
	leaf
	target blackboard.Handle[world.EntityID]
}

func NewFindTreasure(b Binding, target string) *FindTreasure {
	return &FindTreasure{
		leaf:   leaf{named{name: "find_treasure(" + target + ")"}},
		target: blackboard.Register[world.EntityID](b.Blackboard, target),
	}
}

func (f *FindTreasure) Update(ctx *Context) Status {
	s, ok := ctx.World.NearestOfKind(ctx.Self, world.KindTreasure)
	if !ok {
		return Fail
	}
	blackboard.Set(ctx.Blackboard, f.target, s.ID)
	return Success
}

// Patrol wanders randomly but never farther than maxDist from its anchor.
// The anchor is the agent's position when the node is built.
type Patrol struct {
	leaf
	maxDist float64
	anchor  blackboard.Handle[world.Position]
	rnd     rng.Source
}

func NewPatrol(b Binding, maxDist float64, anchor string) *Patrol {
	p := &Patrol{
		leaf:    leaf{named{name: fmt.Sprintf("patrol(%g,%s)", maxDist, anchor)}},
		maxDist: maxDist,
		anchor:  blackboard.Register[world.Position](b.Blackboard, anchor),
		rnd:     b.Rand,
	}
	if p.rnd == nil {
		p.rnd = rng.New(int64(b.Self))
	}
	if pos, ok := b.World.Position(b.Self); ok {
		blackboard.Set(b.Blackboard, p.anchor, pos)
	}
	return p
}

func (p *Patrol) Update(ctx *Context) Status {
	pos, ok := ctx.position()
	if !ok {
		return Fail
	}
	anchor := blackboard.Get(ctx.Blackboard, p.anchor)
	if world.Dist(pos, anchor) > p.maxDist {
		ctx.emit(world.Intent{Action: world.MoveTowards(pos, anchor)})
	} else {
		ctx.emit(world.Intent{Action: world.Moves[p.rnd.IntN(len(world.Moves))]})
	}
	return Running
}

// ChooseWaypoint follows a chain of linked waypoints. The current waypoint
// entity and its position share one blackboard name.
type ChooseWaypoint struct {
	leaf
	entity   blackboard.Handle[world.EntityID]
	position blackboard.Handle[world.Position]
}

func NewChooseWaypoint(b Binding, first world.EntityID, name string) *ChooseWaypoint {
	c := &ChooseWaypoint{
		leaf:     leaf{named{name: "choose_waypoint(" + name + ")"}},
		entity:   blackboard.Register[world.EntityID](b.Blackboard, name),
		position: blackboard.Register[world.Position](b.Blackboard, name),
	}
	c.store(b.Blackboard, b.World, first)
	return c
}

func (c *ChooseWaypoint) store(bb *blackboard.Blackboard, q world.Query, wp world.EntityID) {
	blackboard.Set(bb, c.entity, wp)
	if pos, ok := q.Position(wp); ok {
		blackboard.Set(bb, c.position, pos)
	}
}

func (c *ChooseWaypoint) Update(ctx *Context) Status {
	pos, ok := ctx.position()
	if !ok {
		return Fail
	}
	wp := blackboard.Get(ctx.Blackboard, c.entity)
	if wp == world.NoEntity {
		return Fail
	}
	if world.Dist(pos, blackboard.Get(ctx.Blackboard, c.position)) < arrivalThreshold {
		next, ok := ctx.World.NextWaypoint(wp)
		if !ok {
			return Fail
		}
		c.store(ctx.Blackboard, ctx.World, next)
	}
	return Success
}

// PatchUp asks for a self heal while hitpoints are under a threshold.
type PatchUp struct {
	leaf
	threshold float64
}

func NewPatchUp(threshold float64) *PatchUp {
	return &PatchUp{leaf: leaf{named{name: fmt.Sprintf("patch_up(%g)", threshold)}}, threshold: threshold}
}

func (p *PatchUp) Update(ctx *Context) Status {
	if ctx.World.Hitpoints(ctx.Self) >= p.threshold {
		return Fail
	}
	ctx.emit(world.Intent{Action: world.HealSelf})
	return Success
}
