package fsm

import (
	"github.com/zeusync/npcmind/internal/core/world"
	"github.com/zeusync/npcmind/pkg/rng"
)

// baseState gives a name and empty hooks.
type baseState struct{ name string }

func (b baseState) Name() string       { return b.name }
func (baseState) Enter(Context)        {}
func (baseState) Exit(Context)         {}
func (baseState) Act(float64, Context) {}

type nopState struct{ baseState }

func Nop() State { return nopState{baseState{name: "nop"}} }

type attackEnemy struct{ baseState }

// AttackEnemy holds position; melee happens when a move bumps into an opponent.
func AttackEnemy() State { return attackEnemy{baseState{name: "attack_enemy"}} }

func (s attackEnemy) Act(_ float64, ctx Context) { ctx.emit(world.Intent{Action: world.Nop}) }

type seekKind uint8

const (
	seekEnemy seekKind = iota
	seekAlly
	seekPlayer
)

type moveTo struct {
	baseState
	seek seekKind
	flee bool
}

func MoveToEnemy() State  { return moveTo{baseState: baseState{name: "move_to_enemy"}, seek: seekEnemy} }
func MoveToAlly() State   { return moveTo{baseState: baseState{name: "move_to_ally"}, seek: seekAlly} }
func MoveToPlayer() State { return moveTo{baseState: baseState{name: "move_to_player"}, seek: seekPlayer} }

func FleeFromEnemy() State {
	return moveTo{baseState: baseState{name: "flee_from_enemy"}, seek: seekEnemy, flee: true}
}

func (s moveTo) Act(_ float64, ctx Context) {
	var (
		target world.Sighting
		ok     bool
	)
	switch s.seek {
	case seekEnemy:
		target, ok = ctx.World.NearestOpponent(ctx.Self, world.Unbounded)
	case seekAlly:
		target, ok = ctx.World.NearestAlly(ctx.Self, world.Unbounded)
	case seekPlayer:
		target, ok = ctx.World.NearestPlayer(ctx.Self)
	}
	if !ok {
		return
	}
	pos, ok := ctx.World.Position(ctx.Self)
	if !ok {
		return
	}
	move := world.MoveTowards(pos, target.Pos)
	if s.flee {
		move = world.Inverse(move)
	}
	ctx.emit(world.Intent{Action: move})
}

type healSelf struct {
	baseState
	regen float64
}

func HealSelf(regen float64) State { return healSelf{baseState: baseState{name: "heal_self"}, regen: regen} }

func (s healSelf) Act(_ float64, ctx Context) {
	ctx.emit(world.Intent{Action: world.HealSelf, Amount: s.regen})
}

type healPlayer struct{ baseState }

// HealPlayer asks to heal the player whenever the agent's ability is off cooldown.
func HealPlayer() State { return healPlayer{baseState{name: "heal_player"}} }

func (s healPlayer) Act(_ float64, ctx Context) {
	if ctx.World.HealCooldown(ctx.Self) > 0 {
		return
	}
	ctx.emit(world.Intent{Action: world.HealPlayer})
}

type patrol struct {
	baseState
	dist   float64
	anchor world.Position
	rnd    rng.Source
}

// Patrol walks randomly while within dist of anchor and walks back otherwise.
func Patrol(dist float64, anchor world.Position, rnd rng.Source) State {
	return patrol{baseState: baseState{name: "patrol"}, dist: dist, anchor: anchor, rnd: rnd}
}

func (s patrol) Act(_ float64, ctx Context) {
	pos, ok := ctx.World.Position(ctx.Self)
	if !ok {
		return
	}
	if world.Dist(pos, s.anchor) > s.dist {
		ctx.emit(world.Intent{Action: world.MoveTowards(pos, s.anchor)})
		return
	}
	ctx.emit(world.Intent{Action: world.Moves[s.rnd.IntN(len(world.Moves))]})
}
