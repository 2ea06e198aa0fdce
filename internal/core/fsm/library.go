package fsm

import (
	"fmt"
	"sort"

	"github.com/zeusync/npcmind/internal/core/world"
	"github.com/zeusync/npcmind/pkg/rng"
)

// Params carries what prebuilt machines need from the agent being built.
type Params struct {
	// Anchor is the patrol home of the agent.
	Anchor world.Position
	Rand   rng.Source
	// HealRegen is used by the healer machine; zero means 10.
	HealRegen float64
}

// Factory builds a fresh machine for one agent.
type Factory func(p Params) *Machine

var library = map[string]Factory{
	"patrol_attack_flee": PatrolAttackFlee,
	"patrol_flee":        PatrolFlee,
	"attack":             func(Params) *Machine { return Attack() },
	"berserker":          Berserker,
	"healer":             Healer,
	"squire":             func(Params) *Machine { return Squire() },
}

// Build creates a prebuilt machine by name.
func Build(name string, p Params) (*Machine, error) {
	f, ok := library[name]
	if !ok {
		return nil, fmt.Errorf("unknown state machine %q", name)
	}
	if p.Rand == nil {
		p.Rand = rng.New(1)
	}
	return f(p), nil
}

// Names lists the prebuilt machines.
func Names() []string {
	names := make([]string, 0, len(library))
	for n := range library {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func PatrolAttackFlee(p Params) *Machine {
	m := New()
	patrol := m.AddState(Patrol(3, p.Anchor, p.Rand))
	moveToEnemy := m.AddState(MoveToEnemy())
	flee := m.AddState(FleeFromEnemy())

	m.AddTransition(EnemyAvailable(3), patrol, moveToEnemy)
	m.AddTransition(Negate(EnemyAvailable(5)), moveToEnemy, patrol)

	m.AddTransition(And(HitpointsLessThan(60), EnemyAvailable(5)), moveToEnemy, flee)
	m.AddTransition(And(HitpointsLessThan(60), EnemyAvailable(3)), patrol, flee)

	m.AddTransition(Negate(EnemyAvailable(7)), flee, patrol)
	return m
}

func PatrolFlee(p Params) *Machine {
	m := New()
	patrol := m.AddState(Patrol(3, p.Anchor, p.Rand))
	flee := m.AddState(FleeFromEnemy())

	m.AddTransition(EnemyAvailable(3), patrol, flee)
	m.AddTransition(Negate(EnemyAvailable(5)), flee, patrol)
	return m
}

func Attack() *Machine {
	m := New()
	m.AddState(MoveToEnemy())
	return m
}

func Berserker(p Params) *Machine {
	m := New()
	patrol := m.AddState(Patrol(3, p.Anchor, p.Rand))
	moveToEnemy := m.AddState(MoveToEnemy())

	m.AddTransition(Or(HitpointsLessThan(60), EnemyAvailable(3)), patrol, moveToEnemy)
	m.AddTransition(Negate(Or(HitpointsLessThan(60), EnemyAvailable(3))), moveToEnemy, patrol)
	return m
}

// Healer gives transitions into heal the highest priority.
func Healer(p Params) *Machine {
	regen := p.HealRegen
	if regen == 0 {
		regen = 10
	}
	m := New()
	patrol := m.AddState(Patrol(3, p.Anchor, p.Rand))
	moveToEnemy := m.AddState(MoveToEnemy())
	heal := m.AddState(HealSelf(regen))

	m.AddTransition(HitpointsLessThan(60), patrol, heal)
	m.AddTransition(EnemyAvailable(3), patrol, moveToEnemy)

	m.AddTransition(HitpointsLessThan(60), moveToEnemy, heal)
	m.AddTransition(Negate(EnemyAvailable(3)), moveToEnemy, patrol)

	m.AddTransition(And(Negate(HitpointsLessThan(60)), EnemyAvailable(3)), heal, moveToEnemy)
	m.AddTransition(Negate(HitpointsLessThan(60)), heal, patrol)
	return m
}

// Squire follows the player, heals it when hurt and nearby, and engages
// enemies while the player is healthy.
func Squire() *Machine {
	m := New()
	moveToPlayer := m.AddState(MoveToPlayer())
	healPlayer := m.AddState(HealPlayer())
	moveToEnemy := m.AddState(MoveToEnemy())

	m.AddTransition(And(PlayerHitpointsLessThan(100), PlayerNearby(3.1)), moveToPlayer, healPlayer)
	m.AddTransition(And(Negate(PlayerHitpointsLessThan(100)), EnemyAvailable(4)), moveToPlayer, moveToEnemy)

	m.AddTransition(And(PlayerHitpointsLessThan(100), PlayerNearby(3.1)), moveToEnemy, healPlayer)
	m.AddTransition(Or(PlayerHitpointsLessThan(100), Negate(EnemyAvailable(6))), moveToEnemy, moveToPlayer)

	m.AddTransition(And(Negate(PlayerHitpointsLessThan(100)), EnemyAvailable(4)), healPlayer, moveToEnemy)
	m.AddTransition(Negate(And(PlayerHitpointsLessThan(100), PlayerNearby(1.1))), healPlayer, moveToPlayer)
	return m
}
