package npc

import (
	"fmt"
	"math"
	"sort"

	"github.com/zeusync/npcmind/internal/core/blackboard"
	"github.com/zeusync/npcmind/internal/core/sensor"
	"github.com/zeusync/npcmind/internal/core/world"
)

// Minotaur flees when hurt, charges what is close and patrols otherwise.
func Minotaur(b Binding) *Tree {
	return NewTree(NewSelector(
		NewSequence(
			NewIsLowHp(50),
			NewFindEnemy(b, 4, "flee_enemy"),
			NewFlee(b, "flee_enemy"),
		),
		NewSequence(
			NewFindEnemy(b, 3, "attack_enemy"),
			NewMoveToEntity(b, "attack_enemy"),
		),
		NewPatrol(b, 2, "patrol_pos"),
	))
}

// FuzzyMonster picks between fleeing, attacking, patrolling and healing by score.
func FuzzyMonster(b Binding) *Tree {
	return NewTree(NewUtility(
		Choice{
			Node: NewSequence(
				NewFindEnemy(b, 4, "flee_enemy"),
				NewFlee(b, "flee_enemy"),
			),
			Score: FuzzyFleeScore(b.Blackboard),
		},
		Choice{
			Node: NewSequence(
				NewFindEnemy(b, 3, "attack_enemy"),
				NewMoveToEntity(b, "attack_enemy"),
			),
			Score: FuzzyAttackScore(b.Blackboard),
		},
		Choice{Node: NewPatrol(b, 2, "patrol_pos"), Score: Constant(50)},
		Choice{Node: NewPatchUp(100), Score: FuzzyPatchUpScore(b.Blackboard)},
	))
}

func FuzzyFleeScore(bb *blackboard.Blackboard) Scorer {
	hp := blackboard.Register[float64](bb, sensor.KeyHitpoints)
	enemy := blackboard.Register[float64](bb, sensor.KeyEnemyDist)
	return func(bb *blackboard.Blackboard) float64 {
		return (100-blackboard.Get(bb, hp))*5 - 50*blackboard.Get(bb, enemy)
	}
}

func FuzzyAttackScore(bb *blackboard.Blackboard) Scorer {
	enemy := blackboard.Register[float64](bb, sensor.KeyEnemyDist)
	return func(bb *blackboard.Blackboard) float64 {
		return 100 - 10*blackboard.Get(bb, enemy)
	}
}

func FuzzyPatchUpScore(bb *blackboard.Blackboard) Scorer {
	hp := blackboard.Register[float64](bb, sensor.KeyHitpoints)
	return func(bb *blackboard.Blackboard) float64 {
		return 140 - blackboard.Get(bb, hp)
	}
}

// HiveParams shapes the attack and return ramps of a hive member.
// BaseRadius1 < BaseRadius2: attacking fades out between them, returning fades in.
type HiveParams struct {
	AttackRadius float64
	AllyRadius   float64
	BaseRadius1  float64
	BaseRadius2  float64
	Base         world.EntityID
}

func (p HiveParams) validate() error {
	if p.AttackRadius <= 0 || p.AllyRadius <= 0 {
		return fmt.Errorf("hive: radii must be positive, got attack=%g ally=%g", p.AttackRadius, p.AllyRadius)
	}
	if p.BaseRadius1 == p.BaseRadius2 {
		return fmt.Errorf("hive: base radii must differ, got %g", p.BaseRadius1)
	}
	if p.Base == world.NoEntity {
		return fmt.Errorf("hive: base waypoint is required")
	}
	return nil
}

// Hive keeps agents near a base: patrol, attack while both close to the
// base and the enemy, and return when far from the base and from allies.
func Hive(b Binding, p HiveParams) (*Tree, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return NewTree(NewUtility(
		Choice{
			Node:  NewSequence(NewPatrol(b, math.MaxFloat64, "patrol_pos")),
			Score: Constant(50),
		},
		Choice{
			Node: NewSequence(
				NewFindEnemy(b, p.AttackRadius, "attack_enemy"),
				NewMoveToEntity(b, "attack_enemy"),
			),
			Score: HiveAttackScore(b.Blackboard, p),
		},
		Choice{
			Node: NewSequence(
				NewChooseWaypoint(b, p.Base, sensor.KeyBase),
				NewMoveToEntity(b, sensor.KeyBase),
			),
			Score: HiveReturnScore(b.Blackboard, p),
		},
	)), nil
}

func HiveAttackScore(bb *blackboard.Blackboard, p HiveParams) Scorer {
	kEnemy := -100 / p.AttackRadius
	kBase := 100 / (p.BaseRadius1 - p.BaseRadius2)
	bBase := -kBase * p.BaseRadius2
	enemy := blackboard.Register[float64](bb, sensor.KeyEnemyDist)
	base := blackboard.Register[float64](bb, sensor.KeyBaseDist)
	return func(bb *blackboard.Blackboard) float64 {
		ub := math.Max(0, bBase+kBase*blackboard.Get(bb, base))
		ue := math.Max(0, 100+kEnemy*blackboard.Get(bb, enemy))
		return math.Min(ue, ub)
	}
}

func HiveReturnScore(bb *blackboard.Blackboard, p HiveParams) Scorer {
	kAlly := 100 / p.AllyRadius
	kBase := 100 / (p.BaseRadius2 - p.BaseRadius1)
	bBase := -kBase * p.BaseRadius1
	ally := blackboard.Register[float64](bb, sensor.KeyAllyDist)
	base := blackboard.Register[float64](bb, sensor.KeyBaseDist)
	return func(bb *blackboard.Blackboard) float64 {
		ua := math.Max(0, kAlly*blackboard.Get(bb, ally))
		ub := math.Max(0, bBase+kBase*blackboard.Get(bb, base))
		return math.Min(math.Min(ua, ub), (ua+ub)/5)
	}
}

// PackHunter reports sightings to its pack and chases what the pack reports.
func PackHunter(b Binding) *Tree {
	return NewTree(NewSelector(
		NewSequence(
			NewFindEnemy(b, 4, "target"),
			NewNotifyEnemyNear(b, 10, "target", "reported_enemy"),
			NewMoveToEntity(b, "target"),
		),
		NewSequence(
			NewReactSelectTarget(b, EnemyIsNear, "reported_enemy", "target"),
			NewMoveToEntity(b, "target"),
		),
		NewPatrol(b, 3, "patrol_pos"),
	))
}

// TreasureHunter walks to the nearest treasure.
func TreasureHunter(b Binding) *Tree {
	return NewTree(NewSelector(
		NewSequence(
			NewFindTreasure(b, "treasure"),
			NewMoveToEntity(b, "treasure"),
		),
		NewPatrol(b, 2, "patrol_pos"),
	))
}

// WaypointWalker follows a waypoint chain until it ends.
func WaypointWalker(b Binding, first world.EntityID) *Tree {
	return NewTree(NewSequence(
		NewChooseWaypoint(b, first, "waypoint"),
		NewMoveToEntity(b, "waypoint"),
	))
}

// ArchetypeParams carries the arguments some archetypes need.
type ArchetypeParams struct {
	FirstWaypoint world.EntityID
	Hive          HiveParams
}

type archetypeFunc func(Binding, ArchetypeParams) (*Tree, error)

var archetypes = map[string]archetypeFunc{
	"minotaur":        func(b Binding, _ ArchetypeParams) (*Tree, error) { return Minotaur(b), nil },
	"fuzzy_monster":   func(b Binding, _ ArchetypeParams) (*Tree, error) { return FuzzyMonster(b), nil },
	"hive":            func(b Binding, p ArchetypeParams) (*Tree, error) { return Hive(b, p.Hive) },
	"pack_hunter":     func(b Binding, _ ArchetypeParams) (*Tree, error) { return PackHunter(b), nil },
	"treasure_hunter": func(b Binding, _ ArchetypeParams) (*Tree, error) { return TreasureHunter(b), nil },
	"waypoint_walker": buildWaypointWalker,
}

func buildWaypointWalker(b Binding, p ArchetypeParams) (*Tree, error) {
	if p.FirstWaypoint == world.NoEntity {
		return nil, fmt.Errorf("waypoint_walker: first waypoint is required")
	}
	return WaypointWalker(b, p.FirstWaypoint), nil
}

// BuildArchetype builds a prebuilt tree by name.
func BuildArchetype(name string, b Binding, p ArchetypeParams) (*Tree, error) {
	fn, ok := archetypes[name]
	if !ok {
		return nil, fmt.Errorf("unknown archetype: %s", name)
	}
	return fn(b, p)
}

// Archetypes lists the prebuilt tree names in sorted order.
func Archetypes() []string {
	names := make([]string, 0, len(archetypes))
	for name := range archetypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
