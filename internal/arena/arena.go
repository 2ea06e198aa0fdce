package arena

import (
	"errors"
	"sort"

	"github.com/zeusync/npcmind/internal/core/observability/log"
	"github.com/zeusync/npcmind/internal/core/world"
)

var (
	ErrUnknownEntity = errors.New("arena: unknown entity")
	ErrNotWaypoint   = errors.New("arena: entity is not a waypoint")
)

const (
	defaultHitpoints  = 100
	defaultDamage     = 20
	defaultSelfHeal   = 10
	defaultLogCapacity = 8
)

var (
	_ world.Query      = (*World)(nil)
	_ world.ActionSink = (*World)(nil)
)

// HealAbility lets an agent restore the player's hitpoints with a cooldown.
type HealAbility struct {
	Restoration float64
	Cooldown    int
}

// AgentSpec describes an agent to spawn. Zero Hitpoints and Damage take defaults.
type AgentSpec struct {
	Name      string
	Pos       world.Position
	Team      world.Team
	Hitpoints float64
	Damage    float64
	Player    bool
	Heal      *HealAbility
}

type agent struct {
	id       world.EntityID
	name     string
	pos      world.Position
	movePos  world.Position
	team     world.Team
	hp       float64
	damage   float64
	player   bool
	heal     *HealAbility
	cooldown int
	intent   world.Intent
}

type item struct {
	id     world.EntityID
	kind   world.Kind
	pos    world.Position
	amount float64
	next   world.EntityID
}

// World is an in-memory grid. Reads answer from the committed state only;
// intents are staged through Emit and applied together by Resolve.
type World struct {
	nextID world.EntityID
	agents map[world.EntityID]*agent
	items  map[world.EntityID]*item
	order  []world.EntityID
	turn   int
	log    *ActionLog
	logger log.Log
}

type Option func(*World)

func WithLogger(l log.Log) Option { return func(w *World) { w.logger = l } }

func WithLogCapacity(n int) Option { return func(w *World) { w.log = NewActionLog(n) } }

func New(opts ...Option) *World {
	w := &World{
		agents: make(map[world.EntityID]*agent),
		items:  make(map[world.EntityID]*item),
		log:    NewActionLog(defaultLogCapacity),
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) allocID() world.EntityID {
	w.nextID++
	return w.nextID
}

func (w *World) SpawnAgent(spec AgentSpec) world.EntityID {
	hp := spec.Hitpoints
	if hp == 0 {
		hp = defaultHitpoints
	}
	dmg := spec.Damage
	if dmg == 0 {
		dmg = defaultDamage
	}
	a := &agent{
		id:      w.allocID(),
		name:    spec.Name,
		pos:     spec.Pos,
		movePos: spec.Pos,
		team:    spec.Team,
		hp:      hp,
		damage:  dmg,
		player:  spec.Player,
	}
	if spec.Heal != nil {
		h := *spec.Heal
		a.heal = &h
	}
	w.agents[a.id] = a
	w.order = append(w.order, a.id)
	return a.id
}

func (w *World) spawnItem(kind world.Kind, pos world.Position, amount float64) world.EntityID {
	it := &item{id: w.allocID(), kind: kind, pos: pos, amount: amount}
	w.items[it.id] = it
	return it.id
}

func (w *World) SpawnWaypoint(pos world.Position) world.EntityID {
	return w.spawnItem(world.KindWaypoint, pos, 0)
}

func (w *World) SpawnTreasure(pos world.Position) world.EntityID {
	return w.spawnItem(world.KindTreasure, pos, 0)
}

func (w *World) SpawnHeal(pos world.Position, amount float64) world.EntityID {
	return w.spawnItem(world.KindHeal, pos, amount)
}

func (w *World) SpawnPowerup(pos world.Position, amount float64) world.EntityID {
	return w.spawnItem(world.KindPowerup, pos, amount)
}

// Link makes next the successor of waypoint from.
func (w *World) Link(from, next world.EntityID) error {
	it, ok := w.items[from]
	if !ok || it.kind != world.KindWaypoint {
		return ErrNotWaypoint
	}
	if n, ok := w.items[next]; !ok || n.kind != world.KindWaypoint {
		return ErrNotWaypoint
	}
	it.next = next
	return nil
}

// Place moves an entity outside of turn resolution.
func (w *World) Place(id world.EntityID, pos world.Position) error {
	if a, ok := w.agents[id]; ok {
		a.pos, a.movePos = pos, pos
		return nil
	}
	if it, ok := w.items[id]; ok {
		it.pos = pos
		return nil
	}
	return ErrUnknownEntity
}

// SetHitpoints overrides hitpoints outside of turn resolution.
func (w *World) SetHitpoints(id world.EntityID, hp float64) error {
	a, ok := w.agents[id]
	if !ok {
		return ErrUnknownEntity
	}
	a.hp = hp
	return nil
}

// Remove deletes an entity immediately.
func (w *World) Remove(id world.EntityID) {
	if _, ok := w.agents[id]; ok {
		delete(w.agents, id)
		w.dropOrder(id)
		return
	}
	delete(w.items, id)
}

func (w *World) dropOrder(id world.EntityID) {
	idx := sort.Search(len(w.order), func(i int) bool { return w.order[i] >= id })
	if idx < len(w.order) && w.order[idx] == id {
		w.order = append(w.order[:idx], w.order[idx+1:]...)
	}
}

func (w *World) Turn() int { return w.turn }

// Log returns the retained action log lines, oldest first.
func (w *World) Log() []string { return w.log.Lines() }

func (w *World) Damage(id world.EntityID) float64 {
	if a, ok := w.agents[id]; ok {
		return a.damage
	}
	return 0
}

func (w *World) Name(id world.EntityID) string {
	if a, ok := w.agents[id]; ok {
		return a.name
	}
	return ""
}
