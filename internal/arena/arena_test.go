package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/npcmind/internal/core/world"
)

func TestQueries(t *testing.T) {
	w := New()
	me := w.SpawnAgent(AgentSpec{Pos: world.Position{}, Team: 1})
	ally := w.SpawnAgent(AgentSpec{Pos: world.Position{X: 2}, Team: 1})
	far := w.SpawnAgent(AgentSpec{Pos: world.Position{X: 9}, Team: 0})
	near := w.SpawnAgent(AgentSpec{Pos: world.Position{Y: -3}, Team: 0, Player: true})
	chest := w.SpawnTreasure(world.Position{X: 5, Y: 5})

	s, ok := w.NearestOpponent(me, world.Unbounded)
	require.True(t, ok)
	assert.Equal(t, near, s.ID)
	assert.InDelta(t, 3.0, s.Dist, 1e-9)

	_, ok = w.NearestOpponent(me, 2.9)
	assert.False(t, ok)
	s, ok = w.NearestOpponent(me, 3)
	assert.True(t, ok, "limit is inclusive")

	s, ok = w.NearestAlly(me, world.Unbounded)
	require.True(t, ok)
	assert.Equal(t, ally, s.ID)

	s, ok = w.NearestPlayer(far)
	require.True(t, ok)
	assert.Equal(t, near, s.ID)

	s, ok = w.NearestOfKind(me, world.KindTreasure)
	require.True(t, ok)
	assert.Equal(t, chest, s.ID)
	_, ok = w.NearestOfKind(me, world.KindHeal)
	assert.False(t, ok)

	assert.Equal(t, []world.EntityID{me, ally, far, near}, w.Agents())
	assert.True(t, w.Alive(chest))
	assert.True(t, w.IsPlayer(near))
	assert.Equal(t, world.Team(-1), w.Team(chest))
}

func TestWaypointChain(t *testing.T) {
	w := New()
	a := w.SpawnWaypoint(world.Position{})
	b := w.SpawnWaypoint(world.Position{X: 4})
	require.NoError(t, w.Link(a, b))
	assert.ErrorIs(t, w.Link(a, 999), ErrNotWaypoint)

	next, ok := w.NextWaypoint(a)
	require.True(t, ok)
	assert.Equal(t, b, next)
	_, ok = w.NextWaypoint(b)
	assert.False(t, ok)
}

func TestResolveIsDeferred(t *testing.T) {
	w := New()
	a := w.SpawnAgent(AgentSpec{Name: "a", Pos: world.Position{}, Team: 1})
	b := w.SpawnAgent(AgentSpec{Name: "b", Pos: world.Position{X: 1}, Team: 1})

	w.Emit(a, world.Intent{Action: world.MoveRight})
	pos, _ := w.Position(a)
	assert.Equal(t, world.Position{}, pos, "emit must not move")

	out := w.Resolve(world.IntentSet{b: {Action: world.MoveUp}})
	// a resolves first and still sees b on its staged cell.
	assert.Contains(t, out.Blocked, a)
	assert.Contains(t, out.Moved, b)
	assert.Empty(t, out.Hits, "same team never takes damage")
	pos, _ = w.Position(b)
	assert.Equal(t, world.Position{X: 1, Y: 1}, pos)
	assert.Equal(t, 1, w.Turn())
}

func TestMeleeAndDeath(t *testing.T) {
	w := New()
	hero := w.SpawnAgent(AgentSpec{Name: "hero", Pos: world.Position{}, Team: 0, Damage: 50})
	orc := w.SpawnAgent(AgentSpec{Name: "orc", Pos: world.Position{X: 1}, Team: 1, Hitpoints: 60})

	out := w.Resolve(world.IntentSet{hero: {Action: world.MoveRight}})
	require.Len(t, out.Hits, 1)
	assert.Equal(t, Hit{Attacker: hero, Target: orc, Damage: 50}, out.Hits[0])
	assert.Equal(t, 10.0, w.Hitpoints(orc))

	out = w.Resolve(world.IntentSet{hero: {Action: world.MoveRight}})
	assert.Equal(t, []world.EntityID{orc}, out.Killed)
	assert.False(t, w.Alive(orc))
	assert.Equal(t, []world.EntityID{hero}, w.Agents())
	assert.Contains(t, w.Log()[len(w.Log())-1], "orc died")
}

func TestHeals(t *testing.T) {
	w := New()
	player := w.SpawnAgent(AgentSpec{Name: "player", Pos: world.Position{}, Team: 0, Player: true, Hitpoints: 50})
	squire := w.SpawnAgent(AgentSpec{Name: "squire", Pos: world.Position{X: 1}, Team: 0, Heal: &HealAbility{Restoration: 20, Cooldown: 2}})
	monster := w.SpawnAgent(AgentSpec{Name: "m", Pos: world.Position{X: 5}, Team: 1, Hitpoints: 40})

	w.Resolve(world.IntentSet{
		squire:  {Action: world.HealPlayer},
		monster: {Action: world.HealSelf},
	})
	assert.Equal(t, 70.0, w.Hitpoints(player))
	assert.Equal(t, 50.0, w.Hitpoints(monster))
	assert.Equal(t, 1, w.HealCooldown(squire), "cooldown set then ticked once")

	w.Resolve(world.IntentSet{squire: {Action: world.HealPlayer}, monster: {Action: world.HealSelf, Amount: 5}})
	assert.Equal(t, 70.0, w.Hitpoints(player), "still cooling down")
	assert.Equal(t, 55.0, w.Hitpoints(monster))
	assert.Equal(t, 0, w.HealCooldown(squire))
}

func TestPickups(t *testing.T) {
	w := New()
	player := w.SpawnAgent(AgentSpec{Pos: world.Position{}, Team: 0, Player: true, Hitpoints: 50, Damage: 10})
	heal := w.SpawnHeal(world.Position{Y: 1}, 30)
	power := w.SpawnPowerup(world.Position{Y: 2}, 5)

	out := w.Resolve(world.IntentSet{player: {Action: world.MoveUp}})
	assert.Equal(t, []world.EntityID{heal}, out.Picked)
	assert.Equal(t, 80.0, w.Hitpoints(player))

	w.Resolve(world.IntentSet{player: {Action: world.MoveUp}})
	assert.Equal(t, 15.0, w.Damage(player))
	assert.False(t, w.Alive(power))
}

func TestActionLogCapacity(t *testing.T) {
	l := NewActionLog(2)
	l.Push(1, "a")
	l.Push(2, "b")
	l.Push(3, "c")
	assert.Equal(t, []string{"2: b", "3: c"}, l.Lines())
}

func TestSnapshot(t *testing.T) {
	w := New()
	a := w.SpawnAgent(AgentSpec{Name: "a", Pos: world.Position{X: 1, Y: 2}, Team: 1})
	wp := w.SpawnWaypoint(world.Position{X: 3})
	snap := w.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, a, snap[0].ID)
	assert.Equal(t, "agent", snap[0].Kind)
	assert.Equal(t, wp, snap[1].ID)
	assert.Equal(t, "waypoint", snap[1].Kind)
}
